package nclink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/go-nclink/logger"
)

// Default connection parameters.
const (
	DefaultConnectAttempts = 10
	DefaultRetryDelay      = 20 * time.Millisecond
	DefaultConnectTimeout  = 3 * time.Second // per-attempt dial timeout
	DefaultWriteTimeout    = 2000 * time.Millisecond

	DefaultReadTimeout     = 30 * time.Second
	DefaultMaxResponseSize = 4 << 20
	DefaultReadBufferSize  = 4096
)

// MaxConnectAttempts bounds WithConnectAttempts.
const MaxConnectAttempts = 1000

// Dialer opens the TCP connection for a single exchange. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// ConnectionConfig holds the target and transport settings of a Client.
// It is immutable once built and may be shared between clients.
type ConnectionConfig struct {
	host string
	port int

	connectAttempts int
	retryDelay      time.Duration
	connectTimeout  time.Duration
	writeTimeout    time.Duration

	// readTimeout and maxResponseSize bound the receive loop; 0 disables them.
	readTimeout     time.Duration
	maxResponseSize int
	readBufferSize  int

	noDelay bool
	dialer  Dialer

	logger logger.Logger
}

// NewConnectionConfig creates a connection configuration for host:port.
//
// opts are functional options applied in order; see With* functions.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		connectAttempts: DefaultConnectAttempts,
		retryDelay:      DefaultRetryDelay,
		connectTimeout:  DefaultConnectTimeout,
		writeTimeout:    DefaultWriteTimeout,
		readTimeout:     DefaultReadTimeout,
		maxResponseSize: DefaultMaxResponseSize,
		readBufferSize:  DefaultReadBufferSize,
		noDelay:         true,
		logger:          logger.GetLogger(),
	}

	if err := cfg.setHost(host); err != nil {
		return nil, err
	}
	if err := cfg.setPort(port); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.dialer == nil {
		cfg.dialer = &net.Dialer{KeepAlive: 30 * time.Second}
	}

	return cfg, nil
}

func (cfg *ConnectionConfig) setHost(host string) error {
	host = strings.TrimSpace(host)
	if host == "" || strings.ContainsAny(host, " \t/") {
		return fmt.Errorf("nclink: invalid host %q", host)
	}
	cfg.host = host

	return nil
}

func (cfg *ConnectionConfig) setPort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("nclink: port %d out of range [0, 65535]", port)
	}
	cfg.port = port

	return nil
}

// Host returns the configured host address.
func (cfg *ConnectionConfig) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *ConnectionConfig) Port() int { return cfg.port }

// Addr returns "host:port".
func (cfg *ConnectionConfig) Addr() string {
	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

// ConnectAttempts returns the total number of connect attempts per exchange.
func (cfg *ConnectionConfig) ConnectAttempts() int { return cfg.connectAttempts }

// RetryDelay returns the wait between failed connect attempts.
func (cfg *ConnectionConfig) RetryDelay() time.Duration { return cfg.retryDelay }

// ConnectTimeout returns the per-attempt dial timeout.
func (cfg *ConnectionConfig) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// WriteTimeout returns the cap on writing the command frame.
func (cfg *ConnectionConfig) WriteTimeout() time.Duration { return cfg.writeTimeout }

// ReadTimeout returns the overall response deadline, 0 if unbounded.
func (cfg *ConnectionConfig) ReadTimeout() time.Duration { return cfg.readTimeout }

// MaxResponseSize returns the accumulated response size limit, 0 if unbounded.
func (cfg *ConnectionConfig) MaxResponseSize() int { return cfg.maxResponseSize }

// ReadBufferSize returns the maximum number of bytes consumed per socket read.
func (cfg *ConnectionConfig) ReadBufferSize() int { return cfg.readBufferSize }

// NoDelay reports whether Nagle's algorithm is disabled on the connection.
func (cfg *ConnectionConfig) NoDelay() bool { return cfg.noDelay }

// GetLogger returns the configured logger.
func (cfg *ConnectionConfig) GetLogger() logger.Logger { return cfg.logger }

// ConnOption is a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc func(*ConnectionConfig) error

func (f connOptFunc) apply(cfg *ConnectionConfig) error { return f(cfg) }

// WithConnectAttempts sets the total number of connect attempts, in [1, MaxConnectAttempts].
func WithConnectAttempts(n int) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if n < 1 || n > MaxConnectAttempts {
			return fmt.Errorf("nclink: connect attempts %d out of range [1, %d]", n, MaxConnectAttempts)
		}
		cfg.connectAttempts = n

		return nil
	})
}

// WithRetryDelay sets the wait between failed connect attempts.
func WithRetryDelay(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if d < 0 {
			return errors.New("nclink: retry delay must not be negative")
		}
		cfg.retryDelay = d

		return nil
	})
}

// WithConnectTimeout sets the per-attempt TCP dial timeout.
func WithConnectTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return errors.New("nclink: connect timeout must be positive")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithWriteTimeout sets the cap on writing the command frame.
func WithWriteTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if d <= 0 {
			return errors.New("nclink: write timeout must be positive")
		}
		cfg.writeTimeout = d

		return nil
	})
}

// WithReadTimeout sets the overall deadline for receiving a complete response.
// Zero disables the deadline and the read blocks until the peer completes the
// response or closes the connection.
func WithReadTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if d < 0 {
			return errors.New("nclink: read timeout must not be negative")
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithMaxResponseSize sets the maximum accumulated response size in bytes.
// Zero disables the limit.
func WithMaxResponseSize(n int) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if n < 0 {
			return errors.New("nclink: max response size must not be negative")
		}
		cfg.maxResponseSize = n

		return nil
	})
}

// WithReadBufferSize sets the maximum number of bytes consumed per socket read.
func WithReadBufferSize(n int) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if n < 1 {
			return errors.New("nclink: read buffer size must be >= 1")
		}
		cfg.readBufferSize = n

		return nil
	})
}

// WithNoDelay enables or disables TCP_NODELAY. Enabled by default.
func WithNoDelay(enabled bool) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		cfg.noDelay = enabled

		return nil
	})
}

// WithDialer replaces the dialer used to open connections.
func WithDialer(d Dialer) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if d == nil {
			return errors.New("nclink: dialer must not be nil")
		}
		cfg.dialer = d

		return nil
	})
}

// WithLogger sets the logger for the connection.
func WithLogger(l logger.Logger) ConnOption {
	return connOptFunc(func(cfg *ConnectionConfig) error {
		if l == nil {
			return errors.New("nclink: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
