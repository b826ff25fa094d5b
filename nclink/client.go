package nclink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/arloliu/go-nclink/internal/retry"
	"github.com/arloliu/go-nclink/logger"
)

// Sender performs one command/response exchange with a control.
type Sender interface {
	// Send writes cmd and returns the raw response text.
	Send(ctx context.Context, cmd Command) (string, error)
}

// Client is a Sender that opens a fresh TCP connection for every command.
//
// A Client holds no per-exchange state and is safe for concurrent use.
type Client struct {
	cfg     *ConnectionConfig
	logger  logger.Logger
	metrics ClientMetrics
}

var _ Sender = (*Client)(nil)

// NewClient creates a Client for the given configuration.
func NewClient(cfg *ConnectionConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	return &Client{
		cfg:    cfg,
		logger: cfg.logger.With("addr", cfg.Addr()),
	}, nil
}

// Config returns the client's connection configuration.
func (c *Client) Config() *ConnectionConfig { return c.cfg }

// Metrics returns the client's counters.
func (c *Client) Metrics() *ClientMetrics { return &c.metrics }

// Send performs a single exchange: connect with bounded retry, write the
// framed command, accumulate the response until IsComplete holds, close.
//
// Connect failures are retried up to ConnectAttempts times and then reported
// as ErrConnectFailed. Any failure after the connection is established is
// returned immediately. The connection is always closed before Send returns.
func (c *Client) Send(ctx context.Context, cmd Command) (string, error) {
	c.metrics.incSendCount()

	resp, err := c.send(ctx, cmd)
	if err != nil {
		c.metrics.incSendErrCount()
		return "", err
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, cmd Command) (string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	// unblock pending I/O when the caller gives up
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	c.setupTCPConn(conn)

	frame := cmd.Pack()
	if err := c.writeFrame(conn, frame); err != nil {
		return "", c.ctxErr(ctx, fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	c.logger.Debug("nclink: command sent", "command", cmd.String(), "bytes", len(frame))

	resp, err := c.receive(conn)
	if err != nil {
		return "", c.ctxErr(ctx, err)
	}
	c.logger.Debug("nclink: response received", "command", cmd.String(), "bytes", len(resp))

	return resp, nil
}

// connect dials the target, retrying connection-level failures per the
// configured attempt budget.
func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	address := c.cfg.Addr()

	policy := retry.Policy{
		MaxAttempts: c.cfg.connectAttempts,
		Delay:       c.cfg.retryDelay,
		OnFailure: func(attempt int, err error) {
			c.metrics.incConnFailCount()
			c.logger.Debug("nclink: dial failed", "attempt", attempt, "error", err)
		},
	}

	var conn net.Conn
	err := retry.Do(ctx, policy, func(int) error {
		c.metrics.incConnAttemptCount()

		dialCtx, cancel := context.WithTimeout(ctx, c.cfg.connectTimeout)
		defer cancel()

		cn, err := c.cfg.dialer.DialContext(dialCtx, "tcp", address)
		if err != nil {
			return err
		}
		conn = cn

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, address, err)
	}

	return conn, nil
}

func (c *Client) setupTCPConn(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}

	if err := tcpConn.SetNoDelay(c.cfg.noDelay); err != nil {
		c.logger.Debug("nclink: set no-delay failed", "error", err)
	}
}

// writeFrame writes the whole frame under the write timeout.
func (c *Client) writeFrame(conn net.Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout)); err != nil {
		return err
	}

	for written := 0; written < len(frame); {
		n, err := conn.Write(frame[written:])
		written += n
		c.metrics.addBytesSent(n)

		if err != nil {
			return err
		}
	}

	return nil
}

// receive accumulates response text until IsComplete holds for the whole
// accumulator.
func (c *Client) receive(conn net.Conn) (string, error) {
	if c.cfg.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.readTimeout)); err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
	}

	buf := make([]byte, c.cfg.readBufferSize)
	var acc strings.Builder

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			c.metrics.addBytesRecv(n)
			acc.WriteString(asciiString(buf[:n]))

			if c.cfg.maxResponseSize > 0 && acc.Len() > c.cfg.maxResponseSize {
				return "", fmt.Errorf("%w: %d > %d bytes", ErrResponseTooLarge, acc.Len(), c.cfg.maxResponseSize)
			}

			if IsComplete(acc.String()) {
				return acc.String(), nil
			}
		}

		if err != nil {
			return "", classifyReadErr(err, acc.Len())
		}
	}
}

func classifyReadErr(err error, received int) error {
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: after %d bytes", ErrIncompleteResponse, received)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: after %d bytes: %w", ErrReadTimeout, received, err)
	default:
		return fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
}

// ctxErr prefers the context error when the caller cancelled the exchange,
// since the I/O error is then only a consequence of the forced deadline.
func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}

	return err
}
