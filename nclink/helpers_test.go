package nclink

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestConfig creates a ConnectionConfig with short timeouts suitable for tests.
func newTestConfig(t *testing.T, addr string, opts ...ConnOption) *ConnectionConfig {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}
	port, err := net.LookupPort("tcp", portStr)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	defaults := []ConnOption{
		WithRetryDelay(time.Millisecond),
		WithConnectTimeout(time.Second),
		WithReadTimeout(2 * time.Second),
	}

	cfg, err := NewConnectionConfig(host, port, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	return cfg
}

// fakeDevice is a loopback TCP listener that plays the control side of an exchange.
type fakeDevice struct {
	ln       net.Listener
	accepted atomic.Int32
	wg       sync.WaitGroup

	mu     sync.Mutex
	frames []string
}

// startDevice starts a fake device. For each accepted connection it reads one
// command frame, records it and calls reply with the connection.
func startDevice(t *testing.T, reply func(conn net.Conn, frame string)) *fakeDevice {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("startDevice: %v", err)
	}

	d := &fakeDevice{ln: ln}
	t.Cleanup(func() {
		_ = ln.Close()
		d.wg.Wait()
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			d.accepted.Add(1)

			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				defer func() { _ = conn.Close() }()

				frame, err := readFrame(conn)
				if err != nil {
					return
				}
				d.mu.Lock()
				d.frames = append(d.frames, frame)
				d.mu.Unlock()

				if reply != nil {
					reply(conn, frame)
				}
			}()
		}
	}()

	return d
}

func (d *fakeDevice) Addr() string { return d.ln.Addr().String() }

func (d *fakeDevice) Frames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.frames...)
}

// readFrame reads one command frame, which ends with "%\r\n".
func readFrame(conn net.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)

	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return sb.String(), err
		}
		sb.WriteByte(b)

		if sb.Len() > 3 && strings.HasSuffix(sb.String(), "%\r\n") {
			return sb.String(), nil
		}
	}
}

// writeChunks writes each chunk separately with a short pause so the client
// observes them in different reads.
func writeChunks(conn net.Conn, chunks ...string) {
	for _, chunk := range chunks {
		if _, err := conn.Write([]byte(chunk)); err != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

var errDialRefused = errors.New("dial: connection refused")

// scriptedDialer fails the first failures dials, then serves each connection
// from a net.Pipe driven by serve.
type scriptedDialer struct {
	failures int
	serve    func(conn net.Conn)

	mu       sync.Mutex
	attempts []time.Time
}

func (d *scriptedDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	d.mu.Lock()
	d.attempts = append(d.attempts, time.Now())
	n := len(d.attempts)
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.failures < 0 || n <= d.failures {
		return nil, errDialRefused
	}

	local, remote := net.Pipe()
	go func() {
		defer func() { _ = remote.Close() }()
		if d.serve != nil {
			d.serve(remote)
		}
	}()

	return local, nil
}

func (d *scriptedDialer) Attempts() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]time.Time(nil), d.attempts...)
}
