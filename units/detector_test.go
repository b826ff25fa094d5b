package units

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-nclink/logger"
	"github.com/arloliu/go-nclink/nclink"
)

// scriptedSender returns canned responses keyed by the command argument.
type scriptedSender struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	panicMsg  string
	commands  []nclink.Command
}

func (s *scriptedSender) Send(_ context.Context, cmd nclink.Command) (string, error) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()

	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return "", s.err
	}

	return s.responses[cmd.Args], nil
}

func discardLogger() logger.Logger {
	return logger.NewSlogWithWriter(io.Discard, logger.DebugLevel, false, false)
}

func newTestDetector(t *testing.T, s nclink.Sender, l logger.Logger) *Detector {
	t.Helper()

	d, err := NewDetector(s, WithLogger(l))
	require.NoError(t, err)

	return d
}

func TestNewDetector_NilSender(t *testing.T) {
	_, err := NewDetector(nil)
	require.ErrorIs(t, err, ErrSenderNil)
}

func TestDetector_IssuesLoadCommand(t *testing.T) {
	s := &scriptedSender{responses: map[string]string{
		FileMSRRSC: "%\r\nC01,1\r\n%",
		FileMSRRSD: "%\r\nC01,0\r\n%",
	}}
	d := newTestDetector(t, s, discardLogger())

	assert.Equal(t, Inch, d.DetectUnitSystem(context.Background(), VersionC00))
	assert.Equal(t, Metric, d.DetectUnitSystem(context.Background(), VersionD00))

	require.Len(t, s.commands, 2)
	assert.Equal(t, nclink.LoadCommand(FileMSRRSC), s.commands[0])
	assert.Equal(t, nclink.LoadCommand(FileMSRRSD), s.commands[1])
}

func TestDetector_Detect(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		system    System
		defaulted bool
	}{
		{"metric", "%\r\nC01,0\r\n%", Metric, false},
		{"inch", "%\r\nC01,1\r\n%", Inch, false},
		{"unexpected", "%\r\nC01,7\r\n%", Metric, true},
		{"empty", "%\r\n%", Metric, true},
		{"other record", "%\r\nX99,1\r\n%", Metric, true},
		{"lowercase tag", "%\r\nc01,1\r\n%", Inch, false},
		{"garbage", "garbage", Metric, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &scriptedSender{responses: map[string]string{FileMSRRSC: tc.raw}}
			d := newTestDetector(t, s, discardLogger())

			res := d.Detect(context.Background(), VersionC00)
			assert.Equal(t, tc.system, res.System)
			assert.Equal(t, tc.defaulted, res.Defaulted)
			assert.Equal(t, FileMSRRSC, res.File)
		})
	}
}

func TestDetector_TransportErrorDefaults(t *testing.T) {
	transportErr := errors.New("connect failed")
	s := &scriptedSender{err: transportErr}

	l := logger.NewMockLogger()
	l.On("Error", "units: detection failed, defaulting", mock.Anything).Once()

	d := newTestDetector(t, s, l)

	res := d.Detect(context.Background(), VersionC00)
	assert.True(t, res.Defaulted)
	assert.Equal(t, StageQuery, res.Stage)
	require.ErrorIs(t, res.Err, transportErr)

	assert.Equal(t, Metric, d.DetectUnitSystem(context.Background(), VersionC00))
	l.AssertExpectations(t)
}

func TestDetector_PanicDefaults(t *testing.T) {
	s := &scriptedSender{panicMsg: "boom"}
	d := newTestDetector(t, s, discardLogger())

	var res Result
	require.NotPanics(t, func() {
		res = d.Detect(context.Background(), VersionD00)
	})
	assert.Equal(t, Metric, res.System)
	assert.True(t, res.Defaulted)
	assert.Equal(t, FileMSRRSD, res.File)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestDetector_LogsFallbackSelection(t *testing.T) {
	s := &scriptedSender{responses: map[string]string{FileMSRRSC: "%\r\nC01,1\r\n%"}}

	for _, v := range []ControlVersion{VersionUnknown, VersionA00, VersionB00} {
		t.Run(v.String(), func(t *testing.T) {
			l := logger.NewMockLogger()
			l.On("Warn", "units: file selection is a fallback", mock.Anything).Once()
			l.On("Debug", "units: detected", mock.Anything).Once()

			d := newTestDetector(t, s, l)
			assert.Equal(t, Inch, d.DetectUnitSystem(context.Background(), v))
			l.AssertExpectations(t)
		})
	}
}

func TestDetector_LogsUnexpectedValue(t *testing.T) {
	s := &scriptedSender{responses: map[string]string{FileMSRRSC: "%\r\nC01,7\r\n%"}}

	l := logger.NewMockLogger()
	l.On("Warn", "units: detection inconclusive, defaulting", mock.MatchedBy(func(kv []any) bool {
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i] == "reason" {
				reason, _ := kv[i+1].(string)
				return reason == "unexpected value 7"
			}
		}
		return false
	})).Once()

	d := newTestDetector(t, s, l)
	assert.Equal(t, Metric, d.DetectUnitSystem(context.Background(), VersionC00))
	l.AssertExpectations(t)
}

func TestDetector_SequentialCallsIndependent(t *testing.T) {
	s := &scriptedSender{responses: map[string]string{
		FileMSRRSD: "%\r\nC01,1\r\n%",
	}}
	d := newTestDetector(t, s, discardLogger())

	// C00 queries MSRRSC which has no scripted response and defaults
	first := d.Detect(context.Background(), VersionC00)
	assert.True(t, first.Defaulted)

	second := d.Detect(context.Background(), VersionD00)
	assert.False(t, second.Defaulted)
	assert.Equal(t, Inch, second.System)

	s.err = errors.New("unreachable")
	third := d.Detect(context.Background(), VersionD00)
	assert.True(t, third.Defaulted)

	s.err = nil
	fourth := d.Detect(context.Background(), VersionD00)
	assert.Equal(t, second, fourth)
}

// startControl serves one canned response per connection on a loopback port.
func startControl(t *testing.T, resp string) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	t.Cleanup(func() {
		_ = ln.Close()
		wg.Wait()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 64)
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte(resp))
			_ = conn.Close()
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

func TestDetector_OverTCP(t *testing.T) {
	host, port := startControl(t, "%\r\nC01,1\r\nC02,0\r\n%")

	cfg, err := nclink.NewConnectionConfig(host, port, nclink.WithLogger(discardLogger()))
	require.NoError(t, err)
	client, err := nclink.NewClient(cfg)
	require.NoError(t, err)

	d := newTestDetector(t, client, discardLogger())
	assert.Equal(t, Inch, d.DetectUnitSystem(context.Background(), VersionC00))
}

func TestDetector_OverTCPUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	cfg, err := nclink.NewConnectionConfig("127.0.0.1", addr.Port,
		nclink.WithRetryDelay(time.Millisecond),
		nclink.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	client, err := nclink.NewClient(cfg)
	require.NoError(t, err)

	d := newTestDetector(t, client, discardLogger())

	res := d.Detect(context.Background(), VersionC00)
	assert.Equal(t, Metric, res.System)
	assert.True(t, res.Defaulted)
	require.ErrorIs(t, res.Err, nclink.ErrConnectFailed)
}
