package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

// startControl answers every connection with resp.
func startControl(t *testing.T, resp string) (string, string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer func() { _ = conn.Close() }()
				buf := make([]byte, 64)
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				_, _ = conn.Read(buf)
				_, _ = conn.Write([]byte(resp))
			}()
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	return host, port
}

func TestFrameCmd(t *testing.T) {
	out, err := runCmd(t, "frame", "LOD", "MSRRSC")
	require.NoError(t, err)
	assert.Equal(t, `"%CLOD    MSRRSC    \r\n\r\n03%\r\n" checksum=03`+"\n", out)
}

func TestDetectCmd(t *testing.T) {
	host, port := startControl(t, "%\r\nC01,1\r\n%")

	out, err := runCmd(t, "detect", "--host", host, "--port", port, "--control", "C00")
	require.NoError(t, err)
	assert.Equal(t, "Inch\n", out)
}

func TestDetectCmd_VerboseDefaulted(t *testing.T) {
	host, port := startControl(t, "%\r\nC01,7\r\n%")

	out, err := runCmd(t, "detect", "-H", host, "-p", port, "-c", "d00", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "system:    Metric")
	assert.Contains(t, out, "file:      MSRRSD")
	assert.Contains(t, out, "defaulted: true")
	assert.Contains(t, out, "unexpected value 7")
}

func TestSendCmd(t *testing.T) {
	host, port := startControl(t, "%\r\nC01,0\r\nC02,1\r\n%")

	out, err := runCmd(t, "send", "LOD", "MSRRSC", "--host", host, "--port", port)
	require.NoError(t, err)
	assert.Equal(t, `"%\r\nC01,0\r\nC02,1\r\n%"`+"\n", out)

	out, err = runCmd(t, "send", "LOD", "MSRRSC", "--host", host, "--port", port, "--unwrap")
	require.NoError(t, err)
	assert.Equal(t, "C01,0\r\nC02,1\n", out)
}

func TestProbeCmd(t *testing.T) {
	host, port := startControl(t, "%\r\nC01,1\r\n%")

	path := filepath.Join(t.TempDir(), "machines.yaml")
	content := "machines:\n" +
		"  - name: mill-1\n    host: " + host + "\n    port: " + port + "\n    control_version: C00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := runCmd(t, "probe", "--config", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "MACHINE"))
	assert.Contains(t, lines[1], "mill-1")
	assert.Contains(t, lines[1], net.JoinHostPort(host, port))
	assert.Contains(t, lines[1], "Inch")
	assert.Contains(t, lines[1], "false")
}

func TestRootCmd_BadLogLevel(t *testing.T) {
	_, err := runCmd(t, "frame", "LOD", "--log-level", "chatty")
	require.Error(t, err)
}

func TestRootCmd_InvalidPort(t *testing.T) {
	_, err := runCmd(t, "send", "LOD", "--port", strconv.Itoa(70000))
	require.Error(t, err)
}
