package nclink

import (
	"sync/atomic"
)

// ClientMetrics contains atomic counters for a Client.
// Metrics can be used as the value of a prometheus CounterFunc.
type ClientMetrics struct {
	// SendCount indicates the number of exchanges started.
	SendCount atomic.Uint64
	// SendErrCount indicates the number of exchanges that returned an error.
	SendErrCount atomic.Uint64
	// ConnAttemptCount indicates the number of TCP dial attempts.
	ConnAttemptCount atomic.Uint64
	// ConnFailCount indicates the number of failed TCP dial attempts.
	ConnFailCount atomic.Uint64
	// BytesSent indicates the number of frame bytes written.
	BytesSent atomic.Uint64
	// BytesRecv indicates the number of response bytes read.
	BytesRecv atomic.Uint64
}

func (m *ClientMetrics) incSendCount() {
	m.SendCount.Add(1)
}

func (m *ClientMetrics) incSendErrCount() {
	m.SendErrCount.Add(1)
}

func (m *ClientMetrics) incConnAttemptCount() {
	m.ConnAttemptCount.Add(1)
}

func (m *ClientMetrics) incConnFailCount() {
	m.ConnFailCount.Add(1)
}

func (m *ClientMetrics) addBytesSent(n int) {
	m.BytesSent.Add(uint64(n)) //nolint:gosec // n is a non-negative byte count
}

func (m *ClientMetrics) addBytesRecv(n int) {
	m.BytesRecv.Add(uint64(n)) //nolint:gosec // n is a non-negative byte count
}
