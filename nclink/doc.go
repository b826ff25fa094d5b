// Package nclink implements the host side of the line-oriented, checksum-framed
// request/response protocol spoken by CNC controls over a raw TCP socket.
//
// # Protocol Overview
//
// Every exchange is a single command on a fresh connection:
//
//	connect (bounded retry) → send one frame → read until complete → close
//
// A command carries a short name and an argument string. The unwrapped command
// text is
//
//	"C" + name (left-justified, 7 wide) + args (left-justified, 8 wide) + "  \r\n"
//
// and the frame written to the wire wraps it as
//
//	"%" + command + "\r\n" + checksum (2 decimal digits) + "%\r\n"
//
// where the checksum is the sum of the command's character codes modulo 16.
// Fields longer than their width are sent as-is; they are never truncated.
//
// A response is accumulated until the text both starts and ends with '%'. The
// data payload sits between the first CR-LF after the leading '%' and the CR-LF
// that precedes the closing '%'; see [Unwrap].
//
// # Timeouts
//
//   - Connect: up to 10 attempts, 20ms apart, each bounded by a dial timeout.
//   - Write: 2s cap on the single frame write.
//   - Read: an overall response deadline and a maximum accumulated size. Both can
//     be disabled with [WithReadTimeout](0) and [WithMaxResponseSize](0), in which
//     case a read blocks until the control completes the response or closes.
//
// Errors after a successful connect are never retried, because re-sending a
// command mid-exchange could make the control execute it twice.
package nclink
