package nclink

import "errors"

var (
	// ErrConnConfigNil indicates that a nil ConnectionConfig was provided.
	ErrConnConfigNil = errors.New("nclink: connection config is nil")

	// ErrConnectFailed indicates that every connect attempt failed.
	ErrConnectFailed = errors.New("nclink: connect failed, attempts exhausted")

	// ErrWriteFailed indicates that the command frame could not be written.
	ErrWriteFailed = errors.New("nclink: write failed")

	// ErrReadFailed indicates a socket error while receiving the response.
	ErrReadFailed = errors.New("nclink: read failed")

	// ErrReadTimeout indicates that the response was not complete within the read timeout.
	ErrReadTimeout = errors.New("nclink: read timeout")

	// ErrResponseTooLarge indicates that the accumulated response exceeded the size limit.
	ErrResponseTooLarge = errors.New("nclink: response exceeds maximum size")

	// ErrIncompleteResponse indicates that the peer closed the connection before
	// a complete response was received.
	ErrIncompleteResponse = errors.New("nclink: connection closed before response completed")
)

var (
	// ErrMalformedFrame indicates that a frame does not follow the wire layout.
	ErrMalformedFrame = errors.New("nclink: malformed frame")

	// ErrChecksumMismatch indicates that a frame's checksum digits do not match its content.
	ErrChecksumMismatch = errors.New("nclink: checksum mismatch")
)
