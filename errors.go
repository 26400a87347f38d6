package relay

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrNoBody indicates the transport got a success status with no
	// readable response body.
	ErrNoBody = errors.New("response has no body")

	// ErrIncompleteFrame indicates a frame was missing its event name or
	// data payload. Incomplete frames are dropped by the caller, not fatal.
	ErrIncompleteFrame = errors.New("incomplete frame")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
