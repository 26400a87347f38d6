package relay

import "context"

// Request is the outbound body for one logical send.
type Request struct {
	Message   string
	SessionID string // empty starts a new session
}

// Stream uses a pull-based iterator pattern. Next returns io.EOF when the
// stream completes normally; any other error is a transport failure.
// Events decoded before a failure are always delivered before the failure
// surfaces. Cancellation flows through the context passed to Opener.Open
// and surfaces from Next as the context's error.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Opener opens one outbound streaming request per invocation. It never
// retries internally; retries belong to the engine.
type Opener interface {
	Open(ctx context.Context, req Request) (Stream, error)
}
