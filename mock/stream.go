package mock

import (
	"io"

	"github.com/davidmoxey/relay"
)

// Interface compliance check.
var _ relay.Stream = (*Stream)(nil)

// Stream is a test double for relay.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because test code commonly calls defer stream.Close() without
// needing custom behavior.
type Stream struct {
	NextFn  func() (relay.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (relay.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. No-op when CloseFn is nil.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// StreamOf returns a Stream that yields the given events in order and
// then io.EOF.
func StreamOf(events ...relay.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (relay.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
