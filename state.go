package relay

// RateLimit reports quota consumption as signaled by the service.
type RateLimit struct {
	Usage int
	Limit int
}

// State is the aggregate conversation state. It has a single owner, the
// reducer: all mutation goes through Reduce, which copies before writing,
// so a *State handed out by the Store is safe to read from any goroutine.
//
// Messages preserves insertion order and is the sole ordering authority for
// the transcript. At most one message is in progress at any time: the last
// message, when its role is assistant and Streaming is true.
type State struct {
	// Open is the visibility of the chat panel. It is independent of the
	// conversation lifetime and survives ClearSession.
	Open bool

	SessionID string
	Messages  []Message

	// Streaming is true from send initiation until a message_end event, an
	// unrecoverable error, or an explicit cancellation.
	Streaming bool

	// Err is the user-visible error message; empty means none.
	Err string

	RateLimit *RateLimit
}

// NewState returns the initial state.
func NewState() *State {
	return &State{}
}

// clone returns a shallow copy. Callers that touch Messages must also
// clone the slice before writing to it.
func (s *State) clone() *State {
	next := *s
	return &next
}

// lastAssistant returns the index of the last message if it is an
// assistant message, the only message actions may target.
func (s *State) lastAssistant() (int, bool) {
	if len(s.Messages) == 0 {
		return 0, false
	}
	i := len(s.Messages) - 1
	return i, s.Messages[i].Role == RoleAssistant
}
