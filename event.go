package relay

// Event is a sealed interface representing one wire-level streaming event.
// Events are purely syntactic: ordering and semantic validation happen in
// the engine, not here. Transport failures come from Next()'s error return,
// not from events. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventMessageStart announces the session the assistant reply belongs to.
type EventMessageStart struct {
	SessionID string
}

func (EventMessageStart) event() {}

// EventContentDelta carries an incremental piece of assistant text.
type EventContentDelta struct {
	Text string
}

func (EventContentDelta) event() {}

// EventFunctionCall signals that the assistant invoked a tool.
type EventFunctionCall struct {
	ID   string
	Name string
}

func (EventFunctionCall) event() {}

// EventFunctionResult carries the result of a previously announced call.
// ToolUseID refers to the EventFunctionCall's ID.
type EventFunctionResult struct {
	ToolUseID string
	Result    string
}

func (EventFunctionResult) event() {}

// EventMessageEnd terminates the assistant reply with usage metadata.
type EventMessageEnd struct {
	SessionID  string
	TokensUsed int
	LatencyMS  int
}

func (EventMessageEnd) event() {}

// EventError is a server-signaled failure, terminal for the current send.
// Usage and Limit are present only on rate-limit errors.
type EventError struct {
	Type    string
	Message string
	Usage   *int
	Limit   *int
}

func (EventError) event() {}

// Interface compliance checks.
var (
	_ Event = EventMessageStart{}
	_ Event = EventContentDelta{}
	_ Event = EventFunctionCall{}
	_ Event = EventFunctionResult{}
	_ Event = EventMessageEnd{}
	_ Event = EventError{}
)
