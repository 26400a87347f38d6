package relay

// Action is a sealed interface representing one reducer input. Actions
// mirror parsed wire events plus user and UI intents. The unexported
// marker method prevents external implementations.
type Action interface {
	action()
}

// TogglePanel flips panel visibility.
type TogglePanel struct{}

// OpenPanel shows the panel. No-op when already open.
type OpenPanel struct{}

// ClosePanel hides the panel. No-op when already closed.
type ClosePanel struct{}

// SetSessionID records the session identifier assigned by the service.
type SetSessionID struct {
	ID string
}

// AddUserMessage appends a user message to the transcript.
type AddUserMessage struct {
	Message Message
}

// StartAssistantMessage appends an empty assistant message, the new
// in-progress target for deltas and tool calls.
type StartAssistantMessage struct {
	Message Message
}

// AppendContentDelta appends text to the last message. No-op unless the
// last message is an assistant message.
type AppendContentDelta struct {
	Text string
}

// AddFunctionCall attaches a running tool call to the last message. No-op
// unless the last message is an assistant message.
type AddFunctionCall struct {
	Call ToolCall
}

// UpdateFunctionResult completes the tool call whose ID equals ToolUseID
// on the last message, leaving all others untouched. No-op on mismatch.
type UpdateFunctionResult struct {
	ToolUseID string
	Result    string
}

// FinalizeAssistantMessage records usage metadata on the last message and
// stops streaming. This is the sole normal termination path. Re-applying
// it to an already finalized message overwrites the metadata.
type FinalizeAssistantMessage struct {
	TokensUsed int
	LatencyMS  int
}

// SetStreaming sets the streaming flag.
type SetStreaming struct {
	Streaming bool
}

// SetError sets the user-visible error message; empty clears it.
type SetError struct {
	Message string
}

// SetRateLimit records quota info from a rate-limit error; nil clears it.
type SetRateLimit struct {
	Info *RateLimit
}

// ClearSession resets the session id, transcript, error, and rate limit.
// Panel visibility is untouched.
type ClearSession struct{}

// LoadSession replaces the session id and transcript wholesale, used to
// restore a persisted conversation.
type LoadSession struct {
	SessionID string
	Messages  []Message
}

func (TogglePanel) action()              {}
func (OpenPanel) action()                {}
func (ClosePanel) action()               {}
func (SetSessionID) action()             {}
func (AddUserMessage) action()           {}
func (StartAssistantMessage) action()    {}
func (AppendContentDelta) action()       {}
func (AddFunctionCall) action()          {}
func (UpdateFunctionResult) action()     {}
func (FinalizeAssistantMessage) action() {}
func (SetStreaming) action()             {}
func (SetError) action()                 {}
func (SetRateLimit) action()             {}
func (ClearSession) action()             {}
func (LoadSession) action()              {}
