package relay

import "time"

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCallStatus tracks a tool call's lifecycle.
type ToolCallStatus string

const (
	ToolCallRunning   ToolCallStatus = "running"
	ToolCallCompleted ToolCallStatus = "completed"
)

// ToolCall is a tool invocation attached to an assistant message. It is
// created running and transitions to completed exactly once, when a
// function result with a matching ID arrives. Immutable afterward.
type ToolCall struct {
	ID     string
	Name   string
	Status ToolCallStatus
	Result string
}

// Message is one entry in the conversation transcript. Messages are owned
// by the reducer: they are created once per turn and updated only through
// actions, never mutated in place.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	ToolCalls []ToolCall

	// Set by FinalizeAssistantMessage on assistant messages.
	TokensUsed int
	LatencyMS  int
}
