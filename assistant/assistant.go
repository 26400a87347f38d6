// Package assistant implements the stream transport for the relay chat
// service. It opens one streaming POST per send and decodes the
// event-delimited response body into [relay.Event] values through the
// pull-based [relay.Stream] interface. Framing is handled byte-wise so a
// frame (or a multi-byte rune) split across read chunks is reassembled
// before parsing.
package assistant

const streamPath = "/api/chat/stream"

// Wire payloads, one per event name.

type messageStartPayload struct {
	SessionID string `json:"session_id"`
}

type contentDeltaPayload struct {
	Text string `json:"text"`
}

type functionCallPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type functionResultPayload struct {
	ToolUseID string `json:"tool_use_id"`
	Result    string `json:"result"`
}

type messageEndPayload struct {
	SessionID  string `json:"session_id"`
	TokensUsed int    `json:"tokens_used"`
	LatencyMS  int    `json:"latency_ms"`
}

// errorPayload carries optional quota fields, present on rate-limit errors.
type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Usage   *int   `json:"usage,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
}

// requestBody is the JSON body sent to open a stream.
type requestBody struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}
