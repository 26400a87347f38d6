package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidmoxey/relay"
)

// ParseFrame parses one delimiter-bounded block of the event stream into a
// wire event. It is purely syntactic: no ordering or semantic validation
// happens here. Comment lines (leading ':') are ignored. The event name is
// the trimmed remainder of the "event:" line; the payload is every "data:"
// line with at most one leading space stripped, joined with newlines, and
// decoded as JSON. Blocks missing a name or payload, carrying an unknown
// name, or holding malformed JSON are rejected with an error; callers drop
// rejected frames and keep reading.
func ParseFrame(block string) (relay.Event, error) {
	var name string
	var data strings.Builder

	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, ":"):
			// Keep-alive comment line.
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			v := strings.TrimPrefix(line, "data:")
			// The wire format allows a single space after the colon;
			// further leading spaces belong to the payload.
			v = strings.TrimPrefix(v, " ")
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(v)
		}
	}

	if name == "" || data.Len() == 0 {
		return nil, fmt.Errorf("assistant: %w: need an event name and a data payload", relay.ErrIncompleteFrame)
	}
	return decodeEvent(name, []byte(data.String()))
}

func decodeEvent(name string, data []byte) (relay.Event, error) {
	switch name {
	case "message_start":
		var p messageStartPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse message_start: %w", err)
		}
		return relay.EventMessageStart{SessionID: p.SessionID}, nil

	case "content_delta":
		var p contentDeltaPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse content_delta: %w", err)
		}
		return relay.EventContentDelta{Text: p.Text}, nil

	case "function_call":
		var p functionCallPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse function_call: %w", err)
		}
		return relay.EventFunctionCall{ID: p.ID, Name: p.Name}, nil

	case "function_result":
		var p functionResultPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse function_result: %w", err)
		}
		return relay.EventFunctionResult{ToolUseID: p.ToolUseID, Result: p.Result}, nil

	case "message_end":
		var p messageEndPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse message_end: %w", err)
		}
		return relay.EventMessageEnd{SessionID: p.SessionID, TokensUsed: p.TokensUsed, LatencyMS: p.LatencyMS}, nil

	case "error":
		var p errorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("assistant: parse error event: %w", err)
		}
		return relay.EventError{Type: p.Type, Message: p.Message, Usage: p.Usage, Limit: p.Limit}, nil

	default:
		return nil, fmt.Errorf("assistant: unknown event %q", name)
	}
}
