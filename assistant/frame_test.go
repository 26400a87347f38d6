package assistant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/assistant"
)

func TestParseFrame_Events(t *testing.T) {
	t.Parallel()

	usage, limit := 95, 100
	tests := []struct {
		name  string
		block string
		want  relay.Event
	}{
		{
			name:  "message_start",
			block: "event: message_start\ndata: {\"session_id\":\"s1\"}",
			want:  relay.EventMessageStart{SessionID: "s1"},
		},
		{
			name:  "content_delta",
			block: "event: content_delta\ndata: {\"text\":\"Hello\"}",
			want:  relay.EventContentDelta{Text: "Hello"},
		},
		{
			name:  "function_call",
			block: "event: function_call\ndata: {\"id\":\"fc_1\",\"name\":\"search\"}",
			want:  relay.EventFunctionCall{ID: "fc_1", Name: "search"},
		},
		{
			name:  "function_result",
			block: "event: function_result\ndata: {\"tool_use_id\":\"fc_1\",\"result\":\"3 hits\"}",
			want:  relay.EventFunctionResult{ToolUseID: "fc_1", Result: "3 hits"},
		},
		{
			name:  "message_end",
			block: "event: message_end\ndata: {\"session_id\":\"s1\",\"tokens_used\":10,\"latency_ms\":200}",
			want:  relay.EventMessageEnd{SessionID: "s1", TokensUsed: 10, LatencyMS: 200},
		},
		{
			name:  "error with rate limit info",
			block: "event: error\ndata: {\"type\":\"rate_limit\",\"message\":\"quota exceeded\",\"usage\":95,\"limit\":100}",
			want:  relay.EventError{Type: "rate_limit", Message: "quota exceeded", Usage: &usage, Limit: &limit},
		},
		{
			name:  "error without rate limit info",
			block: "event: error\ndata: {\"type\":\"overloaded\",\"message\":\"try later\"}",
			want:  relay.EventError{Type: "overloaded", Message: "try later"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := assistant.ParseFrame(tt.block)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFrame_Syntax(t *testing.T) {
	t.Parallel()

	t.Run("comment lines are ignored", func(t *testing.T) {
		t.Parallel()
		got, err := assistant.ParseFrame(": keep-alive\nevent: content_delta\n: another\ndata: {\"text\":\"hi\"}")
		require.NoError(t, err)
		assert.Equal(t, relay.EventContentDelta{Text: "hi"}, got)
	})

	t.Run("event name is trimmed", func(t *testing.T) {
		t.Parallel()
		got, err := assistant.ParseFrame("event:   content_delta  \ndata: {\"text\":\"hi\"}")
		require.NoError(t, err)
		assert.Equal(t, relay.EventContentDelta{Text: "hi"}, got)
	})

	t.Run("multiple data lines join with newline", func(t *testing.T) {
		t.Parallel()
		got, err := assistant.ParseFrame("event: content_delta\ndata: {\"text\":\ndata: \"hi\"}")
		require.NoError(t, err)
		assert.Equal(t, relay.EventContentDelta{Text: "hi"}, got)
	})

	t.Run("only one leading space is stripped", func(t *testing.T) {
		t.Parallel()
		got, err := assistant.ParseFrame("event: content_delta\ndata:  {\"text\":\"hi\"}")
		require.NoError(t, err)
		// The second space survives stripping and is insignificant to JSON.
		assert.Equal(t, relay.EventContentDelta{Text: "hi"}, got)
	})

	t.Run("no space after prefix is accepted", func(t *testing.T) {
		t.Parallel()
		got, err := assistant.ParseFrame("event:content_delta\ndata:{\"text\":\"hi\"}")
		require.NoError(t, err)
		assert.Equal(t, relay.EventContentDelta{Text: "hi"}, got)
	})
}

func TestParseFrame_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		block string
	}{
		{"missing event name", "data: {\"text\":\"hi\"}"},
		{"missing data", "event: content_delta"},
		{"comment only", ": keep-alive"},
		{"malformed json", "event: content_delta\ndata: {\"text\":"},
		{"unknown event name", "event: telemetry\ndata: {}"},
		{"wrong payload type", "event: message_end\ndata: {\"tokens_used\":\"ten\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			evt, err := assistant.ParseFrame(tt.block)
			assert.Error(t, err)
			assert.Nil(t, evt)
		})
	}

	t.Run("incomplete frames carry the sentinel", func(t *testing.T) {
		t.Parallel()
		_, err := assistant.ParseFrame("event: content_delta")
		assert.ErrorIs(t, err, relay.ErrIncompleteFrame)
	})
}
