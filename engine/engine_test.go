package engine_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/assistant"
	"github.com/davidmoxey/relay/engine"
	"github.com/davidmoxey/relay/mock"
)

func TestEngine_SendEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range []string{
			"event: message_start\ndata: {\"session_id\":\"s1\"}\n\n",
			"event: content_delta\ndata: {\"text\":\"Hello\"}\n\n",
			"event: content_delta\ndata: {\"text\":\" world\"}\n\n",
			"event: message_end\ndata: {\"session_id\":\"s1\",\"tokens_used\":10,\"latency_ms\":200}\n\n",
		} {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	store := relay.NewStore(nil)
	e := engine.New(assistant.New(srv.URL), store)

	e.Send(context.Background(), "Hi")
	e.WaitForTest()

	s := store.State()
	assert.Equal(t, "s1", s.SessionID)
	assert.False(t, s.Streaming)
	assert.Empty(t, s.Err)
	require.Len(t, s.Messages, 2)

	assert.Equal(t, relay.RoleUser, s.Messages[0].Role)
	assert.Equal(t, "Hi", s.Messages[0].Content)

	final := s.Messages[1]
	assert.Equal(t, relay.RoleAssistant, final.Role)
	assert.Equal(t, "Hello world", final.Content)
	assert.Equal(t, 10, final.TokensUsed)
	assert.Equal(t, 200, final.LatencyMS)
}

func TestEngine_ToolCallLifecycle(t *testing.T) {
	t.Parallel()

	opener := &mock.Opener{
		OpenFn: func(ctx context.Context, req relay.Request) (relay.Stream, error) {
			return mock.StreamOf(
				relay.EventMessageStart{SessionID: "s1"},
				relay.EventFunctionCall{ID: "fc_1", Name: "search"},
				relay.EventFunctionResult{ToolUseID: "fc_1", Result: "3 hits"},
				relay.EventContentDelta{Text: "Found it."},
				relay.EventMessageEnd{SessionID: "s1", TokensUsed: 20, LatencyMS: 300},
			), nil
		},
	}
	store := relay.NewStore(nil)
	e := engine.New(opener, store)

	e.Send(context.Background(), "find x")
	e.WaitForTest()

	s := store.State()
	require.Len(t, s.Messages, 2)
	calls := s.Messages[1].ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, relay.ToolCall{
		ID:     "fc_1",
		Name:   "search",
		Status: relay.ToolCallCompleted,
		Result: "3 hits",
	}, calls[0])
}

func TestEngine_NewSendCancelsPrevious(t *testing.T) {
	t.Parallel()

	var opens int
	opened := make(chan struct{})
	opener := &mock.Opener{
		OpenFn: func(ctx context.Context, req relay.Request) (relay.Stream, error) {
			opens++
			if opens == 1 {
				close(opened)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return mock.StreamOf(
				relay.EventMessageStart{SessionID: "s1"},
				relay.EventContentDelta{Text: "done"},
				relay.EventMessageEnd{SessionID: "s1", TokensUsed: 1, LatencyMS: 1},
			), nil
		},
	}
	store := relay.NewStore(nil)
	e := engine.New(opener, store)

	e.Send(context.Background(), "first")
	<-opened
	e.Send(context.Background(), "second")
	e.WaitForTest()

	assert.Equal(t, 2, opens)
	s := store.State()
	assert.False(t, s.Streaming)
	assert.Empty(t, s.Err)

	// The abandoned turn's messages remain; the new turn completes.
	require.Len(t, s.Messages, 4)
	assert.Equal(t, "second", s.Messages[2].Content)
	assert.Equal(t, "done", s.Messages[3].Content)
}

func TestEngine_SessionIDCarriesAcrossTurns(t *testing.T) {
	t.Parallel()

	var gotSessionIDs []string
	opener := &mock.Opener{
		OpenFn: func(ctx context.Context, req relay.Request) (relay.Stream, error) {
			gotSessionIDs = append(gotSessionIDs, req.SessionID)
			return mock.StreamOf(
				relay.EventMessageStart{SessionID: "s1"},
				relay.EventContentDelta{Text: "ok"},
				relay.EventMessageEnd{SessionID: "s1", TokensUsed: 1, LatencyMS: 1},
			), nil
		},
	}
	store := relay.NewStore(nil)
	e := engine.New(opener, store)

	e.Send(context.Background(), "one")
	e.WaitForTest()
	e.Send(context.Background(), "two")
	e.WaitForTest()

	assert.Equal(t, []string{"", "s1"}, gotSessionIDs)
}

func TestEngine_PersistsCompletedTurns(t *testing.T) {
	t.Parallel()

	opener := &mock.Opener{
		OpenFn: func(ctx context.Context, req relay.Request) (relay.Stream, error) {
			return mock.StreamOf(
				relay.EventMessageStart{SessionID: "s1"},
				relay.EventContentDelta{Text: "Hello"},
				relay.EventMessageEnd{SessionID: "s1", TokensUsed: 10, LatencyMS: 200},
			), nil
		},
	}
	sessions := &mock.SessionStore{}
	store := relay.NewStore(nil)
	e := engine.New(opener, store, engine.WithSessionStore(sessions))

	e.Send(context.Background(), "Hi")
	e.WaitForTest()

	require.NotEmpty(t, sessions.Saved)
	last := sessions.Saved[len(sessions.Saved)-1]
	assert.Equal(t, "s1", last.ID)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "Hello", last.Messages[1].Content)
}

func TestEngine_Restore(t *testing.T) {
	t.Parallel()

	msgs := []relay.Message{
		{ID: "m1", Role: relay.RoleUser, Content: "Hi", Timestamp: time.Now()},
		{ID: "m2", Role: relay.RoleAssistant, Content: "Hello", Timestamp: time.Now()},
	}
	sessions := &mock.SessionStore{
		LoadFn: func() (relay.Session, error) {
			return relay.Session{ID: "s9", Messages: msgs}, nil
		},
	}
	store := relay.NewStore(nil)
	e := engine.New(&mock.Opener{}, store, engine.WithSessionStore(sessions))

	require.NoError(t, e.Restore())

	s := store.State()
	assert.Equal(t, "s9", s.SessionID)
	assert.Equal(t, msgs, s.Messages)
}

func TestEngine_RestoreEmptySessionIsNoOp(t *testing.T) {
	t.Parallel()

	store := relay.NewStore(nil)
	before := store.State()
	e := engine.New(&mock.Opener{}, store, engine.WithSessionStore(&mock.SessionStore{}))

	require.NoError(t, e.Restore())
	assert.Same(t, before, store.State())
}

func TestEngine_Clear(t *testing.T) {
	t.Parallel()

	opener := &mock.Opener{
		OpenFn: func(ctx context.Context, req relay.Request) (relay.Stream, error) {
			return mock.StreamOf(
				relay.EventMessageStart{SessionID: "s1"},
				relay.EventContentDelta{Text: "Hello"},
				relay.EventMessageEnd{SessionID: "s1", TokensUsed: 1, LatencyMS: 1},
			), nil
		},
	}
	sessions := &mock.SessionStore{}
	store := relay.NewStore(nil)
	e := engine.New(opener, store, engine.WithSessionStore(sessions))

	e.Send(context.Background(), "Hi")
	e.WaitForTest()
	e.Clear()

	s := store.State()
	assert.Empty(t, s.SessionID)
	assert.Empty(t, s.Messages)

	last := sessions.Saved[len(sessions.Saved)-1]
	assert.Empty(t, last.ID)
	assert.Empty(t, last.Messages)
}
