// Package engine drives conversation turns. It owns the send
// lifecycle: dispatching the optimistic user and placeholder
// assistant messages, opening the stream, translating wire events
// into store actions, and retrying failed attempts with exponential
// backoff. At most one send is in flight at a time.
package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidmoxey/relay"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 8 * time.Second
)

type Engine struct {
	opener   relay.Opener
	store    *relay.Store
	sessions relay.SessionStore
	logger   *zap.Logger

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleep      func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Engine)

// WithSessionStore enables persistence. The engine saves the session
// after every completed turn.
func WithSessionStore(s relay.SessionStore) Option {
	return func(e *Engine) { e.sessions = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMaxRetries(n int) Option {
	return func(e *Engine) { e.maxRetries = n }
}

func WithBackoff(base, max time.Duration) Option {
	return func(e *Engine) {
		e.baseDelay = base
		e.maxDelay = max
	}
}

func New(opener relay.Opener, store *relay.Store, opts ...Option) *Engine {
	e := &Engine{
		opener:     opener,
		store:      store,
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		sleep:      sleepCtx,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Restore loads the persisted session, if any, into the store.
func (e *Engine) Restore() error {
	if e.sessions == nil {
		return nil
	}
	sess, err := e.sessions.Load()
	if err != nil {
		return err
	}
	if sess.ID == "" && len(sess.Messages) == 0 {
		return nil
	}
	e.store.Dispatch(relay.LoadSession{SessionID: sess.ID, Messages: sess.Messages})
	return nil
}

// Send starts a new conversation turn. Any in-flight send is
// cancelled and fully torn down before the new turn's actions are
// dispatched, so events from the two never interleave.
func (e *Engine) Send(ctx context.Context, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelActiveLocked()

	now := time.Now()
	e.store.Dispatch(relay.SetError{Message: ""})
	e.store.Dispatch(relay.AddUserMessage{Message: relay.Message{
		ID:        uuid.NewString(),
		Role:      relay.RoleUser,
		Content:   text,
		Timestamp: now,
	}})
	e.store.Dispatch(relay.StartAssistantMessage{Message: relay.Message{
		ID:        uuid.NewString(),
		Role:      relay.RoleAssistant,
		Timestamp: now,
	}})
	e.store.Dispatch(relay.SetStreaming{Streaming: true})

	req := relay.Request{Message: text, SessionID: e.store.State().SessionID}

	sendCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	go e.run(sendCtx, req, done)
}

// Cancel stops the in-flight send, if any, and waits for its
// goroutine to exit.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelActiveLocked()
}

// Clear cancels any in-flight send and resets the conversation. The
// persisted session, if any, is replaced with an empty one.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelActiveLocked()
	e.store.Dispatch(relay.ClearSession{})
	e.persist()
}

func (e *Engine) cancelActiveLocked() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
}

func (e *Engine) run(ctx context.Context, req relay.Request, done chan struct{}) {
	defer close(done)

	rs := &retryState{}
	for {
		err := e.attempt(ctx, req, rs)
		if err == nil {
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// User-initiated teardown is not a failure.
			e.store.Dispatch(relay.SetStreaming{Streaming: false})
			return
		}

		delay, ok := rs.next(e.maxRetries, e.baseDelay, e.maxDelay)
		if !ok {
			e.logger.Error("send failed", zap.Error(err), zap.Int("attempts", rs.attempts))
			e.store.Dispatch(relay.SetError{Message: err.Error()})
			e.store.Dispatch(relay.SetStreaming{Streaming: false})
			return
		}
		e.logger.Warn("retrying send",
			zap.Error(err),
			zap.Int("attempt", rs.attempts),
			zap.Duration("delay", delay),
		)
		if e.sleep(ctx, delay) != nil {
			e.store.Dispatch(relay.SetStreaming{Streaming: false})
			return
		}
	}
}

// attempt runs one stream to completion. A nil return means the turn
// is settled (completed normally or terminated by a server error
// event) and must not be retried.
func (e *Engine) attempt(ctx context.Context, req relay.Request, rs *retryState) error {
	stream, err := e.opener.Open(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			// Completion without message_end still ends the turn.
			e.store.Dispatch(relay.SetStreaming{Streaming: false})
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if terminal := e.apply(evt, rs); terminal {
			return nil
		}
	}
}

// apply translates one wire event into store actions. It reports
// whether the event terminates the turn.
func (e *Engine) apply(evt relay.Event, rs *retryState) bool {
	switch evt := evt.(type) {
	case relay.EventMessageStart:
		e.store.Dispatch(relay.SetSessionID{ID: evt.SessionID})
		e.persist()
	case relay.EventContentDelta:
		rs.hasContent = true
		e.store.Dispatch(relay.AppendContentDelta{Text: evt.Text})
	case relay.EventFunctionCall:
		e.store.Dispatch(relay.AddFunctionCall{Call: relay.ToolCall{
			ID:     evt.ID,
			Name:   evt.Name,
			Status: relay.ToolCallRunning,
		}})
	case relay.EventFunctionResult:
		e.store.Dispatch(relay.UpdateFunctionResult{ToolUseID: evt.ToolUseID, Result: evt.Result})
	case relay.EventMessageEnd:
		e.store.Dispatch(relay.SetSessionID{ID: evt.SessionID})
		e.store.Dispatch(relay.FinalizeAssistantMessage{
			TokensUsed: evt.TokensUsed,
			LatencyMS:  evt.LatencyMS,
		})
		e.persist()
		return true
	case relay.EventError:
		if evt.Usage != nil && evt.Limit != nil {
			e.store.Dispatch(relay.SetRateLimit{Info: &relay.RateLimit{
				Usage: *evt.Usage,
				Limit: *evt.Limit,
			}})
		}
		e.store.Dispatch(relay.SetError{Message: evt.Message})
		e.store.Dispatch(relay.SetStreaming{Streaming: false})
		return true
	}
	return false
}

func (e *Engine) persist() {
	if e.sessions == nil {
		return
	}
	s := e.store.State()
	if err := e.sessions.Save(relay.Session{ID: s.SessionID, Messages: s.Messages}); err != nil {
		e.logger.Error("saving session", zap.Error(err))
	}
}
