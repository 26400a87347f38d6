package relay_test

import (
	"sync"
	"testing"

	"github.com/davidmoxey/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DispatchReturnsNewState(t *testing.T) {
	t.Parallel()

	st := relay.NewStore(nil)
	s := st.Dispatch(relay.OpenPanel{})
	assert.True(t, s.Open)
	assert.Same(t, s, st.State())
}

func TestStore_NilInitialState(t *testing.T) {
	t.Parallel()

	st := relay.NewStore(nil)
	require.NotNil(t, st.State())
	assert.False(t, st.State().Open)
}

func TestStore_SubscriberSeesEveryDispatch(t *testing.T) {
	t.Parallel()

	st := relay.NewStore(nil)
	var seen []*relay.State
	st.Subscribe(func(s *relay.State) { seen = append(seen, s) })

	st.Dispatch(relay.OpenPanel{})
	st.Dispatch(relay.OpenPanel{}) // no-op, still observed
	st.Dispatch(relay.SetStreaming{Streaming: true})

	require.Len(t, seen, 3)
	assert.Same(t, seen[0], seen[1], "no-op dispatch delivers the same state reference")
	assert.True(t, seen[2].Streaming)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	t.Parallel()

	st := relay.NewStore(nil)
	st.Dispatch(relay.StartAssistantMessage{Message: relay.Message{ID: "a1"}})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(relay.AppendContentDelta{Text: "x"})
		}()
	}
	wg.Wait()

	final := st.State()
	require.Len(t, final.Messages, 1)
	assert.Len(t, final.Messages[0].Content, 50)
}
