package relay

import "sync"

// Store serializes dispatches so the reducer is the single writer of State
// even under concurrent event arrival. Subscribers observe every dispatch
// on the dispatching goroutine, in subscription order; a subscriber that
// receives the same *State twice can skip work via pointer equality.
type Store struct {
	mu    sync.Mutex
	state *State
	subs  []func(*State)
}

// NewStore creates a Store around an initial state. A nil initial state
// means NewState().
func NewStore(initial *State) *Store {
	if initial == nil {
		initial = NewState()
	}
	return &Store{state: initial}
}

// Dispatch reduces the action into the current state and returns the
// result. Dispatches are serialized; subscribers run before the next
// dispatch is admitted.
func (st *Store) Dispatch(a Action) *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = Reduce(st.state, a)
	for _, fn := range st.subs {
		fn(st.state)
	}
	return st.state
}

// State returns the current state.
func (st *Store) State() *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Subscribe registers a read-only consumer of post-dispatch states.
func (st *Store) Subscribe(fn func(*State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
}
