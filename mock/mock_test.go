package mock_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/mock"
)

func TestStreamOf(t *testing.T) {
	t.Parallel()

	s := mock.StreamOf(
		relay.EventContentDelta{Text: "a"},
		relay.EventContentDelta{Text: "b"},
	)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, relay.EventContentDelta{Text: "a"}, evt)

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, relay.EventContentDelta{Text: "b"}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionStore_NilSafe(t *testing.T) {
	t.Parallel()

	store := &mock.SessionStore{}

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.ID)

	require.NoError(t, store.Save(relay.Session{ID: "s1"}))
	assert.Equal(t, []relay.Session{{ID: "s1"}}, store.Saved)
}
