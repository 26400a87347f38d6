package mock

import "github.com/davidmoxey/relay"

// Interface compliance check.
var _ relay.SessionStore = (*SessionStore)(nil)

// SessionStore is a test double for relay.SessionStore.
// LoadFn is nil-safe and returns an empty session so engines without
// restore expectations need no setup.
type SessionStore struct {
	LoadFn func() (relay.Session, error)
	SaveFn func(sess relay.Session) error

	// Saved records every session passed to Save, in order.
	Saved []relay.Session
}

// Load delegates to LoadFn. Returns an empty session when LoadFn is nil.
func (s *SessionStore) Load() (relay.Session, error) {
	if s.LoadFn == nil {
		return relay.Session{}, nil
	}
	return s.LoadFn()
}

// Save records the session and delegates to SaveFn when set.
func (s *SessionStore) Save(sess relay.Session) error {
	s.Saved = append(s.Saved, sess)
	if s.SaveFn == nil {
		return nil
	}
	return s.SaveFn(sess)
}
