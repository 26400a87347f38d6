package relay

// Session is the persisted shape of a conversation: the service-assigned
// identifier plus the transcript.
type Session struct {
	ID       string
	Messages []Message
}

// SessionStore persists the last known session across process restarts.
// Load returns a zero Session, not an error, when nothing is stored.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
}
