// Package sqlite persists sessions in a SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/davidmoxey/relay"
)

// Interface compliance check.
var _ relay.SessionStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	session_id  TEXT    NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	id          TEXT    NOT NULL,
	role        TEXT    NOT NULL,
	content     TEXT    NOT NULL,
	timestamp   TEXT    NOT NULL,
	tool_calls  TEXT    NOT NULL,
	tokens_used INTEGER NOT NULL,
	latency_ms  INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// Store persists sessions in a SQLite database. Save replaces the
// stored session wholesale; Load returns the most recently saved one.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the session in one transaction, replacing any prior state.
func (s *Store) Save(sess relay.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("sqlite: clear sessions: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO sessions (id, updated_at) VALUES (?, ?)",
		sess.ID, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("sqlite: insert session: %w", err)
	}
	for seq, msg := range sess.Messages {
		calls, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("sqlite: marshal tool calls: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO messages
				(session_id, seq, id, role, content, timestamp, tool_calls, tokens_used, latency_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, seq, msg.ID, string(msg.Role), msg.Content,
			msg.Timestamp.UTC().Format(time.RFC3339Nano),
			string(calls), msg.TokensUsed, msg.LatencyMS,
		); err != nil {
			return fmt.Errorf("sqlite: insert message %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Load reads the stored session. An empty database yields an empty
// session, not an error.
func (s *Store) Load() (relay.Session, error) {
	var sess relay.Session
	err := s.db.QueryRow(
		"SELECT id FROM sessions ORDER BY updated_at DESC LIMIT 1",
	).Scan(&sess.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return relay.Session{}, nil
	}
	if err != nil {
		return relay.Session{}, fmt.Errorf("sqlite: load session: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, role, content, timestamp, tool_calls, tokens_used, latency_ms
			FROM messages WHERE session_id = ? ORDER BY seq`,
		sess.ID,
	)
	if err != nil {
		return relay.Session{}, fmt.Errorf("sqlite: load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg   relay.Message
			role  string
			ts    string
			calls string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts, &calls, &msg.TokensUsed, &msg.LatencyMS); err != nil {
			return relay.Session{}, fmt.Errorf("sqlite: scan message: %w", err)
		}
		msg.Role = relay.Role(role)
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return relay.Session{}, fmt.Errorf("sqlite: parse timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(calls), &msg.ToolCalls); err != nil {
			return relay.Session{}, fmt.Errorf("sqlite: unmarshal tool calls: %w", err)
		}
		sess.Messages = append(sess.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return relay.Session{}, fmt.Errorf("sqlite: iterate messages: %w", err)
	}
	return sess, nil
}
