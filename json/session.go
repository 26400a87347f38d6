// Package json persists sessions as JSON files on disk.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/davidmoxey/relay"
)

// Interface compliance check.
var _ relay.SessionStore = (*Store)(nil)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version  int          `json:"version"`
	ID       string       `json:"id"`
	Messages []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	ID         string        `json:"id"`
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Timestamp  time.Time     `json:"timestamp"`
	ToolCalls  []toolCallDTO `json:"tool_calls,omitempty"`
	TokensUsed int           `json:"tokens_used,omitempty"`
	LatencyMS  int           `json:"latency_ms,omitempty"`
}

type toolCallDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s relay.Session) ([]byte, error) {
	env := envelope{
		Version:  1,
		ID:       s.ID,
		Messages: make([]messageDTO, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		env.Messages[i] = marshalMessage(msg)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (relay.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return relay.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return relay.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]relay.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return relay.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return relay.Session{ID: env.ID, Messages: msgs}, nil
}

func marshalMessage(m relay.Message) messageDTO {
	dto := messageDTO{
		ID:         m.ID,
		Role:       string(m.Role),
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		TokensUsed: m.TokensUsed,
		LatencyMS:  m.LatencyMS,
	}
	for _, tc := range m.ToolCalls {
		dto.ToolCalls = append(dto.ToolCalls, toolCallDTO{
			ID:     tc.ID,
			Name:   tc.Name,
			Status: string(tc.Status),
			Result: tc.Result,
		})
	}
	return dto
}

func unmarshalMessage(dto messageDTO) (relay.Message, error) {
	role := relay.Role(dto.Role)
	switch role {
	case relay.RoleUser, relay.RoleAssistant:
	default:
		return relay.Message{}, fmt.Errorf("unknown role: %q", dto.Role)
	}
	msg := relay.Message{
		ID:         dto.ID,
		Role:       role,
		Content:    dto.Content,
		Timestamp:  dto.Timestamp,
		TokensUsed: dto.TokensUsed,
		LatencyMS:  dto.LatencyMS,
	}
	for _, tc := range dto.ToolCalls {
		status := relay.ToolCallStatus(tc.Status)
		switch status {
		case relay.ToolCallRunning, relay.ToolCallCompleted:
		default:
			return relay.Message{}, fmt.Errorf("unknown tool call status: %q", tc.Status)
		}
		msg.ToolCalls = append(msg.ToolCalls, relay.ToolCall{
			ID:     tc.ID,
			Name:   tc.Name,
			Status: status,
			Result: tc.Result,
		})
	}
	return msg, nil
}

// Store persists sessions to a single JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session. A missing file is not an error
// and yields an empty session.
func (s *Store) Load() (relay.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return relay.Session{}, nil
	}
	if err != nil {
		return relay.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// Save writes the session atomically, creating parent directories as needed.
func (s *Store) Save(sess relay.Session) error {
	data, err := MarshalSession(sess)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
