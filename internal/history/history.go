/*
Package history tracks which inbox messages have already been screened, so a
restart never re-screens a candidate or sends a duplicate reply.
*/
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type record struct {
	ProcessedAt time.Time `json:"processed_at"`
}

type state struct {
	Processed map[string]record `json:"processed"`
}

// Manager persists the set of processed message IDs as JSON.
type Manager struct {
	mu    sync.Mutex
	path  string
	state state
}

// NewManager loads existing history from path, starting fresh when the file
// does not exist yet.
func NewManager(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	m := &Manager{
		path:  path,
		state: state{Processed: make(map[string]record)},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read history file %s: %w", path, err)
	}

	var loaded state
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse history file %s: %w", path, err)
	}
	if loaded.Processed != nil {
		m.state = loaded
	}

	return m, nil
}

// Seen reports whether the message was already processed.
func (m *Manager) Seen(messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.state.Processed[messageID]
	return ok
}

// MarkProcessed records the message IDs and saves the history file.
func (m *Manager) MarkProcessed(messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range messageIDs {
		m.state.Processed[id] = record{ProcessedAt: now}
	}
	return m.save()
}

// Count returns the number of processed messages on record.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Processed)
}

// Path returns the history file location.
func (m *Manager) Path() string { return m.path }

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write history file %s: %w", m.path, err)
	}
	return nil
}
