package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the key-value contract the engines need from a session backend.
// Get reports absence through the boolean, not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Level is the hierarchical engine's navigation position.
type Level string

const (
	LevelStart   Level = "START"
	LevelPlant   Level = "PLANT"
	LevelSection Level = "SECTION"
	LevelItem    Level = "ITEM"
	LevelDetails Level = "DETAILS"
)

// Context is the per-conversation mutable state. The hierarchical engine
// uses Level plus the selected identifiers; the wizard engine tracks one
// independent sub-level per question type so switching questions
// mid-conversation never corrupts another flow's progress.
type Context struct {
	Level Level `json:"level"`

	PlantID     string `json:"plant_id,omitempty"`
	SectionID   string `json:"section_id,omitempty"`
	ItemCode    string `json:"item_code,omitempty"`
	PlantName   string `json:"selected_plant_name,omitempty"`
	SectionName string `json:"selected_section_name,omitempty"`
	ItemDesc    string `json:"selected_item_desc,omitempty"`

	Q1Level string `json:"q1_level,omitempty"`
	Q2Level string `json:"q2_level,omitempty"`
	Q3Level string `json:"q3_level,omitempty"`
	Q4Level string `json:"q4_level,omitempty"`
	Q5Level string `json:"q5_level,omitempty"`
	Q6Level string `json:"q6_level,omitempty"`

	SelectedPlant    string `json:"selected_plant,omitempty"`
	SelectedBuilding string `json:"selected_building,omitempty"`
	SelectedItem     string `json:"selected_item,omitempty"`
}

// NewContext returns the default START state for a fresh session.
func NewContext() Context {
	return Context{Level: LevelStart}
}

// Turn is one entry in the conversation history. Chart and table payloads
// are stored as raw JSON so the history survives a round trip without the
// store knowing their shape.
type Turn struct {
	Role         string          `json:"role"`
	Message      string          `json:"message"`
	IsSuggestion bool            `json:"is_suggestion,omitempty"`
	Suggestions  []string        `json:"suggestions,omitempty"`
	Chart        json.RawMessage `json:"chart_data,omitempty"`
	Table        json.RawMessage `json:"table_data,omitempty"`
	Timestamp    string          `json:"timestamp"`
}

// Manager wraps a Store with the JSON field layout used for session state:
// one key per logical field, namespaced by session id. Every write refreshes
// the TTL. Concurrent messages for the same session are last-write-wins;
// the engines do not take a per-session lock.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl}
}

func key(sessionID, field string) string {
	return "chat:" + sessionID + ":" + field
}

func (m *Manager) load(ctx context.Context, sessionID, field string, out any) (bool, error) {
	raw, ok, err := m.store.Get(ctx, key(sessionID, field))
	if err != nil {
		return false, fmt.Errorf("failed to read session %s: %w", field, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode session %s: %w", field, err)
	}
	return true, nil
}

func (m *Manager) save(ctx context.Context, sessionID, field string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", field, err)
	}
	k := key(sessionID, field)
	if err := m.store.Set(ctx, k, string(data)); err != nil {
		return fmt.Errorf("failed to write session %s: %w", field, err)
	}
	return m.store.Expire(ctx, k, m.ttl)
}

// Context returns the stored context or a fresh START context.
func (m *Manager) Context(ctx context.Context, sessionID string) (Context, error) {
	sc := NewContext()
	if _, err := m.load(ctx, sessionID, "context", &sc); err != nil {
		return sc, err
	}
	if sc.Level == "" {
		sc.Level = LevelStart
	}
	return sc, nil
}

func (m *Manager) SaveContext(ctx context.Context, sessionID string, sc Context) error {
	return m.save(ctx, sessionID, "context", sc)
}

func (m *Manager) History(ctx context.Context, sessionID string) ([]Turn, error) {
	var turns []Turn
	if _, err := m.load(ctx, sessionID, "history", &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (m *Manager) SaveHistory(ctx context.Context, sessionID string, turns []Turn) error {
	return m.save(ctx, sessionID, "history", turns)
}

func (m *Manager) TreePath(ctx context.Context, sessionID string) ([]string, error) {
	var path []string
	if _, err := m.load(ctx, sessionID, "tree_path", &path); err != nil {
		return nil, err
	}
	return path, nil
}

func (m *Manager) SaveTreePath(ctx context.Context, sessionID string, path []string) error {
	return m.save(ctx, sessionID, "tree_path", path)
}

// Reset drops all state for a session.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	for _, field := range []string{"context", "history", "tree_path"} {
		if err := m.store.Delete(ctx, key(sessionID, field)); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", field, err)
		}
	}
	return nil
}
