package vector

import "context"

// Entry is one embedded hierarchy description ("Plant: ...", "Section: ...
// in ...", "Item: ... (...) in ...").
type Entry struct {
	ID        string
	Text      string
	Level     string // "plant", "section" or "item"
	PlantID   string
	SectionID string
	ItemCode  string
	Name      string
}

// Match is a search hit with its similarity score.
type Match struct {
	Entry Entry
	Score float32
}

// Store indexes entity description embeddings and answers nearest-neighbor
// queries for free-text navigation.
type Store interface {
	Reset(ctx context.Context, dim int) error
	Upsert(ctx context.Context, entries []Entry, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Close() error
}
