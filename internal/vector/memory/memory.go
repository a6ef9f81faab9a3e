package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/qcbot/backend/internal/vector"
)

// Store is a brute-force in-memory vector store using cosine similarity.
// The hierarchy corpus is small (one entry per plant/section/item), so a
// linear scan is plenty.
type Store struct {
	mu      sync.RWMutex
	dim     int
	entries []vector.Entry
	vectors [][]float32
}

func NewStore() *Store { return &Store{} }

func (s *Store) Reset(_ context.Context, dim int) error {
	if dim <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dim = dim
	s.entries = nil
	s.vectors = nil
	return nil
}

func (s *Store) Upsert(_ context.Context, entries []vector.Entry, vectors [][]float32) error {
	if len(entries) != len(vectors) {
		return errors.New("entries and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dim {
			return errors.New("vector dimension mismatch")
		}
	}
	s.entries = append(s.entries, entries...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Store) Search(_ context.Context, query []float32, topK int) ([]vector.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 3
	}

	matches := make([]vector.Match, 0, len(s.vectors))
	for i := range s.vectors {
		matches = append(matches, vector.Match{
			Entry: s.entries[i],
			Score: cosine(s.vectors[i], query),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Store) Close() error { return nil }

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
