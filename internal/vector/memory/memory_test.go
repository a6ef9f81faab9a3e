package memory

import (
	"context"
	"testing"

	"github.com/qcbot/backend/internal/vector"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	ctx := context.Background()

	if err := s.Reset(ctx, 3); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	entries := []vector.Entry{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
		{ID: "c", Name: "Gamma"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	if err := s.Upsert(ctx, entries, vectors); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	return s
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	s := seeded(t)

	matches, err := s.Search(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("want 3 matches, got %d", len(matches))
	}
	if matches[0].Entry.ID != "a" {
		t.Fatalf("want best match %q, got %q", "a", matches[0].Entry.ID)
	}
	if matches[1].Entry.ID != "c" {
		t.Fatalf("want second match %q, got %q", "c", matches[1].Entry.ID)
	}
	if matches[0].Score < matches[1].Score || matches[1].Score < matches[2].Score {
		t.Fatalf("scores not descending: %v %v %v", matches[0].Score, matches[1].Score, matches[2].Score)
	}
}

func TestSearchTopK(t *testing.T) {
	s := seeded(t)

	matches, err := s.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("want 2 matches, got %d", len(matches))
	}

	// Non-positive topK falls back to the default of 3.
	matches, err = s.Search(context.Background(), []float32{1, 0, 0}, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("want 3 matches, got %d", len(matches))
	}
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Reset(ctx, 3); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	err := s.Upsert(ctx, []vector.Entry{{ID: "a"}}, [][]float32{{1, 0}})
	if err == nil {
		t.Fatalf("want dimension mismatch error")
	}

	err = s.Upsert(ctx, []vector.Entry{{ID: "a"}, {ID: "b"}}, [][]float32{{1, 0, 0}})
	if err == nil {
		t.Fatalf("want length mismatch error")
	}
}

func TestResetClearsEntries(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	if err := s.Reset(ctx, 3); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	matches, err := s.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("want no matches after reset, got %d", len(matches))
	}

	if err := s.Reset(ctx, 0); err == nil {
		t.Fatalf("want error for invalid dimension")
	}
}
