package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/qcbot/backend/internal/dataset"
	"github.com/qcbot/backend/internal/session"
)

func newTestHierarchical(t *testing.T) *Hierarchical {
	t.Helper()
	data := dataset.Build(engineRecords())
	sessions := session.NewManager(session.NewMemoryStore(), 0)
	return NewHierarchical(data, sessions, nil, nil)
}

func TestHierarchicalInitializeWithoutProvider(t *testing.T) {
	h := newTestHierarchical(t)
	if err := h.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize without provider must succeed: %v", err)
	}
}

func TestHierarchicalInitialSuggestions(t *testing.T) {
	h := newTestHierarchical(t)
	suggestions, greeting, err := h.InitialSuggestions(context.Background(), "s1")
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("want 5 suggestions, got %d", len(suggestions))
	}
	if suggestions[0] != "Explore Alpha Works" {
		t.Fatalf("want=%q got=%q", "Explore Alpha Works", suggestions[0])
	}
	if greeting == "" {
		t.Fatalf("want a greeting line")
	}
}

func TestHierarchicalNameNavigation(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	if _, _, err := h.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	reply, err := h.ProcessMessage(ctx, "s1", "Explore Alpha Works", true)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Metadata["current_level"] != "PLANT" {
		t.Fatalf("want level PLANT, got %v", reply.Metadata["current_level"])
	}
	if !strings.Contains(reply.Response, "Alpha Works") {
		t.Fatalf("narrative must mention the plant, got %q", reply.Response)
	}
	if len(reply.Suggestions) != 5 {
		t.Fatalf("want 5 suggestions, got %d", len(reply.Suggestions))
	}

	sc, err := h.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("context read failed: %v", err)
	}
	if sc.Level != session.LevelPlant || sc.PlantID != "P1" {
		t.Fatalf("unexpected context %+v", sc)
	}
}

func TestHierarchicalDescendToItem(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	if _, _, err := h.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	steps := []struct {
		message string
		level   session.Level
	}{
		{"Explore Alpha Works", session.LevelPlant},
		{"Show me Machining Bay", session.LevelSection},
		{"Tell me about Steel Bracket", session.LevelItem},
	}
	for _, step := range steps {
		if _, err := h.ProcessMessage(ctx, "s1", step.message, true); err != nil {
			t.Fatalf("process %q failed: %v", step.message, err)
		}
		sc, err := h.sessions.Context(ctx, "s1")
		if err != nil {
			t.Fatalf("context read failed: %v", err)
		}
		if sc.Level != step.level {
			t.Fatalf("after %q want level %q, got %q", step.message, step.level, sc.Level)
		}
	}

	sc, _ := h.sessions.Context(ctx, "s1")
	if sc.PlantID != "P1" || sc.SectionID != "B1" || sc.ItemCode != "1000000001" {
		t.Fatalf("unexpected selection %+v", sc)
	}

	path, err := h.TreePath(ctx, "s1")
	if err != nil {
		t.Fatalf("tree path read failed: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("want 3 path entries, got %d", len(path))
	}
}

func TestHierarchicalSectionClearsDeeperSelection(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	if _, _, err := h.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	for _, msg := range []string{"Explore Alpha Works", "Show me Machining Bay", "Tell me about Steel Bracket"} {
		if _, err := h.ProcessMessage(ctx, "s1", msg, true); err != nil {
			t.Fatalf("process %q failed: %v", msg, err)
		}
	}

	if _, err := h.ProcessMessage(ctx, "s1", "Back to Machining Bay", false); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	sc, _ := h.sessions.Context(ctx, "s1")
	if sc.Level != session.LevelSection {
		t.Fatalf("want level SECTION, got %q", sc.Level)
	}
	if sc.ItemCode != "" || sc.ItemDesc != "" {
		t.Fatalf("item selection must be cleared, got %+v", sc)
	}
}

func TestHierarchicalChartOnRequest(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	if _, _, err := h.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	for _, msg := range []string{"Explore Alpha Works", "Show me Machining Bay", "Tell me about Steel Bracket"} {
		if _, err := h.ProcessMessage(ctx, "s1", msg, true); err != nil {
			t.Fatalf("process %q failed: %v", msg, err)
		}
	}

	reply, err := h.ProcessMessage(ctx, "s1", "Show me quality trends over time", true)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Chart == nil || reply.Chart.Type != "line" {
		t.Fatalf("want a trend chart, got %+v", reply.Chart)
	}

	reply, err = h.ProcessMessage(ctx, "s1", "Display all inspection parameters", true)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Table == nil {
		t.Fatalf("want a parameter table")
	}
	if reply.Table.Columns[0] != "Parameter" {
		t.Fatalf("unexpected columns %v", reply.Table.Columns)
	}
}

func TestHierarchicalPlainMessageHasNoSpecs(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	if _, _, err := h.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	reply, err := h.ProcessMessage(ctx, "s1", "hello there", false)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Chart != nil || reply.Table != nil {
		t.Fatalf("plain message must not carry chart or table")
	}
	if strings.TrimSpace(reply.Response) == "" {
		t.Fatalf("want a non-empty narrative")
	}
	if reply.Metadata["current_level"] != "START" {
		t.Fatalf("want level START, got %v", reply.Metadata["current_level"])
	}
}

func TestHierarchicalResetRoundTrip(t *testing.T) {
	h := newTestHierarchical(t)
	ctx := context.Background()

	first, _, err := h.InitialSuggestions(ctx, "s1")
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := h.ProcessMessage(ctx, "s1", "Explore Alpha Works", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if err := h.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	again, _, err := h.InitialSuggestions(ctx, "s1")
	if err != nil {
		t.Fatalf("re-initialize failed: %v", err)
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("suggestion %d differs: %q vs %q", i, first[i], again[i])
		}
	}

	sc, err := h.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("context read failed: %v", err)
	}
	if sc.Level != session.LevelStart || sc.PlantID != "" {
		t.Fatalf("want fresh context, got %+v", sc)
	}
}
