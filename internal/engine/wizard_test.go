package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/qcbot/backend/internal/index"
	"github.com/qcbot/backend/internal/session"
)

func newTestWizard(t *testing.T) *Wizard {
	t.Helper()
	idx := index.Build(engineRecords())
	sessions := session.NewManager(session.NewMemoryStore(), 0)
	return NewWizard(idx, sessions)
}

func TestDetectQuestion(t *testing.T) {
	tests := []struct {
		message string
		want    int
	}{
		{"1", 1},
		{"show po status", 1},
		{"production order details", 1},
		{"inward material inspection", 2},
		{"in-process inspection", 3},
		{"final inspection details", 4},
		{"parameter analysis", 5},
		{"show distribution", 6},
		{"hello there", 0},
		// "po" must match whole words only.
		{"upon reflection", 0},
		{"weapon inspection report", 0},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := detectQuestion(tt.message); got != tt.want {
				t.Fatalf("want=%d got=%d", tt.want, got)
			}
		})
	}
}

func TestWizardInitialSuggestions(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	suggestions, greeting, err := w.InitialSuggestions(ctx, "s1")
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if len(suggestions) != 5 {
		t.Fatalf("want 5 suggestions, got %d", len(suggestions))
	}
	if !strings.Contains(greeting, "initialized") {
		t.Fatalf("unexpected greeting %q", greeting)
	}
}

func TestWizardQuestionOneStartsFactorySelection(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	reply, err := w.ProcessMessage(ctx, "s1", "1", true)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !strings.Contains(reply.Response, "Select Factory") {
		t.Fatalf("want factory selection prompt, got %q", reply.Response)
	}
	if len(reply.Suggestions) != 5 {
		t.Fatalf("want 5 suggestions, got %d", len(reply.Suggestions))
	}

	sc, err := w.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("context read failed: %v", err)
	}
	if sc.Q1Level != "factory_selected" {
		t.Fatalf("want q1 level %q, got %q", "factory_selected", sc.Q1Level)
	}
}

func TestWizardFullPOWalk(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	if _, err := w.ProcessMessage(ctx, "s1", "1", true); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}

	reply, err := w.ProcessMessage(ctx, "s1", "Select Alpha Works", true)
	if err != nil {
		t.Fatalf("step 2 failed: %v", err)
	}
	if !strings.Contains(reply.Response, "45001") {
		t.Fatalf("want PO listing, got %q", reply.Response)
	}

	sc, _ := w.sessions.Context(ctx, "s1")
	if sc.Q1Level != "po_selected" || sc.SelectedPlant != "P1" {
		t.Fatalf("unexpected context %+v", sc)
	}

	reply, err = w.ProcessMessage(ctx, "s1", "Show details for PO 45001", true)
	if err != nil {
		t.Fatalf("step 3 failed: %v", err)
	}
	if reply.Table == nil {
		t.Fatalf("expected a comprehensive table")
	}
	if len(reply.Table.Columns) < 40 {
		t.Fatalf("want at least 40 columns, got %d", len(reply.Table.Columns))
	}
	if len(reply.Table.Rows) == 0 {
		t.Fatalf("want at least one row")
	}
	if reply.Chart == nil || reply.Chart.Type != "line" {
		t.Fatalf("want a line chart, got %+v", reply.Chart)
	}
	if !strings.Contains(reply.Response, "COMPLETE PO STATUS REPORT") {
		t.Fatalf("unexpected report %q", reply.Response)
	}
}

func TestWizardAmbiguousInputRestartsStep(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := w.ProcessMessage(ctx, "s1", "1", true); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}

	// No recognizable factory: the flow re-prompts from its first step.
	reply, err := w.ProcessMessage(ctx, "s1", "something unrecognizable", false)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !strings.Contains(reply.Response, "Select Factory") {
		t.Fatalf("want re-prompt, got %q", reply.Response)
	}
	sc, _ := w.sessions.Context(ctx, "s1")
	if sc.Q1Level != "factory_selected" {
		t.Fatalf("want q1 level reset to %q, got %q", "factory_selected", sc.Q1Level)
	}
}

func TestWizardNavigationFallback(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	reply, err := w.ProcessMessage(ctx, "s1", "hello there", false)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Chart != nil || reply.Table != nil {
		t.Fatalf("navigation reply must not carry chart or table")
	}
	if reply.Response == "" {
		t.Fatalf("want a non-empty narrative")
	}
	if !strings.Contains(reply.Response, "Available Questions") {
		t.Fatalf("want the question menu, got %q", reply.Response)
	}
}

func TestWizardDistribution(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	reply, err := w.ProcessMessage(ctx, "s1", "6", true)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if reply.Chart == nil || reply.Chart.Type != "bar" {
		t.Fatalf("want a histogram, got %+v", reply.Chart)
	}
	if reply.Table == nil || reply.Table.Title != "Distribution Statistics" {
		t.Fatalf("want the stats table, got %+v", reply.Table)
	}

	total := 0.0
	for _, c := range reply.Chart.Data.Datasets[0].Data {
		total += c
	}
	if total != 3 {
		t.Fatalf("bin counts must sum to scalar reading count: want 3, got %v", total)
	}
}

func TestWizardResetRoundTrip(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	first, _, err := w.InitialSuggestions(ctx, "s1")
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := w.ProcessMessage(ctx, "s1", "1", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if err := w.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	history, err := w.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history read failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("want empty history after reset, got %d turns", len(history))
	}

	again, _, err := w.InitialSuggestions(ctx, "s1")
	if err != nil {
		t.Fatalf("re-initialize failed: %v", err)
	}
	if len(again) != len(first) {
		t.Fatalf("suggestion counts differ: %d vs %d", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("suggestion %d differs: %q vs %q", i, first[i], again[i])
		}
	}

	sc, err := w.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("context read failed: %v", err)
	}
	if sc.Q1Level != "" || sc.Level != session.LevelStart {
		t.Fatalf("want fresh context, got %+v", sc)
	}
}

func TestWizardHistoryRecordsTurns(t *testing.T) {
	w := newTestWizard(t)
	ctx := context.Background()

	if _, _, err := w.InitialSuggestions(ctx, "s1"); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := w.ProcessMessage(ctx, "s1", "1", true); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	history, err := w.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history read failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("want user and assistant turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[0].Message != "1" || !history[0].IsSuggestion {
		t.Fatalf("unexpected user turn %+v", history[0])
	}
	if history[1].Role != "assistant" || len(history[1].Suggestions) != 5 {
		t.Fatalf("unexpected assistant turn %+v", history[1])
	}

	path, err := w.TreePath(ctx, "s1")
	if err != nil {
		t.Fatalf("tree path read failed: %v", err)
	}
	if len(path) != 1 || path[0] != "1" {
		t.Fatalf("unexpected tree path %v", path)
	}
}
