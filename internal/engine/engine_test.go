package engine

import (
	"context"
	"testing"
)

func TestPadSuggestionsAlwaysFive(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"nil", nil},
		{"short", []string{"one", "two"}},
		{"exact", []string{"a", "b", "c", "d", "e"}},
		{"long", []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"duplicates", []string{"a", "a", "b", "b"}},
		{"overlaps generics", []string{"Show quality control data"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := padSuggestions(tt.input)
			if len(out) != 5 {
				t.Fatalf("want 5 suggestions, got %d (%v)", len(out), out)
			}
			seen := make(map[string]struct{})
			for _, s := range out {
				if _, dup := seen[s]; dup {
					t.Fatalf("duplicate suggestion %q in %v", s, out)
				}
				seen[s] = struct{}{}
			}
		})
	}
}

func TestPadSuggestionsKeepsInputOrder(t *testing.T) {
	out := padSuggestions([]string{"first", "second"})
	if out[0] != "first" || out[1] != "second" {
		t.Fatalf("input order not preserved: %v", out)
	}
}

func TestDetectFormatKeywords(t *testing.T) {
	tests := []struct {
		message   string
		wantChart bool
		wantTable bool
	}{
		{"show me a chart of readings", true, false},
		{"quality trend over time", true, false},
		{"show distribution please", true, false},
		{"list all records", false, true},
		{"what parameters are tracked", false, true},
		{"chart and table please", true, true},
		{"hello there", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			chart, table := detectFormat(context.Background(), nil, tt.message, "START")
			if chart != tt.wantChart || table != tt.wantTable {
				t.Fatalf("want chart=%v table=%v, got chart=%v table=%v", tt.wantChart, tt.wantTable, chart, table)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("want=%q got=%q", "short", got)
	}
	got := truncate("a very long description indeed", 10)
	if len(got) != 10 {
		t.Fatalf("want length 10, got %d (%q)", len(got), got)
	}
	if got[7:] != "..." {
		t.Fatalf("want ellipsis suffix, got %q", got)
	}
}
