package engine

import (
	"context"
	"strings"

	"github.com/qcbot/backend/internal/session"
)

// Engine is the strategy contract shared by the hierarchical and wizard
// navigation engines. Both read and write session state through the same
// manager, so a deployment picks one mode per process.
type Engine interface {
	// Initialize prepares shared resources (e.g. the embedding corpus).
	// Called once at startup, after the dataset is loaded.
	Initialize(ctx context.Context) error

	// InitialSuggestions creates or resets the session and returns the
	// opening suggestion list plus a greeting line.
	InitialSuggestions(ctx context.Context, sessionID string) ([]string, string, error)

	// ProcessMessage advances the session's navigation state and builds the
	// full reply payload for one user message.
	ProcessMessage(ctx context.Context, sessionID, message string, isSuggestion bool) (*Reply, error)

	History(ctx context.Context, sessionID string) ([]session.Turn, error)
	TreePath(ctx context.Context, sessionID string) ([]string, error)
	Reset(ctx context.Context, sessionID string) error
}

// Provider is the external text and embedding service. All methods are
// fallible remote calls; the engines degrade to templates and keyword
// matching when any of them errors, so a nil Provider is a valid
// configuration.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	ClassifyOutput(ctx context.Context, message, level string) (chart bool, table bool, err error)
}

// Reply is the engine's answer to one message.
type Reply struct {
	Response    string         `json:"response"`
	Suggestions []string       `json:"suggestions"`
	ContextPath []string       `json:"context_path"`
	Chart       *ChartSpec     `json:"chart_data,omitempty"`
	Table       *TableSpec     `json:"table_data,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ChartSpec mirrors the Chart.js configuration shape the frontend renders
// directly.
type ChartSpec struct {
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

type ChartOptions struct {
	Responsive bool         `json:"responsive"`
	Plugins    ChartPlugins `json:"plugins"`
}

type ChartPlugins struct {
	Legend *ChartLegend `json:"legend,omitempty"`
	Title  *ChartTitle  `json:"title,omitempty"`
}

type ChartLegend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// TableSpec is a column-aligned string projection of matching records.
type TableSpec struct {
	Title       string     `json:"title"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Description string     `json:"description,omitempty"`
}

const suggestionCount = 5

var genericSuggestions = []string{
	"Show me an overview of all facilities",
	"What data is available?",
	"Show quality control data",
	"What inspection parameters are tracked?",
	"Go back to main menu",
}

// padSuggestions pads with generic prompts or truncates so the list is
// always exactly five entries.
func padSuggestions(suggestions []string) []string {
	out := make([]string, 0, suggestionCount)
	seen := make(map[string]struct{}, suggestionCount)
	for _, s := range suggestions {
		if len(out) == suggestionCount {
			break
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range genericSuggestions {
		if len(out) == suggestionCount {
			break
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var chartKeywords = []string{"chart", "trend", "graph", "plot", "distribution", "histogram", "compare", "over time"}

var tableKeywords = []string{"table", "list", "parameters", "records", "details", "show all", "specifications"}

// detectFormat decides whether the reply should carry a chart or a table.
// Explicit keywords win; otherwise the provider classifies the intent. Any
// provider failure means text only.
func detectFormat(ctx context.Context, provider Provider, message, level string) (bool, bool) {
	msg := strings.ToLower(message)
	var chart, table bool
	for _, kw := range chartKeywords {
		if strings.Contains(msg, kw) {
			chart = true
			break
		}
	}
	for _, kw := range tableKeywords {
		if strings.Contains(msg, kw) {
			table = true
			break
		}
	}
	if chart || table {
		return chart, table
	}
	if provider == nil {
		return false, false
	}
	chart, table, err := provider.ClassifyOutput(ctx, message, level)
	if err != nil {
		return false, false
	}
	return chart, table
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
