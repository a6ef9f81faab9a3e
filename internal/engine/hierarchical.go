package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/dataset"
	"github.com/qcbot/backend/internal/session"
	"github.com/qcbot/backend/internal/vector"
	"github.com/qcbot/backend/pkg/logger"
	"github.com/qcbot/backend/pkg/utils"
)

// Hierarchical navigates the plant -> section -> item tree by matching free
// text against embedded entity descriptions. Without a provider or vector
// store it falls back to case-insensitive name matching, so the engine stays
// usable offline.
type Hierarchical struct {
	data     *dataset.Dataset
	sessions *session.Manager
	provider Provider
	vectors  vector.Store
	topK     int
}

func NewHierarchical(data *dataset.Dataset, sessions *session.Manager, provider Provider, vectors vector.Store) *Hierarchical {
	return &Hierarchical{
		data:     data,
		sessions: sessions,
		provider: provider,
		vectors:  vectors,
		topK:     3,
	}
}

// corpus builds one short description per plant, section and item.
func (h *Hierarchical) corpus() []vector.Entry {
	var entries []vector.Entry

	for _, plantID := range h.data.Hierarchy.PlantOrder {
		plant := h.data.Hierarchy.Plants[plantID]
		entries = append(entries, vector.Entry{
			ID:      utils.HashString("plant_" + plantID),
			Text:    fmt.Sprintf("Plant: %s (ID: %s)", plant.Name, plantID),
			Level:   "plant",
			PlantID: plantID,
			Name:    plant.Name,
		})

		for _, sectionID := range plant.SectionOrder {
			section := plant.Sections[sectionID]
			entries = append(entries, vector.Entry{
				ID:        utils.HashString(fmt.Sprintf("section_%s_%s", plantID, sectionID)),
				Text:      fmt.Sprintf("Section: %s in %s", section.Name, plant.Name),
				Level:     "section",
				PlantID:   plantID,
				SectionID: sectionID,
				Name:      section.Name,
			})

			for _, itemCode := range section.ItemOrder {
				item := section.Items[itemCode]
				entries = append(entries, vector.Entry{
					ID:        utils.HashString(fmt.Sprintf("item_%s_%s_%s", plantID, sectionID, itemCode)),
					Text:      fmt.Sprintf("Item: %s (%s) in %s", item.Description, item.Type, section.Name),
					Level:     "item",
					PlantID:   plantID,
					SectionID: sectionID,
					ItemCode:  itemCode,
					Name:      item.Description,
				})
			}
		}
	}

	return entries
}

// Initialize embeds the hierarchy corpus into the vector store. Skipped
// entirely when no provider or store is configured.
func (h *Hierarchical) Initialize(ctx context.Context) error {
	if h.provider == nil || h.vectors == nil {
		logger.Info("Embedding corpus skipped, name matching only")
		return nil
	}

	entries := h.corpus()
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := h.provider.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed hierarchy corpus: %w", err)
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embedding count mismatch: %d != %d", len(vectors), len(entries))
	}
	if len(vectors) == 0 {
		return nil
	}

	if err := h.vectors.Reset(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("failed to reset vector store: %w", err)
	}
	if err := h.vectors.Upsert(ctx, entries, vectors); err != nil {
		return fmt.Errorf("failed to index hierarchy corpus: %w", err)
	}

	logger.Info("Hierarchy corpus embedded", zap.Int("entries", len(entries)))
	return nil
}

func (h *Hierarchical) InitialSuggestions(ctx context.Context, sessionID string) ([]string, string, error) {
	var suggestions []string
	for _, plant := range h.data.AllPlants() {
		suggestions = append(suggestions, fmt.Sprintf("Explore %s", plant.Name))
	}
	suggestions = append(suggestions, "Show me an overview of all facilities")
	suggestions = padSuggestions(suggestions)

	if err := h.sessions.SaveContext(ctx, sessionID, session.NewContext()); err != nil {
		return nil, "", err
	}
	if err := h.sessions.SaveHistory(ctx, sessionID, []session.Turn{}); err != nil {
		return nil, "", err
	}
	if err := h.sessions.SaveTreePath(ctx, sessionID, []string{}); err != nil {
		return nil, "", err
	}

	greeting := "Chat session initialized. Here are some suggestions to get started."
	return suggestions, greeting, nil
}

func (h *Hierarchical) ProcessMessage(ctx context.Context, sessionID, message string, isSuggestion bool) (*Reply, error) {
	sc, err := h.sessions.Context(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := h.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	treePath, err := h.sessions.TreePath(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history = append(history, session.Turn{
		Role:         "user",
		Message:      message,
		IsSuggestion: isSuggestion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	treePath = append(treePath, message)

	newCtx := h.resolve(ctx, message, sc)

	wantChart, wantTable := detectFormat(ctx, h.provider, message, string(newCtx.Level))

	var chart *ChartSpec
	var table *TableSpec
	if wantChart {
		chart = h.contextualChart(newCtx)
	}
	if wantTable {
		table = h.contextualTable(newCtx)
	}

	response := h.narrative(ctx, message, newCtx)
	suggestions := padSuggestions(h.suggestions(newCtx))

	assistant := session.Turn{
		Role:        "assistant",
		Message:     response,
		Suggestions: suggestions,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if chart != nil {
		assistant.Chart, _ = json.Marshal(chart)
	}
	if table != nil {
		assistant.Table, _ = json.Marshal(table)
	}
	history = append(history, assistant)

	if err := h.sessions.SaveContext(ctx, sessionID, newCtx); err != nil {
		return nil, err
	}
	if err := h.sessions.SaveHistory(ctx, sessionID, history); err != nil {
		return nil, err
	}
	if err := h.sessions.SaveTreePath(ctx, sessionID, treePath); err != nil {
		return nil, err
	}

	return &Reply{
		Response:    response,
		Suggestions: suggestions,
		ContextPath: treePath,
		Chart:       chart,
		Table:       table,
		Metadata: map[string]any{
			"current_level": string(newCtx.Level),
			"selected_path": fmt.Sprintf("%s > %s > %s", newCtx.PlantName, newCtx.SectionName, newCtx.ItemDesc),
		},
	}, nil
}

// resolve maps the message onto a hierarchy position. Embedding search is
// preferred; any provider or store failure leaves the context unchanged so a
// transient outage never knocks the user out of their position.
func (h *Hierarchical) resolve(ctx context.Context, message string, sc session.Context) session.Context {
	if h.provider != nil && h.vectors != nil {
		query, err := h.provider.GenerateEmbedding(ctx, message)
		if err != nil {
			logger.Warn("Intent embedding failed", zap.Error(err))
			return h.resolveByName(message, sc)
		}
		matches, err := h.vectors.Search(ctx, query, h.topK)
		if err != nil {
			logger.Warn("Vector search failed", zap.Error(err))
			return h.resolveByName(message, sc)
		}
		if len(matches) == 0 {
			return sc
		}
		return h.apply(matches[0].Entry, sc)
	}
	return h.resolveByName(message, sc)
}

// resolveByName scans the corpus for the longest entity name contained in
// the message, case-insensitive.
func (h *Hierarchical) resolveByName(message string, sc session.Context) session.Context {
	msg := strings.ToLower(message)

	var best *vector.Entry
	entries := h.corpus()
	for i := range entries {
		name := strings.ToLower(entries[i].Name)
		if name == "" || !strings.Contains(msg, name) {
			continue
		}
		if best == nil || len(entries[i].Name) > len(best.Name) {
			best = &entries[i]
		}
	}
	if best == nil {
		return sc
	}
	return h.apply(*best, sc)
}

// apply sets the navigation position for a matched entity, clearing every
// selection below the matched level.
func (h *Hierarchical) apply(match vector.Entry, sc session.Context) session.Context {
	switch match.Level {
	case "plant":
		plant, ok := h.data.Hierarchy.Plants[match.PlantID]
		if !ok {
			return sc
		}
		sc.Level = session.LevelPlant
		sc.PlantID = match.PlantID
		sc.PlantName = plant.Name
		sc.SectionID = ""
		sc.SectionName = ""
		sc.ItemCode = ""
		sc.ItemDesc = ""

	case "section":
		plant, ok := h.data.Hierarchy.Plants[match.PlantID]
		if !ok {
			return sc
		}
		section, ok := plant.Sections[match.SectionID]
		if !ok {
			return sc
		}
		sc.Level = session.LevelSection
		sc.PlantID = match.PlantID
		sc.PlantName = plant.Name
		sc.SectionID = match.SectionID
		sc.SectionName = section.Name
		sc.ItemCode = ""
		sc.ItemDesc = ""

	case "item":
		plant, section, item := h.data.LookupItem(match.PlantID, match.SectionID, match.ItemCode)
		if item == nil {
			return sc
		}
		sc.Level = session.LevelItem
		sc.PlantID = match.PlantID
		sc.PlantName = plant.Name
		sc.SectionID = match.SectionID
		sc.SectionName = section.Name
		sc.ItemCode = match.ItemCode
		sc.ItemDesc = item.Description
	}
	return sc
}

func (h *Hierarchical) contextualChart(sc session.Context) *ChartSpec {
	switch sc.Level {
	case session.LevelItem:
		if _, _, item := h.data.LookupItem(sc.PlantID, sc.SectionID, sc.ItemCode); item != nil {
			return readingTrendChart(item)
		}
	case session.LevelPlant:
		if plant, ok := h.data.Hierarchy.Plants[sc.PlantID]; ok {
			return sectionOverviewChart(plant)
		}
	}
	return nil
}

func (h *Hierarchical) contextualTable(sc session.Context) *TableSpec {
	switch sc.Level {
	case session.LevelItem:
		if _, _, item := h.data.LookupItem(sc.PlantID, sc.SectionID, sc.ItemCode); item != nil {
			return parameterTable(item)
		}
	case session.LevelSection:
		if plant, ok := h.data.Hierarchy.Plants[sc.PlantID]; ok {
			if section, ok := plant.Sections[sc.SectionID]; ok {
				return sectionItemsTable(section)
			}
		}
	}
	return nil
}

// narrative asks the provider for a conversational response seeded with the
// resolved entity's facts, falling back to a template on any error.
func (h *Hierarchical) narrative(ctx context.Context, message string, sc session.Context) string {
	prompt, fallback := h.narrativePrompt(message, sc)
	if h.provider == nil {
		return fallback
	}
	text, err := h.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("Narrative generation failed", zap.Error(err))
		}
		return fallback
	}
	return strings.TrimSpace(text)
}

func (h *Hierarchical) narrativePrompt(message string, sc session.Context) (prompt, fallback string) {
	switch sc.Level {
	case session.LevelPlant:
		plant, ok := h.data.Hierarchy.Plants[sc.PlantID]
		if !ok {
			break
		}
		var sectionNames []string
		totalItems := 0
		for _, id := range plant.SectionOrder {
			sectionNames = append(sectionNames, plant.Sections[id].Name)
			totalItems += len(plant.Sections[id].Items)
		}
		shown := sectionNames
		if len(shown) > 8 {
			shown = shown[:8]
		}
		prompt = fmt.Sprintf(`You are a manufacturing data assistant. User selected: %s

User message: %s

Plant Details:
- Name: %s
- Sections/Buildings: %s
- Total sections: %d
- Total items produced: %d

Generate a conversational response (max 150 words) that acknowledges their selection, describes what this facility manufactures, lists key sections naturally and encourages exploring specific sections. Speak naturally as a guide, no database jargon.`,
			plant.Name, message, plant.Name, strings.Join(shown, ", "), len(plant.Sections), totalItems)

		top := sectionNames
		if len(top) > 3 {
			top = top[:3]
		}
		fallback = fmt.Sprintf("You've selected %s, which has %d sections/buildings including %s. We track %d different items here. Which section would you like to explore?",
			plant.Name, len(plant.Sections), strings.Join(top, ", "), totalItems)
		return prompt, fallback

	case session.LevelSection:
		plant, ok := h.data.Hierarchy.Plants[sc.PlantID]
		if !ok {
			break
		}
		section, ok := plant.Sections[sc.SectionID]
		if !ok {
			break
		}
		var itemDescs []string
		totalReadings := 0
		for _, code := range section.ItemOrder {
			itemDescs = append(itemDescs, section.Items[code].Description)
			totalReadings += len(section.Items[code].Readings)
		}
		shown := itemDescs
		if len(shown) > 5 {
			shown = shown[:5]
		}
		prompt = fmt.Sprintf(`You are a manufacturing data assistant. User navigated: %s -> %s

User message: %s

Section Details:
- Plant: %s
- Section/Building: %s
- Items/Products: %s
- Total items: %d
- Inspection records: %d

Generate a natural response (max 150 words) that acknowledges they're viewing this section, describes what it manufactures, lists items clearly and suggests viewing item details, parameters or inspection data. Friendly guide tone, no technical jargon.`,
			plant.Name, section.Name, message, plant.Name, section.Name, strings.Join(shown, ", "), len(section.Items), totalReadings)

		top := itemDescs
		if len(top) > 2 {
			top = top[:2]
		}
		fallback = fmt.Sprintf("You're now viewing %s at %s. This section handles %d items including %s, with %d inspection records. Would you like to explore a specific item?",
			section.Name, plant.Name, len(section.Items), strings.Join(top, ", "), totalReadings)
		return prompt, fallback

	case session.LevelItem:
		_, _, item := h.data.LookupItem(sc.PlantID, sc.SectionID, sc.ItemCode)
		if item == nil {
			break
		}
		prompt = fmt.Sprintf(`You are a manufacturing data assistant. User is exploring a specific item/product.

User message: %s

Item: %s (%s)
Operations: %d different operations
QC Machines: %d machines used
Quality Parameters: %d parameters monitored
Inspection Records: %d readings available

Generate an informative response (max 150 words) that describes what this item is, explains the inspection process naturally, mentions key quality checks and offers to show specific data like charts or inspection details. Conversational, no database jargon.`,
			message, item.Description, item.Type, len(item.Operations), len(item.Machines), len(item.Parameters), len(item.Readings))

		fallback = fmt.Sprintf("%s undergoes %d operations with %d quality parameters monitored. We have %d inspection readings. Would you like to see quality trends or inspection details?",
			item.Description, len(item.Operations), len(item.Parameters), len(item.Readings))
		return prompt, fallback
	}

	summary := h.data.Summary
	prompt = fmt.Sprintf(`You are a friendly manufacturing data assistant. A user just started a conversation.

User message: %s

System overview:
- Total plants/facilities: %d
- Total sections/labs: %d
- Total items tracked: %d
- Total inspection readings: %d

Generate a warm, welcoming response (max 100 words) that greets the user, briefly explains what data is available and encourages them to explore a specific facility. Conversational tone, no technical database terms.`,
		message, summary.TotalPlants, summary.TotalSections, summary.TotalItems, summary.TotalReadings)

	fallback = "Welcome! I can help you explore our manufacturing facilities and quality control data. We track several plants with numerous sections, items, and inspection processes. Which facility would you like to explore first?"
	return prompt, fallback
}

func (h *Hierarchical) suggestions(sc session.Context) []string {
	switch sc.Level {
	case session.LevelPlant:
		plant, ok := h.data.Hierarchy.Plants[sc.PlantID]
		if !ok {
			break
		}
		var out []string
		for i, id := range plant.SectionOrder {
			if i == 3 {
				break
			}
			out = append(out, fmt.Sprintf("Show me %s", plant.Sections[id].Name))
		}
		out = append(out,
			fmt.Sprintf("What items are produced at %s?", plant.Name),
			"Show me production overview",
		)
		return out

	case session.LevelSection:
		plant, ok := h.data.Hierarchy.Plants[sc.PlantID]
		if !ok {
			break
		}
		section, ok := plant.Sections[sc.SectionID]
		if !ok {
			break
		}
		var out []string
		for i, code := range section.ItemOrder {
			if i == 3 {
				break
			}
			out = append(out, fmt.Sprintf("Tell me about %s", truncate(section.Items[code].Description, 40)))
		}
		out = append(out,
			"Show quality control data",
			"What inspection parameters are tracked?",
		)
		return out

	case session.LevelItem, session.LevelDetails:
		return []string{
			"Show me quality trends over time",
			"What machines are used for inspection?",
			"Display all inspection parameters",
			"Show me recent inspection results",
			"Compare actual vs target values",
		}
	}

	var out []string
	for i, plant := range h.data.AllPlants() {
		if i == 4 {
			break
		}
		out = append(out, fmt.Sprintf("Explore %s", plant.Name))
	}
	out = append(out, "Show me a comparison of all facilities")
	return out
}

func (h *Hierarchical) History(ctx context.Context, sessionID string) ([]session.Turn, error) {
	return h.sessions.History(ctx, sessionID)
}

func (h *Hierarchical) TreePath(ctx context.Context, sessionID string) ([]string, error) {
	return h.sessions.TreePath(ctx, sessionID)
}

func (h *Hierarchical) Reset(ctx context.Context, sessionID string) error {
	return h.sessions.Reset(ctx, sessionID)
}
