package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	prose "github.com/jdkato/prose/v2"

	"github.com/qcbot/backend/internal/index"
	"github.com/qcbot/backend/internal/session"
)

// Wizard is the comprehensive Q&A engine: six fixed question flows, each a
// small selection wizard (factory -> building -> item -> PO) with its own
// sub-level stored per question type, so switching questions mid-conversation
// never corrupts another flow's progress.
type Wizard struct {
	idx      *index.Indexes
	sessions *session.Manager
}

func NewWizard(idx *index.Indexes, sessions *session.Manager) *Wizard {
	return &Wizard{idx: idx, sessions: sessions}
}

func (w *Wizard) Initialize(context.Context) error { return nil }

var wizardMenu = []string{
	"1. Show PO status",
	"2. Inward material quality",
	"3. In-process inspection",
	"4. Final inspection details",
	"5. Parameter analysis with charts",
	"6. Parameter distribution",
}

func (w *Wizard) InitialSuggestions(ctx context.Context, sessionID string) ([]string, string, error) {
	if err := w.sessions.SaveContext(ctx, sessionID, session.NewContext()); err != nil {
		return nil, "", err
	}
	if err := w.sessions.SaveHistory(ctx, sessionID, []session.Turn{}); err != nil {
		return nil, "", err
	}
	if err := w.sessions.SaveTreePath(ctx, sessionID, []string{}); err != nil {
		return nil, "", err
	}

	greeting := "Chat session initialized. Here are some suggestions to get started."
	return padSuggestions(wizardMenu), greeting, nil
}

// wizardResult is one routed answer before the session bookkeeping.
type wizardResult struct {
	response    string
	suggestions []string
	chart       *ChartSpec
	table       *TableSpec
	newCtx      session.Context
}

func (w *Wizard) ProcessMessage(ctx context.Context, sessionID, message string, isSuggestion bool) (*Reply, error) {
	sc, err := w.sessions.Context(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := w.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	treePath, err := w.sessions.TreePath(ctx, sessionID)
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

	res := w.route(message, sc)
	suggestions := padSuggestions(res.suggestions)

	assistant := session.Turn{
		Role:        "assistant",
		Message:     res.response,
		Suggestions: suggestions,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if res.chart != nil {
		assistant.Chart, _ = json.Marshal(res.chart)
	}
	if res.table != nil {
		assistant.Table, _ = json.Marshal(res.table)
	}
	history = append(history, assistant)

	if err := w.sessions.SaveContext(ctx, sessionID, res.newCtx); err != nil {
		return nil, err
	}
	if err := w.sessions.SaveHistory(ctx, sessionID, history); err != nil {
		return nil, err
	}
	if err := w.sessions.SaveTreePath(ctx, sessionID, treePath); err != nil {
		return nil, err
	}

	return &Reply{
		Response:    res.response,
		Suggestions: suggestions,
		ContextPath: []string{message},
		Chart:       res.chart,
		Table:       res.table,
		Metadata: map[string]any{
			"q1_level": res.newCtx.Q1Level,
			"q2_level": res.newCtx.Q2Level,
			"q3_level": res.newCtx.Q3Level,
			"q4_level": res.newCtx.Q4Level,
			"q5_level": res.newCtx.Q5Level,
			"q6_level": res.newCtx.Q6Level,
		},
	}, nil
}

// Question type keyword lists. First match wins; anything else is general
// navigation.
var questionKeywords = [][]string{
	{"po", "production order", "order status", "1"},
	{"inward", "material", "quality", "2"},
	{"in-process", "in process", "process", "3"},
	{"final", "fai", "final inspection", "4"},
	{"parameter", "analysis", "chart", "trend", "5"},
	{"distribution", "histogram", "6"},
}

// tokenize splits the lowered message into a word set. Single-word keywords
// match whole tokens only, so "upon" never triggers the "po" flow.
func tokenize(msg string) map[string]struct{} {
	set := make(map[string]struct{})
	doc, err := prose.NewDocument(msg,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		for _, f := range strings.Fields(msg) {
			set[strings.Trim(f, ".,!?:;")] = struct{}{}
		}
		return set
	}
	for _, tok := range doc.Tokens() {
		set[strings.Trim(strings.ToLower(tok.Text), ".,!?:;")] = struct{}{}
	}
	return set
}

// detectQuestion returns 1..6, or 0 for general navigation. Multi-word and
// hyphenated keywords match by substring, single words by token.
func detectQuestion(message string) int {
	msg := strings.ToLower(message)
	tokens := tokenize(msg)

	for i, keywords := range questionKeywords {
		for _, kw := range keywords {
			if strings.ContainsAny(kw, " -") {
				if strings.Contains(msg, kw) {
					return i + 1
				}
				continue
			}
			if _, ok := tokens[kw]; ok {
				return i + 1
			}
		}
	}
	return 0
}

// route dispatches the message to its question flow. Keyword hits win; a
// message without keywords continues whichever flow is mid-wizard, so
// selection replies like "Select Alpha Works" advance the right question. A
// flow that cannot extract an identifier at its current step restarts from
// its first prompt, which makes a repeated ambiguous input idempotent.
func (w *Wizard) route(message string, sc session.Context) wizardResult {
	if q := detectQuestion(message); q != 0 {
		return w.dispatch(q, message, sc)
	}
	switch {
	case sc.Q1Level != "":
		return w.handlePOStatus(message, sc)
	case sc.Q2Level != "":
		return w.handleInwardQuality(message, sc)
	case sc.Q3Level != "":
		return w.handleInProcess(message, sc)
	case sc.Q4Level != "":
		return w.handleFinalInspection(message, sc)
	case sc.Q5Level != "":
		return w.handleParameterAnalysis(message, sc)
	}
	return w.handleNavigation(sc)
}

func (w *Wizard) dispatch(q int, message string, sc session.Context) wizardResult {
	switch q {
	case 1:
		return w.handlePOStatus(message, sc)
	case 2:
		return w.handleInwardQuality(message, sc)
	case 3:
		return w.handleInProcess(message, sc)
	case 4:
		return w.handleFinalInspection(message, sc)
	case 5:
		return w.handleParameterAnalysis(message, sc)
	case 6:
		return w.handleDistribution(message, sc)
	default:
		return w.handleNavigation(sc)
	}
}

var (
	poPattern       = regexp.MustCompile(`[A-Z]?-?\d{4,}`)
	itemCodePattern = regexp.MustCompile(`\d{10,}`)
	buildingPattern = regexp.MustCompile(`[A-Z0-9/-]+`)
)

// findPlant matches a known plant by name containment (case-insensitive) or
// by exact id appearing in the message.
func (w *Wizard) findPlant(message string) string {
	msg := strings.ToLower(message)
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		if plant.Name != "" && strings.Contains(msg, strings.ToLower(plant.Name)) {
			return plantID
		}
		if strings.Contains(message, plantID) {
			return plantID
		}
	}
	return ""
}

// findPO extracts the first PO-shaped token that exists in the index.
func (w *Wizard) findPO(message string) string {
	for _, candidate := range poPattern.FindAllString(message, -1) {
		if _, ok := w.idx.POs[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// findItemCode extracts the first 10+ digit code that exists in the index.
func (w *Wizard) findItemCode(message string) string {
	for _, candidate := range itemCodePattern.FindAllString(message, -1) {
		if _, ok := w.idx.Items[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// findBuilding extracts the first permissive alphanumeric token that exists
// in the building index.
func (w *Wizard) findBuilding(message string) string {
	for _, candidate := range buildingPattern.FindAllString(message, -1) {
		if _, ok := w.idx.Buildings[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func (w *Wizard) factoryPrompt(title string) (string, []string) {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\nStep 1: Select Factory\n\n")

	var suggestions []string
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		fmt.Fprintf(&sb, "%s (ID: %s)\n", plant.Name, plant.PlantID)
		fmt.Fprintf(&sb, "   Location: %s, %s\n", plant.Location1, plant.Location2)
		fmt.Fprintf(&sb, "   POs: %d, Buildings: %d, Items: %d\n\n",
			plant.POs.Len(), plant.Buildings.Len(), plant.Items.Len())
		suggestions = append(suggestions, fmt.Sprintf("Select %s", plant.Name))
	}
	suggestions = append(suggestions, "Go back")
	return sb.String(), suggestions
}

func (w *Wizard) handlePOStatus(message string, sc session.Context) wizardResult {
	switch sc.Q1Level {
	case "factory_selected":
		plantID := w.findPlant(message)
		if plantID == "" {
			break
		}
		plant := w.idx.Plants[plantID]

		var sb strings.Builder
		fmt.Fprintf(&sb, "Factory: %s\n\n", plant.Name)
		fmt.Fprintf(&sb, "Plant ID: %s\nLocation 1: %s\nLocation 2: %s\n\n", plant.PlantID, plant.Location1, plant.Location2)
		sb.WriteString("Available PO Numbers:\n")

		var pos []string
		for _, po := range w.idx.POOrder {
			entry := w.idx.POs[po]
			if !entry.Plants.Has(plantID) {
				continue
			}
			pos = append(pos, po)
			fmt.Fprintf(&sb, "\nPO: %s\n", po)
			fmt.Fprintf(&sb, "   Total Inspections: %d\n", entry.TotalInspections)
			fmt.Fprintf(&sb, "   Buildings: %d, Items: %d, Operators: %d\n",
				entry.Buildings.Len(), entry.Items.Len(), entry.Operators.Len())
		}

		var suggestions []string
		for i, po := range pos {
			if i == 3 {
				break
			}
			suggestions = append(suggestions, fmt.Sprintf("Show details for PO %s", po))
		}
		suggestions = append(suggestions, "Select another factory")

		sc.Q1Level = "po_selected"
		sc.SelectedPlant = plantID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "po_selected":
		po := w.findPO(message)
		if po == "" {
			break
		}
		return w.completePODetails(po, sc)
	}

	response, suggestions := w.factoryPrompt("QUESTION 1: Production Order Status")
	sc.Q1Level = "factory_selected"
	return wizardResult{response: response, suggestions: suggestions, newCtx: sc}
}

func (w *Wizard) completePODetails(po string, sc session.Context) wizardResult {
	records := w.idx.RecordsByPO(po)
	entry := w.idx.POs[po]

	var sb strings.Builder
	sb.WriteString("COMPLETE PO STATUS REPORT\n\n")
	fmt.Fprintf(&sb, "PO Number: %s\nTotal Inspection Records: %d\n\n", po, len(records))

	sb.WriteString("Factories Involved:\n")
	for _, plantID := range entry.Plants.Sorted() {
		if plant, ok := w.idx.Plants[plantID]; ok {
			fmt.Fprintf(&sb, "- %s (ID: %s), Location: %s, %s\n", plant.Name, plantID, plant.Location1, plant.Location2)
		}
	}

	sb.WriteString("\nBuildings/Sections:\n")
	for _, buildingID := range entry.Buildings.Sorted() {
		if building, ok := w.idx.Buildings[buildingID]; ok {
			fmt.Fprintf(&sb, "- %s (ID: %s, Sub-section: %s)\n", building.Name, buildingID, building.SubSection)
		}
	}

	sb.WriteString("\nItems:\n")
	for _, itemCode := range entry.Items.Sorted() {
		if item, ok := w.idx.Items[itemCode]; ok {
			fmt.Fprintf(&sb, "- %s (Code: %s, Type: %s, Unit: %s)\n", item.Description, itemCode, item.ItemType, item.Unit)
		}
	}

	sb.WriteString("\nOperators:\n")
	for _, email := range entry.Operators.Sorted() {
		if operator, ok := w.idx.Operators[email]; ok {
			fmt.Fprintf(&sb, "- %s %s (%s), Email: %s, Phone: %s\n",
				operator.FirstName, operator.LastName, operator.RoleName, email, operator.Phone)
		}
	}

	return wizardResult{
		response: sb.String(),
		suggestions: []string{
			fmt.Sprintf("Show quality trends for %s", po),
			fmt.Sprintf("Show parameter distribution for %s", po),
			"Search another PO",
			"Go back to main menu",
		},
		table:  comprehensiveTable(records, "PO Inspection Details"),
		chart:  poTimelineChart(records),
		newCtx: sc,
	}
}

func (w *Wizard) handleInwardQuality(message string, sc session.Context) wizardResult {
	switch sc.Q2Level {
	case "factory_selected":
		plantID := w.findPlant(message)
		if plantID == "" {
			break
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Factory: %s\n\n", w.idx.Plants[plantID].Name)
		sb.WriteString("Step 2: Select Item Code or MIS/I/O Number\n\n")

		var suggestions []string
		for i, code := range w.idx.ItemOrder {
			if i == 10 {
				break
			}
			item := w.idx.Items[code]
			fmt.Fprintf(&sb, "%s\n   Code: %s\n   Type: %s, Unit: %s\n\n",
				item.Description, item.ItemCode, item.ItemType, item.Unit)
			if i < 3 {
				suggestions = append(suggestions, fmt.Sprintf("Item %s", item.ItemCode))
			}
		}

		sc.Q2Level = "item_selected"
		sc.SelectedPlant = plantID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "item_selected":
		itemCode := w.findItemCode(message)
		if itemCode == "" {
			break
		}
		records := w.idx.RecordsByItem(itemCode)
		item := w.idx.Items[itemCode]

		var sb strings.Builder
		sb.WriteString("INWARD MATERIAL QUALITY INSPECTION\n\n")
		fmt.Fprintf(&sb, "Item Code: %s\nDescription: %s\nType: %s\nUnit: %s\nTotal Inspections: %d\n",
			item.ItemCode, item.Description, item.ItemType, item.Unit, len(records))

		return wizardResult{
			response:    sb.String(),
			suggestions: []string{"Select another item", "Go back"},
			table:       comprehensiveTable(records, fmt.Sprintf("Inward Quality - %s", itemCode)),
			newCtx:      sc,
		}
	}

	var sb strings.Builder
	sb.WriteString("QUESTION 2: Inward Material Quality Inspection\n\nStep 1: Select Factory\n\n")
	var suggestions []string
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		fmt.Fprintf(&sb, "%s (ID: %s)\n   Items tracked: %d\n\n", plant.Name, plant.PlantID, plant.Items.Len())
		suggestions = append(suggestions, fmt.Sprintf("Select %s", plant.Name))
	}
	sc.Q2Level = "factory_selected"
	return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}
}

func (w *Wizard) handleInProcess(message string, sc session.Context) wizardResult {
	switch sc.Q3Level {
	case "building_selection":
		plantID := w.findPlant(message)
		if plantID == "" {
			break
		}

		var sb strings.Builder
		sb.WriteString("Step 2: Select Section/Building\n\n")
		var suggestions []string
		for _, buildingID := range w.idx.Plants[plantID].Buildings.Sorted() {
			building, ok := w.idx.Buildings[buildingID]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "%s (ID: %s, Sub: %s)\n", building.Name, building.BuildingID, building.SubSection)
			suggestions = append(suggestions, fmt.Sprintf("Building %s", building.BuildingID))
		}

		sc.Q3Level = "item_selection"
		sc.SelectedPlant = plantID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "item_selection":
		buildingID := w.findBuilding(message)
		if buildingID == "" {
			break
		}

		var sb strings.Builder
		sb.WriteString("Step 3: Select Item\n\n")
		var suggestions []string
		for _, code := range w.idx.Buildings[buildingID].Items.Sorted() {
			item, ok := w.idx.Items[code]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "%s (Code: %s)\n", item.Description, item.ItemCode)
			suggestions = append(suggestions, fmt.Sprintf("Item %s", item.ItemCode))
		}

		sc.Q3Level = "po_selection"
		sc.SelectedBuilding = buildingID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "po_selection":
		itemCode := w.findItemCode(message)
		if itemCode == "" {
			break
		}

		var sb strings.Builder
		sb.WriteString("Step 4: Select PO Number/Lot No\n\n")
		var suggestions []string
		for _, po := range w.idx.Items[itemCode].POs.Sorted() {
			fmt.Fprintf(&sb, "PO: %s\n", po)
			suggestions = append(suggestions, fmt.Sprintf("PO %s", po))
		}

		sc.Q3Level = "show_data"
		sc.SelectedItem = itemCode
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "show_data":
		po := w.findPO(message)
		if po == "" {
			break
		}
		records := w.idx.RecordsByPOAndItem(po, sc.SelectedItem)

		var sb strings.Builder
		sb.WriteString("IN-PROCESS INSPECTION DATA\n\n")
		fmt.Fprintf(&sb, "PO: %s, Item: %s\n", po, sc.SelectedItem)

		return wizardResult{
			response:    sb.String(),
			suggestions: []string{"Search another", "Go back"},
			table:       comprehensiveTable(records, "In-Process Inspection"),
			newCtx:      sc,
		}
	}

	var sb strings.Builder
	sb.WriteString("QUESTION 3: In-Process Inspection\n\nStep 1: Select Factory\n\n")
	var suggestions []string
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		fmt.Fprintf(&sb, "%s\n", plant.Name)
		suggestions = append(suggestions, fmt.Sprintf("Factory %s", plant.Name))
	}
	sc.Q3Level = "building_selection"
	return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}
}

func (w *Wizard) handleFinalInspection(message string, sc session.Context) wizardResult {
	switch sc.Q4Level {
	case "factory_selected":
		plantID := w.findPlant(message)
		if plantID == "" {
			break
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Factory: %s\n\n", w.idx.Plants[plantID].Name)
		sb.WriteString("Step 2: Select Item for Final Inspection / FAI\n\n")

		var suggestions []string
		for i, code := range w.idx.Plants[plantID].Items.Sorted() {
			item, ok := w.idx.Items[code]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "%s (Code: %s)\n", item.Description, item.ItemCode)
			if i < 3 {
				suggestions = append(suggestions, fmt.Sprintf("Item %s", item.ItemCode))
			}
		}

		sc.Q4Level = "item_selected"
		sc.SelectedPlant = plantID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "item_selected":
		itemCode := w.findItemCode(message)
		if itemCode == "" {
			break
		}
		records := w.idx.RecordsByItem(itemCode)

		var sb strings.Builder
		sb.WriteString("FINAL INSPECTION / FAI DETAILS\n\n")
		fmt.Fprintf(&sb, "Item: %s\nTotal Inspection Records: %d\n", itemCode, len(records))

		return wizardResult{
			response:    sb.String(),
			suggestions: []string{"Select another item", "Go back"},
			table:       comprehensiveTable(records, fmt.Sprintf("Final Inspection - %s", itemCode)),
			newCtx:      sc,
		}
	}

	var sb strings.Builder
	sb.WriteString("QUESTION 4: Final Inspection / FAI Details\n\nStep 1: Select Factory\n\n")
	var suggestions []string
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		fmt.Fprintf(&sb, "%s\n", plant.Name)
		suggestions = append(suggestions, fmt.Sprintf("Factory %s", plant.Name))
	}
	sc.Q4Level = "factory_selected"
	return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}
}

func (w *Wizard) handleParameterAnalysis(message string, sc session.Context) wizardResult {
	switch sc.Q5Level {
	case "select_building":
		plantID := w.findPlant(message)
		if plantID == "" {
			break
		}

		var sb strings.Builder
		sb.WriteString("Step 2: Select Section/Building\n\n")
		var suggestions []string
		for _, buildingID := range w.idx.Plants[plantID].Buildings.Sorted() {
			building, ok := w.idx.Buildings[buildingID]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "%s\n", building.Name)
			suggestions = append(suggestions, fmt.Sprintf("Building %s", building.BuildingID))
		}

		sc.Q5Level = "select_item"
		sc.SelectedPlant = plantID
		return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}

	case "select_item":
		var sb strings.Builder
		sb.WriteString("Select analysis type:\n\n")
		sb.WriteString("- Duration-based analysis\n")
		sb.WriteString("- Average readings chart\n")
		sb.WriteString("- Min/Max readings\n")
		sb.WriteString("- Out-of-spec readings\n")
		sb.WriteString("- Operator performance\n")

		return wizardResult{
			response:    sb.String(),
			suggestions: []string{"Average readings", "Min/Max", "Out of spec", "Duration analysis"},
			chart:       parameterAnalysisChart(w.idx.AllRecords()),
			newCtx:      sc,
		}
	}

	var sb strings.Builder
	sb.WriteString("QUESTION 5: Inspection Parameter Analysis\n\nStep 1: Select Factory\n\n")
	var suggestions []string
	for _, plantID := range w.idx.PlantOrder {
		plant := w.idx.Plants[plantID]
		fmt.Fprintf(&sb, "%s\n", plant.Name)
		suggestions = append(suggestions, fmt.Sprintf("Factory %s", plant.Name))
	}
	sc.Q5Level = "select_building"
	return wizardResult{response: sb.String(), suggestions: suggestions, newCtx: sc}
}

func (w *Wizard) handleDistribution(_ string, sc session.Context) wizardResult {
	response := "QUESTION 6: Parameter Distribution Analysis\n\nShowing distribution of captured inspection parameters\n"
	records := w.idx.AllRecords()

	return wizardResult{
		response:    response,
		suggestions: []string{"Show another distribution", "Go back"},
		chart:       distributionHistogram(records),
		table:       distributionStatsTable(allScalarReadings(records)),
		newCtx:      sc,
	}
}

// handleNavigation is the general fallback: the question menu plus system
// status counts.
func (w *Wizard) handleNavigation(sc session.Context) wizardResult {
	var sb strings.Builder
	sb.WriteString("Manufacturing Inspection Q&A System\n\nAvailable Questions:\n\n")
	sb.WriteString("1. PO Status - Complete production order inspection details\n")
	sb.WriteString("2. Inward Material Quality - Raw material inspection data\n")
	sb.WriteString("3. In-Process Inspection - Production line quality checks\n")
	sb.WriteString("4. Final Inspection - FAI and final quality verification\n")
	sb.WriteString("5. Parameter Analysis - Trends, charts, min/max, out-of-spec\n")
	sb.WriteString("6. Parameter Distribution - Statistical distribution analysis\n\n")
	sb.WriteString("System Status:\n")
	fmt.Fprintf(&sb, "- Total Records: %d\n", len(w.idx.AllRecords()))
	fmt.Fprintf(&sb, "- Plants: %d\n", len(w.idx.Plants))
	fmt.Fprintf(&sb, "- Buildings: %d\n", len(w.idx.Buildings))
	fmt.Fprintf(&sb, "- Items: %d\n", len(w.idx.Items))
	fmt.Fprintf(&sb, "- PO Numbers: %d\n", len(w.idx.POs))
	fmt.Fprintf(&sb, "- Operations: %d\n", len(w.idx.Operations))
	fmt.Fprintf(&sb, "- Parameters: %d\n", len(w.idx.Parameters))
	fmt.Fprintf(&sb, "- Machines: %d\n", len(w.idx.Machines))
	fmt.Fprintf(&sb, "- Operators: %d\n", len(w.idx.Operators))

	sc.Level = session.LevelStart
	return wizardResult{
		response:    sb.String(),
		suggestions: wizardMenu,
		newCtx:      sc,
	}
}

func (w *Wizard) History(ctx context.Context, sessionID string) ([]session.Turn, error) {
	return w.sessions.History(ctx, sessionID)
}

func (w *Wizard) TreePath(ctx context.Context, sessionID string) ([]string, error) {
	return w.sessions.TreePath(ctx, sessionID)
}

func (w *Wizard) Reset(ctx context.Context, sessionID string) error {
	return w.sessions.Reset(ctx, sessionID)
}
