package dataset

import (
	"testing"

	"github.com/qcbot/backend/internal/storage/models"
)

func f64(v float64) *float64 { return &v }

func record(id, po, plantID, plantName, buildingID, buildingName, itemCode, itemDesc string, scalars []string) models.InspectionRecord {
	r := models.InspectionRecord{
		ID:        models.FlexString(id),
		PONumber:  models.FlexString(po),
		Readings:  models.ReadingSet{Scalars: scalars},
		CreatedAt: "2025-03-01T10:00:00Z",
	}
	if plantID != "" {
		r.CreatedBy = &models.Operator{
			FirstName: "Asha",
			LastName:  "Rao",
			Email:     "asha@qc.example",
			Plant: &models.Plant{
				PlantID:   models.FlexString(plantID),
				PlantName: plantName,
			},
		}
	}
	if buildingID != "" {
		r.Schedule = &models.InspectionSchedule{
			ID: "S1",
			Building: &models.Building{
				BuildingID:   models.FlexString(buildingID),
				BuildingName: buildingName,
				SubSection:   "A1",
			},
			LSL: f64(5.0),
			USL: f64(6.0),
		}
		if itemCode != "" {
			r.Schedule.Item = &models.Item{
				ItemCode:    models.FlexString(itemCode),
				Description: itemDesc,
				ItemType:    "RM",
				Unit:        "Nos",
			}
		}
	}
	return r
}

func fixtureRecords() []models.InspectionRecord {
	return []models.InspectionRecord{
		record("1", "45001", "P1", "Alpha Works", "B1", "Machining Bay", "1000000001", "Steel Bracket", []string{"5.1", "5.2"}),
		record("2", "45001", "P1", "Alpha Works", "B1", "Machining Bay", "1000000001", "Steel Bracket", []string{"5.3"}),
		record("3", "45002", "P2", "Beta Plant", "B2", "Assembly Line", "1000000002", "Copper Washer", []string{"5.4"}),
		// No schedule: contributes only the plant level.
		record("4", "45001", "P1", "Alpha Works", "", "", "", "", nil),
		// No operator plant: contributes nothing.
		record("5", "45003", "", "", "", "", "", "", nil),
	}
}

func TestBuildHierarchyUniqueness(t *testing.T) {
	ds := Build(fixtureRecords())
	h := ds.Hierarchy

	if len(h.Plants) != 2 {
		t.Fatalf("want 2 plants, got %d", len(h.Plants))
	}
	plant := h.Plants["P1"]
	if plant == nil {
		t.Fatalf("plant P1 missing")
	}
	if len(plant.Sections) != 1 {
		t.Fatalf("want 1 section under P1, got %d", len(plant.Sections))
	}
	section := plant.Sections["B1"]
	if len(section.Items) != 1 {
		t.Fatalf("want 1 item under B1, got %d", len(section.Items))
	}

	item := section.Items["1000000001"]
	if len(item.Readings) != 2 {
		t.Fatalf("want 2 readings for item, got %d", len(item.Readings))
	}
	if item.Readings[0].PONumber != "45001" {
		t.Fatalf("want PO 45001, got %q", item.Readings[0].PONumber)
	}
}

func TestBuildToleratesMissingFields(t *testing.T) {
	ds := Build(fixtureRecords())

	// Record 4 has no schedule, record 5 no plant; neither may create
	// phantom entries below its deepest resolvable level.
	if got := ds.Summary.TotalPlants; got != 2 {
		t.Fatalf("want 2 plants, got %d", got)
	}
	if got := ds.Summary.TotalSections; got != 2 {
		t.Fatalf("want 2 sections, got %d", got)
	}
	if got := ds.Summary.TotalItems; got != 2 {
		t.Fatalf("want 2 items, got %d", got)
	}
	if got := ds.Summary.TotalReadings; got != 3 {
		t.Fatalf("want 3 readings, got %d", got)
	}
}

func TestListingsPreserveFirstSeenOrder(t *testing.T) {
	ds := Build(fixtureRecords())

	plants := ds.AllPlants()
	if len(plants) != 2 || plants[0].ID != "P1" || plants[1].ID != "P2" {
		t.Fatalf("unexpected plant listing %+v", plants)
	}
	if plants[0].Name != "Alpha Works" {
		t.Fatalf("want=%q got=%q", "Alpha Works", plants[0].Name)
	}

	sections := ds.SectionsForPlant("P1")
	if len(sections) != 1 || sections[0].Name != "Machining Bay" {
		t.Fatalf("unexpected section listing %+v", sections)
	}
	if got := ds.SectionsForPlant("no-such-plant"); len(got) != 0 {
		t.Fatalf("want empty listing for unknown plant, got %+v", got)
	}

	items := ds.ItemsForSection("P1", "B1")
	if len(items) != 1 || items[0].ID != "1000000001" {
		t.Fatalf("unexpected item listing %+v", items)
	}
}

func TestLookupItemPartialResolution(t *testing.T) {
	ds := Build(fixtureRecords())

	plant, section, item := ds.LookupItem("P1", "B1", "1000000001")
	if plant == nil || section == nil || item == nil {
		t.Fatalf("full triple should resolve")
	}
	if item.Description != "Steel Bracket" {
		t.Fatalf("want=%q got=%q", "Steel Bracket", item.Description)
	}

	plant, section, item = ds.LookupItem("P1", "B1", "missing")
	if plant == nil || section == nil || item != nil {
		t.Fatalf("item level should be nil for unknown code")
	}

	plant, section, item = ds.LookupItem("P1", "missing", "x")
	if plant == nil || section != nil || item != nil {
		t.Fatalf("section and item should be nil for unknown section")
	}

	plant, _, _ = ds.LookupItem("missing", "x", "y")
	if plant != nil {
		t.Fatalf("unknown plant should resolve to nils")
	}
}

func TestReadingCarriesScheduleSnapshot(t *testing.T) {
	ds := Build(fixtureRecords())
	item := ds.Hierarchy.Plants["P1"].Sections["B1"].Items["1000000001"]

	reading := item.Readings[0]
	if reading.Schedule.LSL == nil || *reading.Schedule.LSL != 5.0 {
		t.Fatalf("want LSL 5.0, got %+v", reading.Schedule.LSL)
	}
	if reading.Schedule.USL == nil || *reading.Schedule.USL != 6.0 {
		t.Fatalf("want USL 6.0, got %+v", reading.Schedule.USL)
	}
}
