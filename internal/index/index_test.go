package index

import (
	"testing"

	"github.com/qcbot/backend/internal/storage/models"
)

func fixtureRecord(id, po string) models.InspectionRecord {
	return models.InspectionRecord{
		ID:       models.FlexString(id),
		PONumber: models.FlexString(po),
		Readings: models.ReadingSet{Scalars: []string{"5.1"}},
		CreatedBy: &models.Operator{
			FirstName:   "Asha",
			LastName:    "Rao",
			Email:       "asha@qc.example",
			PhoneNumber: "9000000001",
			Role:        &models.Role{Name: "Inspector"},
			Plant: &models.Plant{
				PlantID:   "P1",
				PlantName: "Alpha Works",
				Location1: "Pune",
				Location2: "Maharashtra",
			},
		},
		Schedule: &models.InspectionSchedule{
			ID: "S1",
			Building: &models.Building{
				BuildingID:   "B1",
				BuildingName: "Machining Bay",
				SubSection:   "A1",
				PlantID:      "P1",
			},
			Item: &models.Item{
				ItemCode:    "1000000001",
				Description: "Steel Bracket",
				ItemType:    "RM",
				Unit:        "Nos",
			},
			Operation: &models.Operation{OperationID: "OP1", Name: "Turning"},
			Parameter: &models.Parameter{ParameterID: "PRM1", Name: "Thickness"},
			Machine:   &models.Machine{MachineID: "M1", Name: "Vernier", Make: "Mitutoyo"},
		},
	}
}

func fixtureRecords() []models.InspectionRecord {
	r1 := fixtureRecord("1", "45001")

	// Same entities, conflicting metadata: must not overwrite r1's values.
	r2 := fixtureRecord("2", "45001")
	r2.CreatedBy.Plant.PlantName = "Alpha Works Renamed"
	r2.Schedule.Item.Description = "Steel Bracket v2"

	r3 := fixtureRecord("3", "45002")
	r3.CreatedBy.Plant = &models.Plant{PlantID: "P2", PlantName: "Beta Plant"}
	r3.CreatedBy.Email = "vikram@qc.example"
	r3.CreatedBy.FirstName = "Vikram"
	r3.Schedule.Building = &models.Building{BuildingID: "B2", BuildingName: "Assembly Line"}
	r3.Schedule.Item = &models.Item{ItemCode: "1000000002", Description: "Copper Washer"}

	// Partial record: PO and plant only.
	r4 := models.InspectionRecord{
		ID:       "4",
		PONumber: "45001",
		CreatedBy: &models.Operator{
			Email: "asha@qc.example",
			Plant: &models.Plant{PlantID: "P1", PlantName: "Whatever"},
		},
	}

	return []models.InspectionRecord{r1, r2, r3, r4}
}

func TestBuildFirstRecordWins(t *testing.T) {
	idx := Build(fixtureRecords())

	plant := idx.Plants["P1"]
	if plant == nil {
		t.Fatalf("plant P1 missing")
	}
	if plant.Name != "Alpha Works" {
		t.Fatalf("want=%q got=%q", "Alpha Works", plant.Name)
	}

	item := idx.Items["1000000001"]
	if item == nil {
		t.Fatalf("item missing")
	}
	if item.Description != "Steel Bracket" {
		t.Fatalf("want=%q got=%q", "Steel Bracket", item.Description)
	}
}

func TestBuildRelationSets(t *testing.T) {
	idx := Build(fixtureRecords())

	plant := idx.Plants["P1"]
	if !plant.Buildings.Has("B1") || plant.Buildings.Len() != 1 {
		t.Fatalf("unexpected buildings for P1: %v", plant.Buildings.Sorted())
	}
	if !plant.Items.Has("1000000001") {
		t.Fatalf("item missing from plant relation")
	}
	if !plant.POs.Has("45001") {
		t.Fatalf("PO missing from plant relation")
	}

	po := idx.POs["45001"]
	if po == nil {
		t.Fatalf("PO 45001 missing")
	}
	if po.TotalInspections != 3 {
		t.Fatalf("want 3 inspections, got %d", po.TotalInspections)
	}
	if !po.Plants.Has("P1") || po.Plants.Len() != 1 {
		t.Fatalf("unexpected plants for PO: %v", po.Plants.Sorted())
	}
	if !po.Operators.Has("asha@qc.example") {
		t.Fatalf("operator missing from PO relation")
	}

	item := idx.Items["1000000001"]
	if !item.Operations.Has("OP1") || !item.Parameters.Has("PRM1") || !item.Machines.Has("M1") {
		t.Fatalf("item cross references incomplete: %+v", item)
	}

	op := idx.Operations["OP1"]
	if op == nil || !op.Parameters.Has("PRM1") {
		t.Fatalf("operation to parameter link missing")
	}
}

func TestBuildOrderSlices(t *testing.T) {
	idx := Build(fixtureRecords())

	if len(idx.PlantOrder) != 2 || idx.PlantOrder[0] != "P1" || idx.PlantOrder[1] != "P2" {
		t.Fatalf("unexpected plant order %v", idx.PlantOrder)
	}
	if len(idx.POOrder) != 2 || idx.POOrder[0] != "45001" {
		t.Fatalf("unexpected PO order %v", idx.POOrder)
	}
	if len(idx.ItemOrder) != 2 || idx.ItemOrder[0] != "1000000001" {
		t.Fatalf("unexpected item order %v", idx.ItemOrder)
	}
}

func TestRecordLookups(t *testing.T) {
	idx := Build(fixtureRecords())

	byPO := idx.RecordsByPO("45001")
	if len(byPO) != 3 {
		t.Fatalf("want 3 records for PO, got %d", len(byPO))
	}
	if byPO[0].ID.String() != "1" {
		t.Fatalf("records out of input order: %v", byPO[0].ID)
	}

	byItem := idx.RecordsByItem("1000000001")
	if len(byItem) != 2 {
		t.Fatalf("want 2 records for item, got %d", len(byItem))
	}

	both := idx.RecordsByPOAndItem("45001", "1000000001")
	if len(both) != 2 {
		t.Fatalf("want 2 records for PO+item, got %d", len(both))
	}

	if got := idx.RecordsByPO("no-such-po"); len(got) != 0 {
		t.Fatalf("want no records, got %d", len(got))
	}
}

func TestKeySet(t *testing.T) {
	set := KeySet{}
	set.Add("b")
	set.Add("a")
	set.Add("a")
	set.Add("")

	if set.Len() != 2 {
		t.Fatalf("want 2 members, got %d", set.Len())
	}
	sorted := set.Sorted()
	if len(sorted) != 2 || sorted[0] != "a" || sorted[1] != "b" {
		t.Fatalf("unexpected sorted keys %v", sorted)
	}
	if set.Has("") {
		t.Fatalf("empty key must not be stored")
	}
}
