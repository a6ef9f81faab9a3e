package engine

import (
	"github.com/qcbot/backend/internal/storage/models"
)

func limit(v float64) *float64 { return &v }

// scalarRecord is a fully populated record with numeric string readings,
// the common shape in the source data.
func scalarRecord(id, po, plantID, plantName, buildingID, itemCode, itemDesc string, scalars []string) models.InspectionRecord {
	return models.InspectionRecord{
		ID:        models.FlexString(id),
		PONumber:  models.FlexString(po),
		Readings:  models.ReadingSet{Scalars: scalars},
		CreatedAt: "2025-03-01T10:00:00Z",
		UpdatedAt: "2025-03-01T10:05:00Z",
		CreatedBy: &models.Operator{
			FirstName:   "Asha",
			LastName:    "Rao",
			Email:       "asha@qc.example",
			PhoneNumber: "9000000001",
			Role:        &models.Role{Name: "Inspector"},
			Plant: &models.Plant{
				PlantID:   models.FlexString(plantID),
				PlantName: plantName,
				Location1: "Pune",
				Location2: "Maharashtra",
			},
		},
		Schedule: &models.InspectionSchedule{
			ID: models.FlexString("S" + id),
			Building: &models.Building{
				BuildingID:   models.FlexString(buildingID),
				BuildingName: "Machining Bay",
				SubSection:   "A1",
				PlantID:      models.FlexString(plantID),
			},
			Item: &models.Item{
				ItemCode:    models.FlexString(itemCode),
				Description: itemDesc,
				ItemType:    "RM",
				Unit:        "Nos",
			},
			Operation:           &models.Operation{OperationID: "OP1", Name: "Turning"},
			Parameter:           &models.Parameter{ParameterID: "PRM1", Name: "Thickness", Description: "Wall thickness in mm"},
			Machine:             &models.Machine{MachineID: "M1", Name: "Vernier", Make: "Mitutoyo", IsDigital: true},
			LSL:                 limit(5.0),
			USL:                 limit(6.0),
			SampleSize:          "5",
			InspectionFrequency: "Per lot",
			InspectionMethod:    "Measurement",
			RecordingType:       "Variable",
		},
	}
}

// engineRecords spans two plants, two POs and a schedule-less partial
// record.
func engineRecords() []models.InspectionRecord {
	r1 := scalarRecord("1", "45001", "P1", "Alpha Works", "B1", "1000000001", "Steel Bracket", []string{"5.1", "5.2"})
	r2 := scalarRecord("2", "45001", "P1", "Alpha Works", "B1", "1000000001", "Steel Bracket", []string{"5.3"})

	r3 := scalarRecord("3", "45002", "P2", "Beta Plant", "B2", "1000000002", "Copper Washer", nil)
	r3.Schedule.Building.BuildingName = "Assembly Line"
	r3.Readings = models.ReadingSet{Counts: &models.CountReading{Accepted: 10, Rejected: 0}}

	r4 := models.InspectionRecord{
		ID:        "4",
		PONumber:  "45001",
		CreatedAt: "2025-03-02T09:00:00Z",
		CreatedBy: &models.Operator{
			Email: "asha@qc.example",
			Plant: &models.Plant{PlantID: "P1", PlantName: "Alpha Works"},
		},
	}

	return []models.InspectionRecord{r1, r2, r3, r4}
}
