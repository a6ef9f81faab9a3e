package dataset

import (
	"github.com/qcbot/backend/internal/storage/models"
)

// Hierarchy is the derived Plant -> Section -> Item -> Reading view of the
// record set. It is built once at load time and never mutated afterwards, so
// it is shared across sessions without locking. Insertion order is preserved
// at every level to keep listings and suggestions deterministic.
type Hierarchy struct {
	Plants     map[string]*Plant
	PlantOrder []string
}

type Plant struct {
	ID           string
	Name         string
	Sections     map[string]*Section
	SectionOrder []string
}

type Section struct {
	ID         string
	Name       string
	SubSection string
	Items      map[string]*Item
	ItemOrder  []string
}

type Item struct {
	Code        string
	Description string
	Type        string
	Unit        string

	Machines       map[string]MachineInfo
	MachineOrder   []string
	Operations     map[string]OperationInfo
	OperationOrder []string
	Parameters     map[string]ParameterInfo
	ParameterOrder []string

	Readings []Reading
}

type MachineInfo struct {
	ID        string
	Name      string
	Make      string
	Model     string
	IsDigital bool
	Type      string
}

type OperationInfo struct {
	ID          string
	Name        string
	Description string
}

type ParameterInfo struct {
	ID          string
	Name        string
	Description string
}

// Reading is one inspection event folded under its resolved item, carrying a
// snapshot of the schedule it was taken against.
type Reading struct {
	ID        string
	PONumber  string
	Readings  models.ReadingSet
	CreatedAt string
	Schedule  ScheduleSnapshot
	Machine   string
	Operation string
	Parameter string
}

type ScheduleSnapshot struct {
	ID                   string
	LSL                  *float64
	Target               *float64
	USL                  *float64
	SampleSize           string
	Frequency            string
	Method               string
	RecordingType        string
	DefectClassification string
}

// buildHierarchy folds every record into the nested view. A record missing a
// key field at any level contributes nothing below that level but is never a
// load error. First-seen values win for entity metadata.
func buildHierarchy(records []models.InspectionRecord) *Hierarchy {
	h := &Hierarchy{Plants: make(map[string]*Plant)}

	for i := range records {
		record := &records[i]

		var plantData *models.Plant
		if record.CreatedBy != nil {
			plantData = record.CreatedBy.Plant
		}
		if plantData == nil || plantData.PlantID == "" {
			continue
		}
		plantID := plantData.PlantID.String()

		plant, ok := h.Plants[plantID]
		if !ok {
			name := plantData.PlantName
			if name == "" {
				name = "Unknown Plant"
			}
			plant = &Plant{ID: plantID, Name: name, Sections: make(map[string]*Section)}
			h.Plants[plantID] = plant
			h.PlantOrder = append(h.PlantOrder, plantID)
		}

		schedule := record.Schedule
		if schedule == nil || schedule.Building == nil || schedule.Building.BuildingID == "" {
			continue
		}
		sectionID := schedule.Building.BuildingID.String()

		section, ok := plant.Sections[sectionID]
		if !ok {
			name := schedule.Building.BuildingName
			if name == "" {
				name = "Unknown Section"
			}
			section = &Section{
				ID:         sectionID,
				Name:       name,
				SubSection: schedule.Building.SubSection,
				Items:      make(map[string]*Item),
			}
			plant.Sections[sectionID] = section
			plant.SectionOrder = append(plant.SectionOrder, sectionID)
		}

		if schedule.Item == nil || schedule.Item.ItemCode == "" {
			continue
		}
		itemCode := schedule.Item.ItemCode.String()

		item, ok := section.Items[itemCode]
		if !ok {
			desc := schedule.Item.Description
			if desc == "" {
				desc = "Unknown Item"
			}
			item = &Item{
				Code:        itemCode,
				Description: desc,
				Type:        schedule.Item.ItemType,
				Unit:        schedule.Item.Unit,
				Machines:    make(map[string]MachineInfo),
				Operations:  make(map[string]OperationInfo),
				Parameters:  make(map[string]ParameterInfo),
			}
			section.Items[itemCode] = item
			section.ItemOrder = append(section.ItemOrder, itemCode)
		}

		var machineName, operationName, parameterName string

		if m := schedule.Machine; m != nil && m.MachineID != "" {
			machineName = m.Name
			id := m.MachineID.String()
			if _, seen := item.Machines[id]; !seen {
				item.Machines[id] = MachineInfo{
					ID:        id,
					Name:      m.Name,
					Make:      m.Make,
					Model:     m.Model,
					IsDigital: m.IsDigital,
					Type:      m.Type,
				}
				item.MachineOrder = append(item.MachineOrder, id)
			}
		}

		if op := schedule.Operation; op != nil && op.OperationID != "" {
			operationName = op.Name
			id := op.OperationID.String()
			if _, seen := item.Operations[id]; !seen {
				item.Operations[id] = OperationInfo{ID: id, Name: op.Name, Description: op.Description}
				item.OperationOrder = append(item.OperationOrder, id)
			}
		}

		if p := schedule.Parameter; p != nil && p.ParameterID != "" {
			parameterName = p.Name
			id := p.ParameterID.String()
			if _, seen := item.Parameters[id]; !seen {
				item.Parameters[id] = ParameterInfo{ID: id, Name: p.Name, Description: p.Description}
				item.ParameterOrder = append(item.ParameterOrder, id)
			}
		}

		item.Readings = append(item.Readings, Reading{
			ID:        record.ID.String(),
			PONumber:  record.PONumber.String(),
			Readings:  record.Readings,
			CreatedAt: record.CreatedAt,
			Schedule: ScheduleSnapshot{
				ID:                   schedule.ID.String(),
				LSL:                  schedule.LSL,
				Target:               schedule.TargetValue,
				USL:                  schedule.USL,
				SampleSize:           schedule.SampleSize.String(),
				Frequency:            schedule.InspectionFrequency,
				Method:               schedule.InspectionMethod,
				RecordingType:        schedule.RecordingType,
				DefectClassification: schedule.DefectClassification,
			},
			Machine:   machineName,
			Operation: operationName,
			Parameter: parameterName,
		})
	}

	return h
}
