package index

import (
	"sort"

	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/storage/models"
	"github.com/qcbot/backend/pkg/logger"
)

// KeySet is an unordered set of related entity keys.
type KeySet map[string]struct{}

func (s KeySet) Add(key string) {
	if key != "" {
		s[key] = struct{}{}
	}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Len() int { return len(s) }

// Sorted returns the member keys in lexical order for stable output.
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type PlantEntry struct {
	PlantID   string
	Name      string
	Location1 string
	Location2 string
	Buildings KeySet
	Items     KeySet
	POs       KeySet
	Records   []string
}

type BuildingEntry struct {
	ID         string
	BuildingID string
	Name       string
	SubSection string
	PlantID    string
	Items      KeySet
	Operations KeySet
	Records    []string
}

type ItemEntry struct {
	ID          string
	ItemCode    string
	Description string
	Unit        string
	ItemType    string
	EndStore    string
	Buildings   KeySet
	Operations  KeySet
	Parameters  KeySet
	Machines    KeySet
	POs         KeySet
	Records     []string
}

type POEntry struct {
	PONumber         string
	Plants           KeySet
	Buildings        KeySet
	Items            KeySet
	Operators        KeySet
	TotalInspections int
	Records          []string
}

type OperationEntry struct {
	ID          string
	OperationID string
	Name        string
	Description string
	Items       KeySet
	Parameters  KeySet
	Records     []string
}

type ParameterEntry struct {
	ID          string
	ParameterID string
	Name        string
	Description string
	Items       KeySet
	Operations  KeySet
	Records     []string
}

type MachineEntry struct {
	ID        string
	MachineID string
	Name      string
	Make      string
	Model     string
	IsDigital bool
	Type      string
	Items     KeySet
	Records   []string
}

type OperatorEntry struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	RoleName  string
	RoleDesc  string
	PlantID   string
	PlantName string
	Records   []string
}

// Indexes holds the eight cross-referenced entity indexes built from the raw
// record list. Descriptive fields are first-record-wins: the first record
// referencing an entity fixes its metadata, later records only extend the
// relation sets and record lists. Read-only after Build.
type Indexes struct {
	Plants     map[string]*PlantEntry
	Buildings  map[string]*BuildingEntry
	Items      map[string]*ItemEntry
	POs        map[string]*POEntry
	Operations map[string]*OperationEntry
	Parameters map[string]*ParameterEntry
	Machines   map[string]*MachineEntry
	Operators  map[string]*OperatorEntry

	PlantOrder    []string
	BuildingOrder []string
	ItemOrder     []string
	POOrder       []string

	records []models.InspectionRecord
	byID    map[string]int
}

// Build scans the record list once and populates every index. Each of the
// eight keys is resolved independently; a record lacking one key still
// contributes to the indexes for the keys it carries.
func Build(records []models.InspectionRecord) *Indexes {
	idx := &Indexes{
		Plants:     make(map[string]*PlantEntry),
		Buildings:  make(map[string]*BuildingEntry),
		Items:      make(map[string]*ItemEntry),
		POs:        make(map[string]*POEntry),
		Operations: make(map[string]*OperationEntry),
		Parameters: make(map[string]*ParameterEntry),
		Machines:   make(map[string]*MachineEntry),
		Operators:  make(map[string]*OperatorEntry),
		records:    records,
		byID:       make(map[string]int, len(records)),
	}

	for i := range records {
		record := &records[i]
		recordID := record.ID.String()
		if recordID != "" {
			if _, seen := idx.byID[recordID]; !seen {
				idx.byID[recordID] = i
			}
		}

		schedule := record.Schedule

		var plantData *models.Plant
		var operatorData *models.Operator
		if record.CreatedBy != nil {
			operatorData = record.CreatedBy
			plantData = record.CreatedBy.Plant
		}

		var plantID string
		if plantData != nil && plantData.PlantID != "" {
			plantID = plantData.PlantID.String()
			entry, ok := idx.Plants[plantID]
			if !ok {
				entry = &PlantEntry{
					PlantID:   plantID,
					Name:      plantData.PlantName,
					Location1: plantData.Location1,
					Location2: plantData.Location2,
					Buildings: KeySet{},
					Items:     KeySet{},
					POs:       KeySet{},
				}
				idx.Plants[plantID] = entry
				idx.PlantOrder = append(idx.PlantOrder, plantID)
			}
			entry.Records = append(entry.Records, recordID)
		}

		var buildingID string
		if schedule != nil && schedule.Building != nil && schedule.Building.BuildingID != "" {
			b := schedule.Building
			buildingID = b.BuildingID.String()
			entry, ok := idx.Buildings[buildingID]
			if !ok {
				entry = &BuildingEntry{
					ID:         b.ID.String(),
					BuildingID: buildingID,
					Name:       b.BuildingName,
					SubSection: b.SubSection,
					PlantID:    b.PlantID.String(),
					Items:      KeySet{},
					Operations: KeySet{},
				}
				idx.Buildings[buildingID] = entry
				idx.BuildingOrder = append(idx.BuildingOrder, buildingID)
			}
			entry.Records = append(entry.Records, recordID)
			if plantID != "" {
				idx.Plants[plantID].Buildings.Add(buildingID)
			}
		}

		var itemCode string
		if schedule != nil && schedule.Item != nil && schedule.Item.ItemCode != "" {
			it := schedule.Item
			itemCode = it.ItemCode.String()
			entry, ok := idx.Items[itemCode]
			if !ok {
				entry = &ItemEntry{
					ID:          it.ID.String(),
					ItemCode:    itemCode,
					Description: it.Description,
					Unit:        it.Unit,
					ItemType:    it.ItemType,
					EndStore:    it.EndStore,
					Buildings:   KeySet{},
					Operations:  KeySet{},
					Parameters:  KeySet{},
					Machines:    KeySet{},
					POs:         KeySet{},
				}
				idx.Items[itemCode] = entry
				idx.ItemOrder = append(idx.ItemOrder, itemCode)
			}
			entry.Records = append(entry.Records, recordID)
			if plantID != "" {
				idx.Plants[plantID].Items.Add(itemCode)
			}
			if buildingID != "" {
				idx.Buildings[buildingID].Items.Add(itemCode)
				entry.Buildings.Add(buildingID)
			}
		}

		var poNo string
		if record.PONumber != "" {
			poNo = record.PONumber.String()
			entry, ok := idx.POs[poNo]
			if !ok {
				entry = &POEntry{
					PONumber:  poNo,
					Plants:    KeySet{},
					Buildings: KeySet{},
					Items:     KeySet{},
					Operators: KeySet{},
				}
				idx.POs[poNo] = entry
				idx.POOrder = append(idx.POOrder, poNo)
			}
			entry.Records = append(entry.Records, recordID)
			entry.TotalInspections++
			if plantID != "" {
				entry.Plants.Add(plantID)
				idx.Plants[plantID].POs.Add(poNo)
			}
			if buildingID != "" {
				entry.Buildings.Add(buildingID)
			}
			if itemCode != "" {
				entry.Items.Add(itemCode)
				idx.Items[itemCode].POs.Add(poNo)
			}
		}

		var operationID string
		if schedule != nil && schedule.Operation != nil && schedule.Operation.OperationID != "" {
			op := schedule.Operation
			operationID = op.OperationID.String()
			entry, ok := idx.Operations[operationID]
			if !ok {
				entry = &OperationEntry{
					ID:          op.ID.String(),
					OperationID: operationID,
					Name:        op.Name,
					Description: op.Description,
					Items:       KeySet{},
					Parameters:  KeySet{},
				}
				idx.Operations[operationID] = entry
			}
			entry.Records = append(entry.Records, recordID)
			if buildingID != "" {
				idx.Buildings[buildingID].Operations.Add(operationID)
			}
			if itemCode != "" {
				idx.Items[itemCode].Operations.Add(operationID)
				entry.Items.Add(itemCode)
			}
		}

		if schedule != nil && schedule.Parameter != nil && schedule.Parameter.ParameterID != "" {
			p := schedule.Parameter
			parameterID := p.ParameterID.String()
			entry, ok := idx.Parameters[parameterID]
			if !ok {
				entry = &ParameterEntry{
					ID:          p.ID.String(),
					ParameterID: parameterID,
					Name:        p.Name,
					Description: p.Description,
					Items:       KeySet{},
					Operations:  KeySet{},
				}
				idx.Parameters[parameterID] = entry
			}
			entry.Records = append(entry.Records, recordID)
			if itemCode != "" {
				idx.Items[itemCode].Parameters.Add(parameterID)
				entry.Items.Add(itemCode)
			}
			if operationID != "" {
				entry.Operations.Add(operationID)
				idx.Operations[operationID].Parameters.Add(parameterID)
			}
		}

		if schedule != nil && schedule.Machine != nil && schedule.Machine.MachineID != "" {
			m := schedule.Machine
			machineID := m.MachineID.String()
			entry, ok := idx.Machines[machineID]
			if !ok {
				entry = &MachineEntry{
					ID:        m.ID.String(),
					MachineID: machineID,
					Name:      m.Name,
					Make:      m.Make,
					Model:     m.Model,
					IsDigital: m.IsDigital,
					Type:      m.Type,
					Items:     KeySet{},
				}
				idx.Machines[machineID] = entry
			}
			entry.Records = append(entry.Records, recordID)
			if itemCode != "" {
				idx.Items[itemCode].Machines.Add(machineID)
				entry.Items.Add(itemCode)
			}
		}

		if operatorData != nil && operatorData.Email != "" {
			email := operatorData.Email
			entry, ok := idx.Operators[email]
			if !ok {
				entry = &OperatorEntry{
					Email:     email,
					FirstName: operatorData.FirstName,
					LastName:  operatorData.LastName,
					Phone:     operatorData.PhoneNumber,
					PlantID:   plantID,
				}
				if operatorData.Role != nil {
					entry.RoleName = operatorData.Role.Name
					entry.RoleDesc = operatorData.Role.Description
				}
				if plantData != nil {
					entry.PlantName = plantData.PlantName
				}
				idx.Operators[email] = entry
			}
			entry.Records = append(entry.Records, recordID)
			if poNo != "" {
				idx.POs[poNo].Operators.Add(email)
			}
		}
	}

	logger.Info("Built comprehensive indexes",
		zap.Int("plants", len(idx.Plants)),
		zap.Int("buildings", len(idx.Buildings)),
		zap.Int("items", len(idx.Items)),
		zap.Int("pos", len(idx.POs)),
		zap.Int("operations", len(idx.Operations)),
		zap.Int("parameters", len(idx.Parameters)),
		zap.Int("machines", len(idx.Machines)),
		zap.Int("operators", len(idx.Operators)),
	)

	return idx
}

// RecordsByPO returns the raw records for a PO number in input order.
func (idx *Indexes) RecordsByPO(poNo string) []*models.InspectionRecord {
	var out []*models.InspectionRecord
	for i := range idx.records {
		if idx.records[i].PONumber.String() == poNo {
			out = append(out, &idx.records[i])
		}
	}
	return out
}

// RecordsByItem returns the raw records for an item code in input order.
func (idx *Indexes) RecordsByItem(itemCode string) []*models.InspectionRecord {
	var out []*models.InspectionRecord
	for i := range idx.records {
		r := &idx.records[i]
		if r.Schedule != nil && r.Schedule.Item != nil && r.Schedule.Item.ItemCode.String() == itemCode {
			out = append(out, r)
		}
	}
	return out
}

// RecordsByPOAndItem narrows to records carrying both keys.
func (idx *Indexes) RecordsByPOAndItem(poNo, itemCode string) []*models.InspectionRecord {
	var out []*models.InspectionRecord
	for _, r := range idx.RecordsByPO(poNo) {
		if r.Schedule != nil && r.Schedule.Item != nil && r.Schedule.Item.ItemCode.String() == itemCode {
			out = append(out, r)
		}
	}
	return out
}

// AllRecords exposes the underlying record list, read-only by convention.
func (idx *Indexes) AllRecords() []models.InspectionRecord {
	return idx.records
}
