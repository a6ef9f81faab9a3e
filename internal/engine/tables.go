package engine

import (
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/qcbot/backend/internal/dataset"
	"github.com/qcbot/backend/internal/storage/models"
)

// comprehensiveColumns is the fixed schema of the exhaustive record table:
// every denormalized field reachable from a raw record, one row per record.
var comprehensiveColumns = []string{
	"ID", "Created Date", "Updated Date", "Active", "PO Number",
	"Plant ID", "Plant Name", "Plant Location 1", "Plant Location 2",
	"Building ID", "Building Name", "Sub-Section",
	"Item Code", "Item Description", "Item Type", "Unit",
	"Operation ID", "Operation Name", "Operation Description",
	"Parameter ID", "Parameter Name", "Parameter Description",
	"Machine ID", "Machine Name", "Make", "Model", "Is Digital",
	"LSL", "Target", "USL", "Actual Readings", "Status",
	"Sample Size", "Frequency", "Method", "Recording Type",
	"Defect Classification", "Remarks",
	"Operator Name", "Operator Email", "Operator Phone", "Operator Role",
}

func clipTimestamp(ts string) string {
	if len(ts) > 19 {
		return ts[:19]
	}
	return ts
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatLimit(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// comprehensiveTable builds the exhaustive projection for a record slice.
// Absent nested references produce empty cells, never a missing column.
func comprehensiveTable(records []*models.InspectionRecord, title string) *TableSpec {
	rows := make([][]string, 0, len(records))

	for _, record := range records {
		schedule := record.Schedule
		if schedule == nil {
			schedule = &models.InspectionSchedule{}
		}
		building := schedule.Building
		if building == nil {
			building = &models.Building{}
		}
		item := schedule.Item
		if item == nil {
			item = &models.Item{}
		}
		operation := schedule.Operation
		if operation == nil {
			operation = &models.Operation{}
		}
		parameter := schedule.Parameter
		if parameter == nil {
			parameter = &models.Parameter{}
		}
		machine := schedule.Machine
		if machine == nil {
			machine = &models.Machine{}
		}
		operator := record.CreatedBy
		if operator == nil {
			operator = &models.Operator{}
		}
		var plant models.Plant
		if operator.Plant != nil {
			plant = *operator.Plant
		}
		var role models.Role
		if operator.Role != nil {
			role = *operator.Role
		}

		lsl, usl := record.Schedule.SpecLimits()

		rows = append(rows, []string{
			record.ID.String(),
			clipTimestamp(record.CreatedAt),
			clipTimestamp(record.UpdatedAt),
			formatBool(record.IsActive),
			record.PONumber.String(),
			plant.PlantID.String(),
			plant.PlantName,
			plant.Location1,
			plant.Location2,
			building.BuildingID.String(),
			building.BuildingName,
			building.SubSection,
			item.ItemCode.String(),
			item.Description,
			item.ItemType,
			item.Unit,
			operation.OperationID.String(),
			operation.Name,
			operation.Description,
			parameter.ParameterID.String(),
			parameter.Name,
			parameter.Description,
			machine.MachineID.String(),
			machine.Name,
			machine.Make,
			machine.Model,
			strconv.FormatBool(machine.IsDigital),
			formatLimit(schedule.LSL),
			formatLimit(schedule.TargetValue),
			formatLimit(schedule.USL),
			record.Readings.Display(),
			computeStatus(record.Readings, lsl, usl),
			schedule.SampleSize.String(),
			schedule.InspectionFrequency,
			schedule.InspectionMethod,
			schedule.RecordingType,
			schedule.DefectClassification,
			schedule.Remarks,
			operator.FullName(),
			operator.Email,
			operator.PhoneNumber,
			role.Name,
		})
	}

	return &TableSpec{
		Title:   title,
		Columns: comprehensiveColumns,
		Rows:    rows,
	}
}

// parameterTable lists the quality parameters monitored for one item.
func parameterTable(item *dataset.Item) *TableSpec {
	if len(item.Parameters) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(item.ParameterOrder))
	for _, id := range item.ParameterOrder {
		param := item.Parameters[id]
		rows = append(rows, []string{param.Name, param.Description})
	}

	return &TableSpec{
		Title:       fmt.Sprintf("Quality Parameters for %s", item.Description),
		Columns:     []string{"Parameter", "Description"},
		Rows:        rows,
		Description: "All quality control parameters monitored for this item",
	}
}

// sectionItemsTable lists the items produced in one section.
func sectionItemsTable(section *dataset.Section) *TableSpec {
	rows := make([][]string, 0, len(section.ItemOrder))
	for _, code := range section.ItemOrder {
		item := section.Items[code]
		rows = append(rows, []string{
			item.Description,
			item.Type,
			strconv.Itoa(len(item.Readings)),
		})
	}

	return &TableSpec{
		Title:       fmt.Sprintf("Items in %s", section.Name),
		Columns:     []string{"Item", "Type", "Inspection Records"},
		Rows:        rows,
		Description: "All items produced in this section",
	}
}

// distributionStatsTable summarizes the scalar reading distribution. The
// standard deviation is the sample estimate, zero when fewer than two
// samples exist.
func distributionStatsTable(values []float64) *TableSpec {
	if len(values) == 0 {
		return nil
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)

	stdDev := 0.0
	if len(values) > 1 {
		stdDev, _ = stats.StandardDeviationSample(values)
	}

	return &TableSpec{
		Title:   "Distribution Statistics",
		Columns: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Count", strconv.Itoa(len(values))},
			{"Mean", fmt.Sprintf("%.2f", mean)},
			{"Median", fmt.Sprintf("%.2f", median)},
			{"Std Dev", fmt.Sprintf("%.2f", stdDev)},
			{"Min", fmt.Sprintf("%.2f", minVal)},
			{"Max", fmt.Sprintf("%.2f", maxVal)},
			{"Range", fmt.Sprintf("%.2f", maxVal-minVal)},
		},
	}
}
