package models

import (
	"encoding/json"
	"strconv"
)

// FlexString decodes JSON strings and numbers alike; identifiers in the
// source dataset switch between the two forms.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexString(num.String())
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*f = FlexString(str)
	return nil
}

func (f FlexString) String() string { return string(f) }

// InspectionRecord is one quality-check event as it appears in the source
// dataset. Nested references are pointers; any of them may be absent and the
// loader skips the corresponding hierarchy edge for that record.
type InspectionRecord struct {
	ID        FlexString          `json:"id"`
	PONumber  FlexString          `json:"po_no"`
	Readings  ReadingSet          `json:"actual_readings"`
	IsActive  *bool               `json:"is_active,omitempty"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
	CreatedBy *Operator           `json:"created_by_id,omitempty"`
	Schedule  *InspectionSchedule `json:"insp_schedule_id_id,omitempty"`
}

type Operator struct {
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        *Role  `json:"role_id,omitempty"`
	Plant       *Plant `json:"plant_id,omitempty"`
}

// FullName joins first and last name for display.
func (o *Operator) FullName() string {
	if o == nil {
		return ""
	}
	if o.FirstName == "" {
		return o.LastName
	}
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

type Role struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Plant struct {
	PlantID   FlexString `json:"plant_id"`
	PlantName string `json:"plant_name"`
	Location1 string `json:"plant_location_1"`
	Location2 string `json:"plant_location_2"`
}

type InspectionSchedule struct {
	ID                   FlexString `json:"id"`
	Building             *Building  `json:"building_id,omitempty"`
	Item                 *Item      `json:"item_code_id,omitempty"`
	Operation            *Operation `json:"operation_id,omitempty"`
	Parameter            *Parameter `json:"inspection_parameter_id,omitempty"`
	Machine              *Machine   `json:"qc_machine_id_id,omitempty"`
	LSL                  *float64   `json:"LSL,omitempty"`
	TargetValue          *float64   `json:"target_value,omitempty"`
	USL                  *float64   `json:"USL,omitempty"`
	SampleSize           FlexString `json:"sample_size"`
	InspectionFrequency  string     `json:"inspection_frequency"`
	InspectionMethod     string     `json:"inspection_method"`
	RecordingType        string     `json:"recording_type"`
	DefectClassification string     `json:"likely_defects_classification"`
	Remarks              string     `json:"remarks"`
}

// SpecLimits returns LSL and USL, defaulting absent limits to zero.
func (s *InspectionSchedule) SpecLimits() (lsl, usl float64) {
	if s == nil {
		return 0, 0
	}
	if s.LSL != nil {
		lsl = *s.LSL
	}
	if s.USL != nil {
		usl = *s.USL
	}
	return lsl, usl
}

type Building struct {
	ID           FlexString `json:"id"`
	BuildingID   FlexString `json:"building_id"`
	BuildingName string `json:"building_name"`
	SubSection   string `json:"sub_section"`
	PlantID      FlexString `json:"plant_id"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

type Item struct {
	ID          FlexString `json:"id"`
	ItemCode    FlexString `json:"item_code"`
	Description string `json:"item_description"`
	Unit        string `json:"unit"`
	ItemType    string `json:"item_type"`
	EndStore    string `json:"end_store"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type Operation struct {
	ID          FlexString `json:"id"`
	OperationID FlexString `json:"operation_id"`
	Name        string `json:"operation_name"`
	Description string `json:"operation_description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type Parameter struct {
	ID          FlexString `json:"id"`
	ParameterID FlexString `json:"inspection_parameter_id"`
	Name        string `json:"inspection_parameter"`
	Description string `json:"parameter_description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type Machine struct {
	ID        FlexString `json:"id"`
	MachineID FlexString `json:"machine_id"`
	Name      string `json:"machine_name"`
	Make      string `json:"machine_make"`
	Model     string `json:"machine_model"`
	IsDigital bool   `json:"is_digital"`
	Type      string `json:"machine_type"`
	IsActive  *bool  `json:"is_active,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CountReading is the structured accepted/rejected form of a reading.
type CountReading struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func (c *CountReading) UnmarshalJSON(data []byte) error {
	var aux struct {
		Accepted json.Number `json:"accepted"`
		Rejected json.Number `json:"rejected"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Accepted = numberToInt(aux.Accepted)
	c.Rejected = numberToInt(aux.Rejected)
	return nil
}

func numberToInt(n json.Number) int {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}

// ReadingSet holds the polymorphic actual_readings payload: either a list of
// scalar values (numbers or numeric strings) or a list of accepted/rejected
// count objects. Only the first count object is meaningful, matching the
// source data.
type ReadingSet struct {
	Counts  *CountReading
	Scalars []string
}

func (r *ReadingSet) UnmarshalJSON(data []byte) error {
	r.Counts = nil
	r.Scalars = nil

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		// Not an array; treat as no readings rather than aborting the load.
		return nil
	}

	for _, raw := range elems {
		if len(raw) > 0 && raw[0] == '{' {
			var count CountReading
			if err := json.Unmarshal(raw, &count); err != nil {
				continue
			}
			if r.Counts == nil {
				r.Counts = &count
			}
			continue
		}

		var num json.Number
		if err := json.Unmarshal(raw, &num); err == nil {
			r.Scalars = append(r.Scalars, num.String())
			continue
		}
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			r.Scalars = append(r.Scalars, str)
		}
	}
	return nil
}

func (r ReadingSet) MarshalJSON() ([]byte, error) {
	if r.Counts != nil {
		return json.Marshal([]*CountReading{r.Counts})
	}
	out := make([]string, 0, len(r.Scalars))
	out = append(out, r.Scalars...)
	return json.Marshal(out)
}

// IsEmpty reports whether the record carried no readings at all.
func (r ReadingSet) IsEmpty() bool {
	return r.Counts == nil && len(r.Scalars) == 0
}

// NumericValues parses the scalar readings, dropping unparseable entries.
func (r ReadingSet) NumericValues() []float64 {
	values := make([]float64, 0, len(r.Scalars))
	for _, s := range r.Scalars {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// Display renders the readings for a table cell.
func (r ReadingSet) Display() string {
	if r.Counts != nil {
		return "Acc: " + strconv.Itoa(r.Counts.Accepted) + ", Rej: " + strconv.Itoa(r.Counts.Rejected)
	}
	if len(r.Scalars) == 0 {
		return "N/A"
	}
	out := r.Scalars[0]
	for _, s := range r.Scalars[1:] {
		out += ", " + s
	}
	return out
}
