package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/storage/models"
	"github.com/qcbot/backend/pkg/logger"
)

// Summary holds the load-time totals surfaced in greetings and overviews.
type Summary struct {
	TotalPlants   int `json:"total_plants"`
	TotalSections int `json:"total_sections"`
	TotalItems    int `json:"total_items"`
	TotalReadings int `json:"total_inspection_readings"`
}

// Dataset is the immutable in-memory form of the source record set. Built
// once at startup; read-only afterwards.
type Dataset struct {
	Records   []models.InspectionRecord
	Hierarchy *Hierarchy
	Summary   Summary
}

// Load reads and structures the raw record file. Any read or parse failure
// is fatal to startup; there is no partial-load recovery.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var records []models.InspectionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	ds := Build(records)

	logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("records", len(ds.Records)),
		zap.Int("plants", ds.Summary.TotalPlants),
		zap.Int("sections", ds.Summary.TotalSections),
		zap.Int("items", ds.Summary.TotalItems),
	)

	return ds, nil
}

// Build structures an already-decoded record slice. Exposed for tests and
// callers that source records elsewhere.
func Build(records []models.InspectionRecord) *Dataset {
	h := buildHierarchy(records)
	return &Dataset{
		Records:   records,
		Hierarchy: h,
		Summary:   summarize(h),
	}
}

func summarize(h *Hierarchy) Summary {
	s := Summary{TotalPlants: len(h.Plants)}
	for _, plant := range h.Plants {
		s.TotalSections += len(plant.Sections)
		for _, section := range plant.Sections {
			s.TotalItems += len(section.Items)
			for _, item := range section.Items {
				s.TotalReadings += len(item.Readings)
			}
		}
	}
	return s
}

// EntityRef is a (id, label) pair used for listings and suggestions.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AllPlants lists plants in first-seen order.
func (d *Dataset) AllPlants() []EntityRef {
	refs := make([]EntityRef, 0, len(d.Hierarchy.PlantOrder))
	for _, id := range d.Hierarchy.PlantOrder {
		refs = append(refs, EntityRef{ID: id, Name: d.Hierarchy.Plants[id].Name})
	}
	return refs
}

// SectionsForPlant lists a plant's sections in first-seen order. Unknown
// plant ids yield an empty list.
func (d *Dataset) SectionsForPlant(plantID string) []EntityRef {
	plant, ok := d.Hierarchy.Plants[plantID]
	if !ok {
		return nil
	}
	refs := make([]EntityRef, 0, len(plant.SectionOrder))
	for _, id := range plant.SectionOrder {
		refs = append(refs, EntityRef{ID: id, Name: plant.Sections[id].Name})
	}
	return refs
}

// ItemsForSection lists a section's items in first-seen order.
func (d *Dataset) ItemsForSection(plantID, sectionID string) []EntityRef {
	plant, ok := d.Hierarchy.Plants[plantID]
	if !ok {
		return nil
	}
	section, ok := plant.Sections[sectionID]
	if !ok {
		return nil
	}
	refs := make([]EntityRef, 0, len(section.ItemOrder))
	for _, code := range section.ItemOrder {
		refs = append(refs, EntityRef{ID: code, Name: section.Items[code].Description})
	}
	return refs
}

// LookupItem resolves the full (plant, section, item) triple, returning nils
// for whichever levels do not resolve.
func (d *Dataset) LookupItem(plantID, sectionID, itemCode string) (*Plant, *Section, *Item) {
	plant, ok := d.Hierarchy.Plants[plantID]
	if !ok {
		return nil, nil, nil
	}
	section, ok := plant.Sections[sectionID]
	if !ok {
		return plant, nil, nil
	}
	item, ok := section.Items[itemCode]
	if !ok {
		return plant, section, nil
	}
	return plant, section, item
}
