package engine

import (
	"fmt"

	"github.com/qcbot/backend/internal/dataset"
	"github.com/qcbot/backend/internal/storage/models"
)

// firstNumeric reduces a reading set to one plottable value: the accepted
// count for structured readings, the first parseable scalar otherwise.
func firstNumeric(rs models.ReadingSet) (float64, bool) {
	if rs.Counts != nil {
		return float64(rs.Counts.Accepted), true
	}
	values := rs.NumericValues()
	if len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// readingTrendChart plots the up-to-10 most recent readings for an item.
func readingTrendChart(item *dataset.Item) *ChartSpec {
	readings := item.Readings
	if len(readings) > 10 {
		readings = readings[len(readings)-10:]
	}

	labels := make([]string, 0, len(readings))
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		v, ok := firstNumeric(r.Readings)
		if !ok {
			continue
		}
		labels = append(labels, fmt.Sprintf("Reading %d", len(values)+1))
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil
	}

	return &ChartSpec{
		Type:  "line",
		Title: fmt.Sprintf("Quality Trend for %s", item.Description),
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "Inspection Values",
				Data:            values,
				BorderColor:     "#36A2EB",
				BackgroundColor: "rgba(54, 162, 235, 0.2)",
				Tension:         0.4,
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: &ChartLegend{Display: true},
				Title:  &ChartTitle{Display: true, Text: "Quality Trend"},
			},
		},
	}
}

// poTimelineChart plots every numeric reading of a PO's records against the
// record creation date.
func poTimelineChart(records []*models.InspectionRecord) *ChartSpec {
	var labels []string
	var values []float64

	for _, record := range records {
		date := record.CreatedAt
		if len(date) > 10 {
			date = date[:10]
		}
		if record.Readings.Counts != nil {
			labels = append(labels, date)
			values = append(values, float64(record.Readings.Counts.Accepted))
			continue
		}
		for _, v := range record.Readings.NumericValues() {
			labels = append(labels, date)
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	return &ChartSpec{
		Type:  "line",
		Title: "Inspection Readings Over Time",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "Readings",
				Data:            values,
				BorderColor:     "#3b82f6",
				BackgroundColor: "rgba(59, 130, 246, 0.1)",
				Tension:         0.4,
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: &ChartLegend{Display: true},
				Title:  &ChartTitle{Display: true, Text: "Quality Readings Timeline"},
			},
		},
	}
}

// sectionOverviewChart is the items-per-section bar chart shown at PLANT
// level.
func sectionOverviewChart(plant *dataset.Plant) *ChartSpec {
	var labels []string
	var counts []float64

	for i, sectionID := range plant.SectionOrder {
		if i == 8 {
			break
		}
		section := plant.Sections[sectionID]
		name := section.Name
		if len(name) > 20 {
			name = name[:20]
		}
		labels = append(labels, name)
		counts = append(counts, float64(len(section.Items)))
	}
	if len(labels) == 0 {
		return nil
	}

	return &ChartSpec{
		Type:  "bar",
		Title: fmt.Sprintf("Sections at %s", plant.Name),
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "Items per Section",
				Data:            counts,
				BackgroundColor: "#FF6384",
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Legend: &ChartLegend{Display: true, Position: "top"},
				Title:  &ChartTitle{Display: true, Text: "Items per Section"},
			},
		},
	}
}

// parameterAnalysisChart plots the scalar readings of the first ten records,
// labeled by parameter name.
func parameterAnalysisChart(records []models.InspectionRecord) *ChartSpec {
	var labels []string
	var values []float64

	limit := len(records)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		record := &records[i]
		param := ""
		if record.Schedule != nil && record.Schedule.Parameter != nil {
			param = record.Schedule.Parameter.Name
		}
		if len(param) > 20 {
			param = param[:20]
		}
		for _, v := range record.Readings.NumericValues() {
			labels = append(labels, param)
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	return &ChartSpec{
		Type:  "bar",
		Title: "Parameter Readings Analysis",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "Readings",
				Data:            values,
				BackgroundColor: "#10b981",
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Title: &ChartTitle{Display: true, Text: "Quality Parameter Analysis"},
			},
		},
	}
}

// allScalarReadings collects every parseable scalar reading across the
// record set. Structured accepted/rejected readings are excluded.
func allScalarReadings(records []models.InspectionRecord) []float64 {
	var values []float64
	for i := range records {
		if records[i].Readings.Counts != nil {
			continue
		}
		values = append(values, records[i].Readings.NumericValues()...)
	}
	return values
}

// distributionHistogram bins all scalar readings into 10 equal-width bins.
// Bins are half-open except the last, which includes the maximum so every
// reading lands in exactly one bin.
func distributionHistogram(records []models.InspectionRecord) *ChartSpec {
	values := allScalarReadings(records)
	if len(values) == 0 {
		return nil
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	const bins = 10
	binWidth := (maxVal - minVal) / bins

	labels := make([]string, bins)
	counts := make([]float64, bins)
	for i := 0; i < bins; i++ {
		start := minVal + float64(i)*binWidth
		labels[i] = fmt.Sprintf("%.1f-%.1f", start, start+binWidth)
	}
	for _, v := range values {
		bin := bins - 1
		if binWidth > 0 {
			bin = int((v - minVal) / binWidth)
			if bin >= bins {
				bin = bins - 1
			}
		}
		counts[bin]++
	}

	return &ChartSpec{
		Type:  "bar",
		Title: "Parameter Distribution",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "Frequency",
				Data:            counts,
				BackgroundColor: "#8b5cf6",
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins: ChartPlugins{
				Title: &ChartTitle{Display: true, Text: "Distribution Histogram"},
			},
		},
	}
}
