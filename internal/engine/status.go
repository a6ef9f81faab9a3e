package engine

import (
	"fmt"

	"github.com/qcbot/backend/internal/storage/models"
)

// computeStatus classifies one record's readings against the spec limits.
// Count readings fail on any rejection; scalar readings fail when any value
// falls outside [lsl, usl]. Empty readings are "No Data", scalar readings
// with nothing parseable are "N/A".
func computeStatus(readings models.ReadingSet, lsl, usl float64) string {
	if readings.IsEmpty() {
		return "No Data"
	}

	if readings.Counts != nil {
		if readings.Counts.Rejected > 0 {
			return "FAIL"
		}
		return "PASS"
	}

	values := readings.NumericValues()
	if len(values) == 0 {
		return "N/A"
	}

	outOfSpec := 0
	for _, v := range values {
		if v < lsl || v > usl {
			outOfSpec++
		}
	}
	if outOfSpec > 0 {
		return fmt.Sprintf("FAIL (%d OOS)", outOfSpec)
	}
	return "PASS"
}
