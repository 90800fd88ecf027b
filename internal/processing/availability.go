package processing

import (
	"fmt"
	"time"

	"solar-platform/internal/models"
)

// AvailabilityReport describes missing irradiance and temperature values.
// Zenith angle is not checked.
type AvailabilityReport struct {
	HasGap             bool       `json:"has_gap"`
	FirstGap           *time.Time `json:"first_gap,omitempty"`
	MissingIrradiance  int        `json:"missing_irradiance"`
	MissingTemperature int        `json:"missing_temperature"`
}

// CheckAvailability finds the earliest timestamp at which irradiance or
// temperature is missing. It is advisory: records are never filtered.
func CheckAvailability(records []models.CleanedRecord) AvailabilityReport {
	var report AvailabilityReport

	for _, r := range records {
		missing := false
		if r.Irradiance == nil {
			report.MissingIrradiance++
			missing = true
		}
		if r.Temperature == nil {
			report.MissingTemperature++
			missing = true
		}
		if !missing {
			continue
		}

		if report.FirstGap == nil || r.Timestamp.Before(*report.FirstGap) {
			ts := r.Timestamp
			report.FirstGap = &ts
		}
		report.HasGap = true
	}

	return report
}

// Message renders the diagnostic line for the report
func (r AvailabilityReport) Message() string {
	if !r.HasGap {
		return "no missing data found"
	}
	return fmt.Sprintf("some data is unavailable starting from %s", r.FirstGap.Format(time.RFC3339))
}
