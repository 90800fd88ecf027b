package processing

import (
	"fmt"

	"solar-platform/internal/models"
)

// LabelSeasons attaches month and season code to every record
func LabelSeasons(records []models.CleanedRecord) ([]models.SeasonedRecord, error) {
	labeled := make([]models.SeasonedRecord, 0, len(records))

	for _, r := range records {
		month := int(r.Timestamp.Month())
		season, err := models.SeasonForMonth(month)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", r.Timestamp.Format("2006-01-02T15"), err)
		}

		labeled = append(labeled, models.SeasonedRecord{
			CleanedRecord: r,
			Month:         month,
			Season:        season,
		})
	}

	return labeled, nil
}
