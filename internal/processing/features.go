package processing

import (
	"solar-platform/internal/models"
)

// SelectionStats counts why rows were left out of the feature set
type SelectionStats struct {
	Input          int `json:"input"`
	Selected       int `json:"selected"`
	DroppedMissing int `json:"dropped_missing"`
	DroppedZero    int `json:"dropped_zero"`
}

// SelectFeatures keeps rows with irradiance, zenith angle, temperature and
// season all present, then drops rows whose irradiance is exactly zero.
// Zero irradiance (night) is counted separately from missing data.
func SelectFeatures(records []models.SeasonedRecord) ([]models.FeatureRecord, SelectionStats) {
	stats := SelectionStats{Input: len(records)}
	features := make([]models.FeatureRecord, 0, len(records))

	for _, r := range records {
		if r.Irradiance == nil || r.ZenithAngle == nil || r.Temperature == nil || !r.Season.Valid() {
			stats.DroppedMissing++
			continue
		}
		if *r.Irradiance == 0 {
			stats.DroppedZero++
			continue
		}

		features = append(features, models.FeatureRecord{
			Timestamp:   r.Timestamp,
			Irradiance:  *r.Irradiance,
			ZenithAngle: *r.ZenithAngle,
			Temperature: *r.Temperature,
			Season:      r.Season,
		})
	}

	stats.Selected = len(features)
	return features, stats
}
