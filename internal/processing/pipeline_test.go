package processing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-platform/internal/models"
)

func TestCheckAvailability(t *testing.T) {
	t.Run("all present reports no gap", func(t *testing.T) {
		records := []models.CleanedRecord{
			{Timestamp: hour(1, 0), Irradiance: models.Float(1), Temperature: models.Float(2)},
			{Timestamp: hour(1, 1), Irradiance: models.Float(1), Temperature: models.Float(2)},
		}

		report := CheckAvailability(records)
		assert.False(t, report.HasGap)
		assert.Nil(t, report.FirstGap)
		assert.Equal(t, "no missing data found", report.Message())
	})

	t.Run("earliest gap across both columns", func(t *testing.T) {
		records := []models.CleanedRecord{
			{Timestamp: hour(1, 5), Irradiance: nil, Temperature: models.Float(2)},
			{Timestamp: hour(1, 3), Irradiance: models.Float(1), Temperature: nil},
			{Timestamp: hour(1, 1), Irradiance: models.Float(1), Temperature: models.Float(2)},
		}

		report := CheckAvailability(records)
		require.True(t, report.HasGap)
		assert.Equal(t, hour(1, 3), *report.FirstGap)
		assert.Equal(t, 1, report.MissingIrradiance)
		assert.Equal(t, 1, report.MissingTemperature)
		assert.Contains(t, report.Message(), "2023-06-01T03:00:00Z")
	})

	t.Run("zenith angle is not checked", func(t *testing.T) {
		records := []models.CleanedRecord{
			{Timestamp: hour(1, 0), Irradiance: models.Float(1), Temperature: models.Float(2), ZenithAngle: nil},
		}
		assert.False(t, CheckAvailability(records).HasGap)
	})

	t.Run("input is not filtered", func(t *testing.T) {
		records := []models.CleanedRecord{
			{Timestamp: hour(1, 0), Irradiance: nil, Temperature: nil},
		}
		CheckAvailability(records)
		assert.Len(t, records, 1)
	})
}

func TestLabelSeasons(t *testing.T) {
	tests := []struct {
		month time.Month
		want  models.Season
	}{
		{time.January, models.Winter},
		{time.February, models.Winter},
		{time.March, models.Spring},
		{time.May, models.Spring},
		{time.June, models.Summer},
		{time.July, models.Summer},
		{time.August, models.Summer},
		{time.September, models.Fall},
		{time.October, models.Fall},
		{time.November, models.Fall},
		{time.December, models.Winter},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			records := []models.CleanedRecord{{Timestamp: time.Date(2023, tt.month, 15, 12, 0, 0, 0, time.UTC)}}

			labeled, err := LabelSeasons(records)
			require.NoError(t, err)
			require.Len(t, labeled, 1)
			assert.Equal(t, int(tt.month), labeled[0].Month)
			assert.Equal(t, tt.want, labeled[0].Season)
		})
	}
}

func TestSelectFeatures(t *testing.T) {
	seasoned := []models.SeasonedRecord{
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 0), Irradiance: models.Float(0.5), Temperature: models.Float(15), ZenithAngle: models.Float(80)}, Month: 6, Season: models.Summer},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 1), Irradiance: models.Float(0), Temperature: models.Float(15), ZenithAngle: models.Float(80)}, Month: 6, Season: models.Summer},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 2), Irradiance: nil, Temperature: models.Float(15), ZenithAngle: models.Float(80)}, Month: 6, Season: models.Summer},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 3), Irradiance: models.Float(0.7), Temperature: nil, ZenithAngle: models.Float(80)}, Month: 6, Season: models.Summer},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 4), Irradiance: models.Float(0.7), Temperature: models.Float(15), ZenithAngle: nil}, Month: 6, Season: models.Summer},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 5), Irradiance: models.Float(0.7), Temperature: models.Float(15), ZenithAngle: models.Float(70)}, Month: 6, Season: models.SeasonUnknown},
		{CleanedRecord: models.CleanedRecord{Timestamp: hour(1, 6), Irradiance: models.Float(-0.1), Temperature: models.Float(16), ZenithAngle: models.Float(60)}, Month: 6, Season: models.Summer},
	}

	features, stats := SelectFeatures(seasoned)

	require.Len(t, features, 2)
	assert.Equal(t, hour(1, 0), features[0].Timestamp)
	assert.Equal(t, 0.5, features[0].Irradiance)
	assert.Equal(t, 80.0, features[0].ZenithAngle)
	assert.Equal(t, 15.0, features[0].Temperature)
	assert.Equal(t, models.Summer, features[0].Season)
	assert.Equal(t, hour(1, 6), features[1].Timestamp)

	for _, f := range features {
		assert.NotEqual(t, 0.0, f.Irradiance)
	}

	assert.Equal(t, SelectionStats{Input: 7, Selected: 2, DroppedMissing: 4, DroppedZero: 1}, stats)
}

func TestPipelineScenario(t *testing.T) {
	raw := models.RawSeriesSet{
		models.ParamIrradiance:  {"2023060100": 0.5, "2023060101": -999.0},
		models.ParamTemperature: {"2023060100": 15.0, "2023060101": 16.0},
		models.ParamZenithAngle: {"2023060100": 80.0, "2023060101": 82.0},
	}

	cleaned, err := Clean(raw)
	require.NoError(t, err)
	require.Len(t, cleaned, 2)
	assert.Nil(t, cleaned[1].Irradiance)

	report := CheckAvailability(cleaned)
	require.True(t, report.HasGap)
	assert.Equal(t, hour(1, 1), *report.FirstGap)

	seasoned, err := LabelSeasons(cleaned)
	require.NoError(t, err)
	for _, r := range seasoned {
		assert.Equal(t, models.Summer, r.Season)
	}

	features, _ := SelectFeatures(seasoned)
	require.Len(t, features, 1)
	assert.Equal(t, hour(1, 0), features[0].Timestamp)
	assert.Equal(t, 0.5, features[0].Irradiance)
}
