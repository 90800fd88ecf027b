package reporting

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-platform/internal/modeling"
	"solar-platform/internal/models"
)

func featureRows(season models.Season, n int, month time.Month) []models.FeatureRecord {
	rows := make([]models.FeatureRecord, n)
	for i := range rows {
		temp := 5 + float64(i%11)
		zenith := 20 + float64((i*7)%60)
		rows[i] = models.FeatureRecord{
			Timestamp:   time.Date(2023, month, 1+i%28, i%24, 0, 0, 0, time.UTC),
			Temperature: temp,
			ZenithAngle: zenith,
			Irradiance:  2 + 0.1*temp - 0.02*zenith,
			Season:      season,
		}
	}
	return rows
}

func fitted(t *testing.T) (map[models.Season]*modeling.SeasonResult, map[models.Season]error, []models.FeatureRecord) {
	t.Helper()
	rows := append(featureRows(models.Winter, 30, time.January), featureRows(models.Summer, 2, time.July)...)
	results, failures := modeling.NewRunner(0.2, 4).RunBySeason(rows)
	require.Contains(t, results, models.Winter)
	require.Contains(t, failures, models.Summer)
	return results, failures, rows
}

func TestSeasonScatter(t *testing.T) {
	results, _, rows := fitted(t)
	winter := modeling.Partition(rows)[models.Winter]

	p, err := SeasonScatter(results[models.Winter], winter)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Contains(t, p.Title.Text, "Winter")

	path := filepath.Join(t.TempDir(), ScatterFileName(models.Winter))
	require.NoError(t, SaveChart(p, path))
	assert.FileExists(t, path)

	_, err = SeasonScatter(nil, winter)
	assert.Error(t, err)
	_, err = SeasonScatter(results[models.Winter], nil)
	assert.Error(t, err)
}

func TestAnnotation(t *testing.T) {
	result := &modeling.SeasonResult{
		Model:   &modeling.Model{Intercept: 2, Coefficients: []float64{0.1, -0.02}},
		Metrics: modeling.Metrics{R2: 0.9876, MAE: 0.01, MSE: 0.0002},
	}

	text := Annotation(result)
	assert.Equal(t, "R² = 0.9876\nMAE = 0.0100\nMSE = 0.0002\n"+
		"y = 0.1000 * Temperature + -0.0200 * Solar Zenith Angle + 2.0000", text)
}

func TestSeasonalMeans(t *testing.T) {
	rows := []models.FeatureRecord{
		{Season: models.Winter, Irradiance: 0.2},
		{Season: models.Winter, Irradiance: 0.4},
		{Season: models.Summer, Irradiance: 0.9},
	}

	means := SeasonalMeans(rows)
	require.Len(t, means, 4)
	assert.InDelta(t, 0.3, means[0], 1e-12)
	assert.Equal(t, 0.0, means[1])
	assert.InDelta(t, 0.9, means[2], 1e-12)
	assert.Equal(t, 0.0, means[3])

	p, err := SeasonalMeanBar(rows)
	require.NoError(t, err)
	assert.Equal(t, "Average Solar Irradiance by Season", p.Title.Text)
	require.NoError(t, SaveChart(p, filepath.Join(t.TempDir(), "seasonal_mean.png")))
}

func TestBuildFrames(t *testing.T) {
	h0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	h1 := h0.Add(time.Hour)

	frames := BuildFrames([]HeatmapSeries{
		{Latitude: 51.0, Longitude: 0.0, Records: []models.CleanedRecord{
			{Timestamp: h1, Irradiance: models.Float(0.5)},
			{Timestamp: h0, Irradiance: models.Float(0.4)},
		}},
		{Latitude: 51.5, Longitude: 0.5, Records: []models.CleanedRecord{
			{Timestamp: h0, Irradiance: nil},
			{Timestamp: h1, Irradiance: models.Float(0.7)},
		}},
	})

	require.Len(t, frames, 2)
	assert.True(t, frames[0].Time.Equal(h0))
	assert.Equal(t, [][3]float64{{51.0, 0.0, 0.4}}, frames[0].Points)
	assert.Len(t, frames[1].Points, 2)
}

func TestRenderHeatmap(t *testing.T) {
	frames := []HeatmapFrame{
		{Time: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), Points: [][3]float64{{51.5, -0.1, 0.8}}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderHeatmap(&buf, HeatmapPage{CenterLatitude: 51.5, CenterLongitude: -0.1, Frames: frames}))

	html := buf.String()
	assert.Contains(t, html, "<title>Solar Irradiance Heatmap</title>")
	assert.Contains(t, html, "L.heatLayer")
	assert.Contains(t, html, "[51.5,-0.1,0.8]")
	assert.Contains(t, html, "2024-06-01 12:00")

	assert.Error(t, RenderHeatmap(&buf, HeatmapPage{}))
}

func TestWriteSummary(t *testing.T) {
	results, failures, _ := fitted(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, results, failures, SummaryOptions{Decimals: 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "SEASON"))
	assert.True(t, strings.HasPrefix(lines[1], "Winter"))
	assert.Contains(t, lines[1], "1.00")
	assert.Contains(t, lines[2], "no data")
	assert.Contains(t, lines[3], "skipped")
	assert.Contains(t, lines[4], "no data")
}
