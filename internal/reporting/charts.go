// Package reporting renders modeling results as charts, an animated
// heatmap page and a plain-text summary.
package reporting

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"solar-platform/internal/modeling"
	"solar-platform/internal/models"
)

const irradianceLabel = "Solar Irradiance (kW-hr/m^2)"

var skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}

// SeasonScatter plots temperature against irradiance for one season's rows and
// annotates the fitted model's test metrics and equation
func SeasonScatter(result *modeling.SeasonResult, rows []models.FeatureRecord) (*plot.Plot, error) {
	if result == nil || result.Model == nil {
		return nil, fmt.Errorf("no fitted model to plot")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("season %s has no rows to plot", result.Season)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Actual Solar Irradiance (%s) with the predicted linear regression equation", result.Season)
	p.X.Label.Text = "Temperature"
	p.Y.Label.Text = irradianceLabel
	p.Add(plotter.NewGrid())

	points := make(plotter.XYs, len(rows))
	minX, maxY := math.Inf(1), 0.0
	for i, row := range rows {
		points[i].X = row.Temperature
		points[i].Y = row.Irradiance
		minX = math.Min(minX, row.Temperature)
		maxY = math.Max(maxY, row.Irradiance)
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 128}
	p.Add(scatter)
	p.Legend.Add("Data Points", scatter)
	p.Legend.Top = true

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: minX, Y: maxY}},
		Labels: []string{Annotation(result)},
	})
	if err != nil {
		return nil, fmt.Errorf("build annotation: %w", err)
	}
	p.Add(labels)

	p.Y.Min = 0
	return p, nil
}

// Annotation is the metrics block drawn on a season scatter
func Annotation(result *modeling.SeasonResult) string {
	return fmt.Sprintf("R² = %.4f\nMAE = %.4f\nMSE = %.4f\n%s",
		result.Metrics.R2, result.Metrics.MAE, result.Metrics.MSE, result.Equation())
}

// SeasonalMeans returns mean irradiance per season in code order.
// Seasons without rows get 0.
func SeasonalMeans(rows []models.FeatureRecord) []float64 {
	partitions := modeling.Partition(rows)
	means := make([]float64, len(models.Seasons))
	for i, season := range models.Seasons {
		part := partitions[season]
		if len(part) == 0 {
			continue
		}
		values := make([]float64, len(part))
		for j, row := range part {
			values[j] = row.Irradiance
		}
		means[i] = stat.Mean(values, nil)
	}
	return means
}

// SeasonalMeanBar charts average irradiance by season. Zero-irradiance rows
// are already excluded, so this is the mean of daylight hours only.
func SeasonalMeanBar(rows []models.FeatureRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Average Solar Irradiance by Season"
	p.X.Label.Text = "Season"
	p.Y.Label.Text = "Average " + irradianceLabel
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(plotter.Values(SeasonalMeans(rows)), vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = skyBlue
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Legend.Add("Solar_Irradiance", bars)

	names := make([]string, len(models.Seasons))
	for i, season := range models.Seasons {
		names[i] = season.String()
	}
	p.NominalX(names...)
	p.Y.Min = 0

	return p, nil
}

// SaveChart writes p to path; the extension selects the format
func SaveChart(p *plot.Plot, path string) error {
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ScatterFileName names a season scatter chart
func ScatterFileName(season models.Season) string {
	return fmt.Sprintf("season_%d_%s_scatter.png", int(season), season)
}
