package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"solar-platform/internal/app"
	"solar-platform/internal/config"
	"solar-platform/internal/datastore"
	"solar-platform/internal/modeling"
	"solar-platform/internal/models"
	"solar-platform/internal/reporting"
	"solar-platform/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lat := flag.Float64("lat", cfg.Location.Latitude, "Latitude of the cleaned file")
	lon := flag.Float64("lon", cfg.Location.Longitude, "Longitude of the cleaned file")
	start := flag.String("start", cfg.Location.StartDate, "Start date of the cleaned file (YYYYMMDD)")
	end := flag.String("end", cfg.Location.EndDate, "End date of the cleaned file (YYYYMMDD)")
	chartDir := flag.String("chart-dir", filepath.Join(cfg.Data.Dir, "charts"), "Directory for PNG charts; empty disables charts")
	decimals := flag.Int("decimals", 4, "Decimals in the printed summary")
	flag.Parse()

	deps, err := app.New(cfg, "solar-modeler", "solar_modeler")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	logger := deps.Logger
	ctx := logging.WithLocation(context.Background(), cfg.Location.Name)

	records, err := deps.Store.LoadCleaned(datastore.CleanedFileName(*lat, *lon, *start, *end))
	if err != nil {
		logger.Error(ctx, "[MODELER_ERROR] Cleaned data not found; run the ingester first", logging.Fields{
			"data_dir": cfg.Data.Dir,
		}, err)
		deps.Close()
		os.Exit(1)
	}

	var locationID *int64
	if deps.Repo != nil {
		if loc, err := deps.Repo.GetLocation(ctx, *lat, *lon); err == nil {
			locationID = &loc.ID
		}
	}

	report, err := deps.Modeling().Run(ctx, records, locationID)
	if err != nil {
		logger.Error(ctx, "[MODELER_ERROR] Modeling failed", logging.Fields{}, err)
		deps.Close()
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("SEASONAL MODELS  run %s\n", report.RunID)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Rows: %d input, %d selected, %d missing, %d zero irradiance\n\n",
		report.Selection.Input, report.Selection.Selected, report.Selection.DroppedMissing, report.Selection.DroppedZero)
	if err := reporting.WriteSummary(os.Stdout, report.Results, report.Failures, reporting.SummaryOptions{Decimals: *decimals}); err != nil {
		logger.Error(ctx, "[MODELER_ERROR] Failed to print summary", logging.Fields{}, err)
	}

	if *chartDir == "" {
		return
	}
	if err := writeCharts(*chartDir, report.Results, report.Features); err != nil {
		logger.Error(ctx, "[MODELER_CHART_ERROR] Failed to write charts", logging.Fields{
			"chart_dir": *chartDir,
		}, err)
		return
	}
	fmt.Printf("\nCharts written to %s\n", *chartDir)
}

func writeCharts(dir string, results map[models.Season]*modeling.SeasonResult, features []models.FeatureRecord) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	partitions := modeling.Partition(features)
	for _, season := range models.Seasons {
		result, ok := results[season]
		if !ok {
			continue
		}
		p, err := reporting.SeasonScatter(result, partitions[season])
		if err != nil {
			return err
		}
		if err := reporting.SaveChart(p, filepath.Join(dir, reporting.ScatterFileName(season))); err != nil {
			return err
		}
	}

	bar, err := reporting.SeasonalMeanBar(features)
	if err != nil {
		return err
	}
	return reporting.SaveChart(bar, filepath.Join(dir, "average_irradiance_by_season.png"))
}
