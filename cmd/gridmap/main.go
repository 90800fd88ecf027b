package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"solar-platform/internal/app"
	"solar-platform/internal/config"
	"solar-platform/internal/reporting"
	"solar-platform/internal/services"
	"solar-platform/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lat := flag.Float64("lat", cfg.Location.Latitude, "Grid centre latitude")
	lon := flag.Float64("lon", cfg.Location.Longitude, "Grid centre longitude")
	start := flag.String("start", cfg.Location.StartDate, "Start date (YYYYMMDD)")
	end := flag.String("end", cfg.Location.EndDate, "End date (YYYYMMDD)")
	areaLat := flag.Float64("area-lat", cfg.Grid.AreaLatitude, "Degrees of latitude either side of the centre")
	areaLon := flag.Float64("area-lon", cfg.Grid.AreaLongitude, "Degrees of longitude either side of the centre")
	interval := flag.Float64("interval", cfg.Grid.Interval, "Grid step in degrees")
	flag.Parse()

	if err := config.ValidateDateRange(*start, *end); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid dates: %v\n", err)
		os.Exit(1)
	}

	deps, err := app.New(cfg, "solar-gridmap", "solar_gridmap")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	logger := deps.Logger
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := deps.Grid().Collect(ctx, services.GridRequest{
		CenterLatitude:  *lat,
		CenterLongitude: *lon,
		AreaLatitude:    *areaLat,
		AreaLongitude:   *areaLon,
		Interval:        *interval,
		Start:           *start,
		End:             *end,
	})
	if err != nil {
		logger.Error(ctx, "[GRIDMAP_ERROR] Grid collection failed", logging.Fields{}, err)
		deps.Close()
		os.Exit(1)
	}

	frames := result.Frames()
	path := deps.Store.Path(reporting.HeatmapFileName)
	if err := writeHeatmap(path, reporting.HeatmapPage{
		CenterLatitude:  *lat,
		CenterLongitude: *lon,
		Frames:          frames,
	}); err != nil {
		logger.Error(ctx, "[GRIDMAP_ERROR] Failed to render heatmap", logging.Fields{
			"points_ok":     len(result.Series),
			"points_failed": len(result.Failures),
		}, err)
		deps.Close()
		os.Exit(1)
	}

	logger.Info(ctx, "[GRIDMAP_COMPLETE] Heatmap written", logging.Fields{
		"path":          path,
		"frames":        len(frames),
		"points_ok":     len(result.Series),
		"points_failed": len(result.Failures),
	})
	fmt.Printf("Heatmap with %d frames from %d points written to %s\n", len(frames), len(result.Series), path)
	for _, f := range result.Failures {
		fmt.Printf("  skipped (%.2f, %.2f): %s\n", f.Point.Latitude, f.Point.Longitude, f.Error)
	}
}

func writeHeatmap(path string, page reporting.HeatmapPage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reporting.RenderHeatmap(f, page); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
