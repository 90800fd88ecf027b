package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"solar-platform/internal/app"
	"solar-platform/internal/config"
	"solar-platform/internal/services"
	"solar-platform/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	name := flag.String("name", cfg.Location.Name, "Location name stored with the observations")
	lat := flag.Float64("lat", cfg.Location.Latitude, "Latitude in degrees")
	lon := flag.Float64("lon", cfg.Location.Longitude, "Longitude in degrees")
	start := flag.String("start", cfg.Location.StartDate, "Start date (YYYYMMDD)")
	end := flag.String("end", cfg.Location.EndDate, "End date (YYYYMMDD)")
	rawFile := flag.String("raw-file", "", "Clean a saved raw JSON file instead of calling the API")
	flag.Parse()

	if err := config.ValidateDateRange(*start, *end); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid dates: %v\n", err)
		os.Exit(1)
	}

	deps, err := app.New(cfg, "solar-ingester", "solar_ingester")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	logger := deps.Logger
	ctx := logging.WithLocation(context.Background(), *name)

	req := services.IngestionRequest{Name: *name, Latitude: *lat, Longitude: *lon, Start: *start, End: *end}
	ingestion := deps.Ingestion()

	var result *services.IngestionResult
	if *rawFile != "" {
		result, err = ingestion.IngestRawFile(ctx, *rawFile, req)
	} else {
		result, err = ingestion.IngestLocation(ctx, req)
	}
	if err != nil {
		logger.Error(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{}, err)
		deps.Close()
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Location:      %s (%.5f, %.5f)\n", *name, *lat, *lon)
	fmt.Printf("Date range:    %s to %s\n", *start, *end)
	fmt.Printf("Records:       %d\n", result.RecordCount)
	fmt.Printf("Raw file:      %s\n", result.RawPath)
	fmt.Printf("Cleaned file:  %s\n", result.CleanedPath)
	fmt.Printf("Availability:  %s\n", result.Availability.Message())
	fmt.Printf("Duration:      %v\n", result.Duration)
	if result.LocationID != nil {
		fmt.Printf("Location ID:   %d\n", *result.LocationID)
	}
}
