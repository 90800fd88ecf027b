package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"solar-platform/internal/app"
	"solar-platform/internal/config"
	"solar-platform/migrations"
	"solar-platform/pkg/database"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	script, err := migrations.Script(migrations.Schema, *direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("solar-migrate", app.Version, logging.ParseLevel(cfg.Logging.Level))
	db, err := database.NewPostgresDB(app.DatabaseConfig(cfg.Database), logger, metrics.NewCollector("solar_migrate"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Running migration: %s (%s)\n", migrations.Schema, *direction)
	if err := db.Migrate(context.Background(), migrations.Schema+"."+*direction, script); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		db.Close()
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}
