// Package app wires configuration into the shared dependencies of the commands.
package app

import (
	"context"
	"net/http"

	"solar-platform/internal/config"
	"solar-platform/internal/datastore"
	"solar-platform/internal/modeling"
	"solar-platform/internal/power"
	"solar-platform/internal/repository"
	"solar-platform/internal/services"
	"solar-platform/pkg/database"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// Version is reported in every log line
const Version = "1.0.0"

// Deps holds everything a command needs. DB and Repo are nil when the database is disabled.
type Deps struct {
	Config  *config.Config
	Logger  *logging.StructuredLogger
	Metrics *metrics.Collector
	DB      *database.PostgresDB
	Repo    repository.SolarRepository
	Store   *datastore.FileStore
	Power   *power.Client
}

// DatabaseConfig converts the DB_* settings
func DatabaseConfig(cfg config.DatabaseConfig) *database.Config {
	return &database.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

// PowerOptions converts the POWER_* settings
func PowerOptions(cfg config.PowerConfig) power.Options {
	return power.Options{
		BaseURL:    cfg.BaseURL,
		Community:  cfg.Community,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Backoff: power.BackoffConfig{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.InitialInterval,
			MaxInterval:     cfg.MaxInterval,
		},
	}
}

// New builds the logger, metrics, file store and POWER client, and connects
// to PostgreSQL when enabled. namespace prefixes every metric.
func New(cfg *config.Config, service, namespace string) (*Deps, error) {
	logger := logging.NewStructuredLogger(service, Version, logging.ParseLevel(cfg.Logging.Level))
	metricsCollector := metrics.NewCollector(namespace)

	deps := &Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: metricsCollector,
		Store:   datastore.NewFileStore(cfg.Data.Dir),
		Power:   power.NewClient(PowerOptions(cfg.Power), logger, metricsCollector),
	}

	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(DatabaseConfig(cfg.Database), logger, metricsCollector)
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.Repo = repository.NewSolarRepository(db, logger, metricsCollector)
	} else {
		logger.Warn(context.Background(), "[DB_DISABLED] Running without PostgreSQL; results are only written to files", logging.Fields{
			"data_dir": cfg.Data.Dir,
		})
	}

	return deps, nil
}

// Ingestion builds an IngestionService over the deps
func (d *Deps) Ingestion() *services.IngestionService {
	return services.NewIngestionService(d.Power, d.Store, d.Repo, d.Logger, d.Metrics)
}

// Modeling builds a ModelingService using the MODEL_* settings
func (d *Deps) Modeling() *services.ModelingService {
	runner := modeling.NewRunner(d.Config.Model.TestFraction, d.Config.Model.Seed)
	return services.NewModelingService(runner, d.Repo, d.Logger, d.Metrics)
}

// Pipeline builds a PipelineService
func (d *Deps) Pipeline() *services.PipelineService {
	return services.NewPipelineService(d.Ingestion(), d.Modeling(), d.Logger)
}

// Grid builds a GridService
func (d *Deps) Grid() *services.GridService {
	return services.NewGridService(d.Power, d.Store, d.Logger, d.Metrics)
}

// LocationRequest is the configured LOCATION_* point as an ingestion request
func (d *Deps) LocationRequest() services.IngestionRequest {
	loc := d.Config.Location
	return services.IngestionRequest{
		Name:      loc.Name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Start:     loc.StartDate,
		End:       loc.EndDate,
	}
}

// Close releases the database connection
func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
