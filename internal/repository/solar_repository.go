package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"solar-platform/internal/models"
	"solar-platform/pkg/database"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// SolarRepository provides data access for locations, cleaned observations and model runs
type SolarRepository interface {
	// Location operations
	UpsertLocation(ctx context.Context, loc *models.Location) error
	GetLocation(ctx context.Context, latitude, longitude float64) (*models.Location, error)

	// Observation operations
	CreateObservationsBatch(ctx context.Context, locationID int64, records []models.CleanedRecord) error
	GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.HourlyObservation, int, error)

	// Model run operations
	CreateModelRuns(ctx context.Context, runs []*models.ModelRun) error
	GetModelRuns(ctx context.Context, filter ModelRunFilter) ([]*models.ModelRun, error)

	HealthCheck(ctx context.Context) error
}

// ObservationFilter defines filters for querying observations
type ObservationFilter struct {
	LocationID *int64
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}

// ModelRunFilter defines filters for querying model runs
type ModelRunFilter struct {
	LocationID *int64
	Season     *models.Season
	RunID      *string
	Limit      int
}

// solarRepository implements SolarRepository
type solarRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSolarRepository creates a new repository backed by PostgreSQL
func NewSolarRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SolarRepository {
	return &solarRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UpsertLocation inserts the location or refreshes its name, filling loc.ID
func (r *solarRepository) UpsertLocation(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (name, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (latitude, longitude) DO UPDATE SET
			name = CASE WHEN EXCLUDED.name = '' THEN locations.name ELSE EXCLUDED.name END
		RETURNING id, created_at
	`

	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, "upsert_location", query,
		loc.Name,
		loc.Latitude,
		loc.Longitude,
		loc.CreatedAt,
	).Scan(&loc.ID, &loc.CreatedAt)
	if err != nil {
		r.metrics.RecordDBError("upsert_location")
		return fmt.Errorf("failed to upsert location: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_LOCATION] Location stored", logging.Fields{
		"location_id": loc.ID,
		"latitude":    loc.Latitude,
		"longitude":   loc.Longitude,
	})
	return nil
}

// GetLocation finds a location by its exact coordinates
func (r *solarRepository) GetLocation(ctx context.Context, latitude, longitude float64) (*models.Location, error) {
	query := `
		SELECT id, name, latitude, longitude, created_at
		FROM locations
		WHERE latitude = $1 AND longitude = $2
	`

	var loc models.Location
	err := r.db.GetContext(ctx, "get_location", &loc, query, latitude, longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Resource: "location",
			ID:       fmt.Sprintf("%g,%g", latitude, longitude),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &loc, nil
}

const insertObservation = `
	INSERT INTO hourly_observations (
		location_id, observed_at, irradiance, temperature, zenith_angle, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (location_id, observed_at) DO UPDATE SET
		irradiance = EXCLUDED.irradiance,
		temperature = EXCLUDED.temperature,
		zenith_angle = EXCLUDED.zenith_angle
`

// CreateObservationsBatch upserts cleaned records for one location in a single transaction
func (r *solarRepository) CreateObservationsBatch(ctx context.Context, locationID int64, records []models.CleanedRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		r.metrics.DBBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"location_id": locationID,
			"count":       len(records),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertObservation)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			locationID,
			rec.Timestamp,
			rec.Irradiance,
			rec.Temperature,
			rec.ZenithAngle,
			now,
		)
		if err != nil {
			r.metrics.RecordDBError("batch_insert")
			return fmt.Errorf("failed to insert observation %s: %w", rec.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetObservations retrieves observations with filtering and pagination
func (r *solarRepository) GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.HourlyObservation, int, error) {
	where, args := observationWhere(filter)

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM hourly_observations" + where
	if err := r.db.GetContext(ctx, "count_observations", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count observations: %w", err)
	}

	query := `
		SELECT id, location_id, observed_at, irradiance, temperature, zenith_angle, created_at
		FROM hourly_observations` + where +
		" ORDER BY observed_at, location_id" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var observations []*models.HourlyObservation
	if err := r.db.SelectContext(ctx, "get_observations", &observations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get observations: %w", err)
	}

	return observations, totalCount, nil
}

// CreateModelRuns stores the per-season results of one pipeline run
func (r *solarRepository) CreateModelRuns(ctx context.Context, runs []*models.ModelRun) error {
	if len(runs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO model_runs (
			run_id, location_id, season,
			intercept, temperature_coef, zenith_angle_coef,
			r2, mae, mse, train_r2, train_size, test_size, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	for _, run := range runs {
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}
		err := tx.QueryRowContext(ctx, query,
			run.RunID,
			run.LocationID,
			int(run.Season),
			run.Intercept,
			run.TemperatureCoef,
			run.ZenithAngleCoef,
			run.R2,
			run.MAE,
			run.MSE,
			run.TrainR2,
			run.TrainSize,
			run.TestSize,
			run.CreatedAt,
		).Scan(&run.ID)
		if err != nil {
			r.metrics.RecordDBError("insert_model_run")
			return fmt.Errorf("failed to insert model run for %s: %w", run.Season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_MODEL_RUNS] Model runs stored", logging.Fields{
		"run_id": runs[0].RunID,
		"count":  len(runs),
	})
	return nil
}

// GetModelRuns lists model runs, newest first
func (r *solarRepository) GetModelRuns(ctx context.Context, filter ModelRunFilter) ([]*models.ModelRun, error) {
	query, args := modelRunQuery(filter)

	var runs []*models.ModelRun
	if err := r.db.SelectContext(ctx, "get_model_runs", &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get model runs: %w", err)
	}
	return runs, nil
}

// HealthCheck performs a repository health check
func (r *solarRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// observationWhere renders the WHERE clause for an ObservationFilter with $n placeholders
func observationWhere(filter ObservationFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		conds = append(conds, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		conds = append(conds, fmt.Sprintf("observed_at >= $%d", len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		conds = append(conds, fmt.Sprintf("observed_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func modelRunQuery(filter ModelRunFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		conds = append(conds, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if filter.Season != nil {
		args = append(args, int(*filter.Season))
		conds = append(conds, fmt.Sprintf("season = $%d", len(args)))
	}
	if filter.RunID != nil {
		args = append(args, *filter.RunID)
		conds = append(conds, fmt.Sprintf("run_id = $%d", len(args)))
	}

	query := `SELECT id, run_id, location_id, season, intercept, temperature_coef, zenith_angle_coef,
		r2, mae, mse, train_r2, train_size, test_size, created_at
		FROM model_runs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, season"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	return query, args
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
