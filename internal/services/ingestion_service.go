package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solar-platform/internal/datastore"
	"solar-platform/internal/models"
	"solar-platform/internal/power"
	"solar-platform/internal/processing"
	"solar-platform/internal/repository"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// Fetcher returns the raw hourly series for one point
type Fetcher interface {
	Fetch(ctx context.Context, q power.Query) (models.RawSeriesSet, error)
}

// IngestionService fetches, cleans and stores series for a location
type IngestionService struct {
	fetcher Fetcher
	store   *datastore.FileStore
	repo    repository.SolarRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionRequest names a point and an inclusive YYYYMMDD date range
type IngestionRequest struct {
	Name      string
	Latitude  float64
	Longitude float64
	Start     string
	End       string
}

func (r IngestionRequest) query() power.Query {
	return power.Query{Latitude: r.Latitude, Longitude: r.Longitude, Start: r.Start, End: r.End}
}

// IngestionResult contains the cleaned records and where they were written
type IngestionResult struct {
	RawPath      string                        `json:"raw_path,omitempty"`
	CleanedPath  string                        `json:"cleaned_path"`
	Records      []models.CleanedRecord        `json:"-"`
	RecordCount  int                           `json:"record_count"`
	Availability processing.AvailabilityReport `json:"availability"`
	LocationID   *int64                        `json:"location_id,omitempty"`
	Duration     time.Duration                 `json:"duration"`
}

// NewIngestionService creates a new ingestion service. repo may be nil, in
// which case results are only written to the data directory.
func NewIngestionService(fetcher Fetcher, store *datastore.FileStore, repo repository.SolarRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		fetcher: fetcher,
		store:   store,
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestLocation fetches the series for req, saves the raw payload and runs
// the cleaning stage
func (s *IngestionService) IngestLocation(ctx context.Context, req IngestionRequest) (*IngestionResult, error) {
	if s.fetcher == nil {
		return nil, errors.New("ingestion service has no fetcher")
	}

	startTime := time.Now()
	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"location": req.Name,
		"start":    req.Start,
		"end":      req.End,
		"stage":    "INITIALIZATION",
	})

	raw, err := s.fetcher.Fetch(ctx, req.query())
	if err != nil {
		s.logger.Error(ctx, "[INGEST_FETCH_ERROR] Fetch failed", logging.Fields{
			"latitude":  req.Latitude,
			"longitude": req.Longitude,
			"stage":     "FETCH",
		}, err)
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	rawPath, err := s.store.SaveRaw(datastore.RawFileName(req.Latitude, req.Longitude, req.Start, req.End), raw)
	if err != nil {
		return nil, fmt.Errorf("save raw series: %w", err)
	}

	result, err := s.process(ctx, req, raw)
	if err != nil {
		return nil, err
	}
	result.RawPath = rawPath
	result.Duration = time.Since(startTime)

	s.logComplete(ctx, result)
	return result, nil
}

// IngestRawFile cleans a previously saved raw file instead of calling the API
func (s *IngestionService) IngestRawFile(ctx context.Context, path string, req IngestionRequest) (*IngestionResult, error) {
	startTime := time.Now()

	raw, err := datastore.LoadRawFile(path)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[INGEST_FILE] Loaded raw series", logging.Fields{
		"file_path":  path,
		"parameters": len(raw),
		"stage":      "LOAD",
	})

	result, err := s.process(ctx, req, raw)
	if err != nil {
		return nil, err
	}
	result.RawPath = path
	result.Duration = time.Since(startTime)

	s.logComplete(ctx, result)
	return result, nil
}

// process cleans raw, reports gaps, writes the cleaned file and persists to the database
func (s *IngestionService) process(ctx context.Context, req IngestionRequest, raw models.RawSeriesSet) (*IngestionResult, error) {
	timer := s.metrics.StageTimer("clean")
	records, err := processing.Clean(raw)
	timer.ObserveDuration()
	if err != nil {
		var integrity *models.DataIntegrityError
		if errors.As(err, &integrity) {
			s.metrics.RecordIntegrityError(string(integrity.Kind))
		}
		s.logger.Error(ctx, "[CLEAN_ERROR] Raw series rejected", logging.Fields{
			"stage": "CLEAN",
		}, err)
		return nil, err
	}

	report := processing.CheckAvailability(records)
	missingZenith := 0
	for _, rec := range records {
		if rec.ZenithAngle == nil {
			missingZenith++
		}
	}
	s.metrics.RecordCleaning(len(records), report.MissingIrradiance, report.MissingTemperature, missingZenith, report.HasGap)

	fields := logging.Fields{
		"records":             len(records),
		"missing_irradiance":  report.MissingIrradiance,
		"missing_temperature": report.MissingTemperature,
		"stage":               "AVAILABILITY",
	}
	if report.HasGap {
		s.logger.Warn(ctx, "[DATA_GAP] "+report.Message(), fields)
	} else {
		s.logger.Info(ctx, "[DATA_COMPLETE] "+report.Message(), fields)
	}

	cleanedPath, err := s.store.SaveCleaned(datastore.CleanedFileName(req.Latitude, req.Longitude, req.Start, req.End), records)
	if err != nil {
		return nil, fmt.Errorf("save cleaned records: %w", err)
	}

	result := &IngestionResult{
		CleanedPath:  cleanedPath,
		Records:      records,
		RecordCount:  len(records),
		Availability: report,
	}

	if s.repo != nil {
		locationID, err := s.persist(ctx, req, records)
		if err != nil {
			return nil, err
		}
		result.LocationID = &locationID
	}

	return result, nil
}

func (s *IngestionService) persist(ctx context.Context, req IngestionRequest, records []models.CleanedRecord) (int64, error) {
	loc := &models.Location{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.repo.UpsertLocation(ctx, loc); err != nil {
		return 0, fmt.Errorf("store location: %w", err)
	}
	if err := s.repo.CreateObservationsBatch(ctx, loc.ID, records); err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}
	return loc.ID, nil
}

func (s *IngestionService) logComplete(ctx context.Context, result *IngestionResult) {
	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"records":      result.RecordCount,
		"cleaned_path": result.CleanedPath,
		"has_gap":      result.Availability.HasGap,
		"duration_ms":  result.Duration.Milliseconds(),
		"stage":        "COMPLETE",
	})
}
