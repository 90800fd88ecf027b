package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"solar-platform/internal/modeling"
	"solar-platform/internal/models"
	"solar-platform/internal/processing"
	"solar-platform/internal/repository"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// ModelingService labels seasons, selects features and fits per-season regressions
type ModelingService struct {
	runner  *modeling.Runner
	repo    repository.SolarRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// ModelingReport is the outcome of one modeling run
type ModelingReport struct {
	RunID      string                                   `json:"run_id"`
	LocationID *int64                                   `json:"location_id,omitempty"`
	Selection  processing.SelectionStats                `json:"selection"`
	Features   []models.FeatureRecord                   `json:"-"`
	Results    map[models.Season]*modeling.SeasonResult `json:"results"`
	Failures   map[models.Season]error                  `json:"-"`
	Duration   time.Duration                            `json:"duration"`
}

// FailureMessages renders failed seasons for JSON responses
func (r *ModelingReport) FailureMessages() map[string]string {
	out := make(map[string]string, len(r.Failures))
	for season, err := range r.Failures {
		out[season.String()] = err.Error()
	}
	return out
}

// NewModelingService creates a new modeling service; repo may be nil
func NewModelingService(runner *modeling.Runner, repo repository.SolarRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ModelingService {
	return &ModelingService{
		runner:  runner,
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Run models cleaned records. Season failures are reported in the report,
// not returned as an error.
func (s *ModelingService) Run(ctx context.Context, records []models.CleanedRecord, locationID *int64) (*ModelingReport, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	s.logger.Info(ctx, "[MODEL_START] Starting seasonal modeling", logging.Fields{
		"records": len(records),
		"stage":   "INITIALIZATION",
	})

	timer := s.metrics.StageTimer("label_seasons")
	seasoned, err := processing.LabelSeasons(records)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("label seasons: %w", err)
	}

	timer = s.metrics.StageTimer("select_features")
	features, selection := processing.SelectFeatures(seasoned)
	timer.ObserveDuration()
	s.metrics.RecordFeatureSelection(selection.Selected, selection.DroppedMissing, selection.DroppedZero)

	s.logger.Info(ctx, "[MODEL_FEATURES] Feature rows selected", logging.Fields{
		"input":           selection.Input,
		"selected":        selection.Selected,
		"dropped_missing": selection.DroppedMissing,
		"dropped_zero":    selection.DroppedZero,
		"stage":           "FEATURES",
	})

	timer = s.metrics.StageTimer("regression")
	results, failures := s.runner.RunBySeason(features)
	timer.ObserveDuration()

	for _, season := range models.Seasons {
		if result, ok := results[season]; ok {
			s.metrics.RecordSeasonModel(season.String(), result.Metrics.R2, result.Metrics.MAE, result.Metrics.MSE)
			s.logger.Info(ctx, "[MODEL_SEASON] Season model fitted", logging.Fields{
				"season":   season.String(),
				"records":  result.Records,
				"r2":       result.Metrics.R2,
				"mae":      result.Metrics.MAE,
				"mse":      result.Metrics.MSE,
				"equation": result.Equation(),
				"stage":    "REGRESSION",
			})
		}
		if err, ok := failures[season]; ok {
			s.metrics.RecordSeasonFailure(season.String())
			s.logger.Warn(ctx, "[MODEL_SEASON_SKIPPED] Season could not be modeled", logging.Fields{
				"season": season.String(),
				"reason": err.Error(),
				"stage":  "REGRESSION",
			})
		}
	}

	report := &ModelingReport{
		RunID:      runID,
		LocationID: locationID,
		Selection:  selection,
		Features:   features,
		Results:    results,
		Failures:   failures,
	}

	if s.repo != nil && len(results) > 0 {
		if err := s.repo.CreateModelRuns(ctx, ModelRuns(runID, locationID, results)); err != nil {
			return nil, fmt.Errorf("store model runs: %w", err)
		}
	}

	report.Duration = time.Since(startTime)
	s.logger.Info(ctx, "[MODEL_COMPLETE] Seasonal modeling completed", logging.Fields{
		"seasons_fitted": len(results),
		"seasons_failed": len(failures),
		"duration_ms":    report.Duration.Milliseconds(),
		"stage":          "COMPLETE",
	})

	return report, nil
}

// ModelRuns converts season results into rows, in season code order
func ModelRuns(runID string, locationID *int64, results map[models.Season]*modeling.SeasonResult) []*models.ModelRun {
	runs := make([]*models.ModelRun, 0, len(results))
	for _, season := range models.Seasons {
		result, ok := results[season]
		if !ok {
			continue
		}
		runs = append(runs, &models.ModelRun{
			RunID:           runID,
			LocationID:      locationID,
			Season:          season,
			Intercept:       result.Model.Intercept,
			TemperatureCoef: result.Model.Coefficients[modeling.ColTemperature],
			ZenithAngleCoef: result.Model.Coefficients[modeling.ColZenithAngle],
			R2:              result.Metrics.R2,
			MAE:             result.Metrics.MAE,
			MSE:             result.Metrics.MSE,
			TrainR2:         result.Metrics.TrainR2,
			TrainSize:       len(result.Split.Train),
			TestSize:        len(result.Split.Test),
		})
	}
	return runs
}
