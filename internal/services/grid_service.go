package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"solar-platform/internal/datastore"
	"solar-platform/internal/models"
	"solar-platform/internal/power"
	"solar-platform/internal/processing"
	"solar-platform/internal/reporting"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// GridService fetches and cleans series for a rectangular grid of points
type GridService struct {
	fetcher Fetcher
	store   *datastore.FileStore
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// GridRequest spans center ± area in both axes, stepping by Interval degrees
type GridRequest struct {
	CenterLatitude  float64
	CenterLongitude float64
	AreaLatitude    float64
	AreaLongitude   float64
	Interval        float64
	Start           string
	End             string
}

// GridPoint is one coordinate of the grid
type GridPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GridFailure records a point that could not be fetched or cleaned
type GridFailure struct {
	Point GridPoint `json:"point"`
	Error string    `json:"error"`
}

// GridResult holds the cleaned series of every successful point
type GridResult struct {
	Series   []reporting.HeatmapSeries `json:"-"`
	Failures []GridFailure             `json:"failures"`
	Duration time.Duration             `json:"duration"`
}

// Frames pivots the collected series into heatmap frames
func (r *GridResult) Frames() []reporting.HeatmapFrame {
	return reporting.BuildFrames(r.Series)
}

// NewGridService creates a new grid service
func NewGridService(fetcher Fetcher, store *datastore.FileStore, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *GridService {
	return &GridService{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GridPoints lists the grid in latitude-major order. Both ends of each axis are included.
func GridPoints(req GridRequest) ([]GridPoint, error) {
	if req.Interval <= 0 {
		return nil, fmt.Errorf("grid interval must be positive: %v", req.Interval)
	}
	if req.AreaLatitude < 0 || req.AreaLongitude < 0 {
		return nil, fmt.Errorf("grid area must not be negative")
	}

	lats := axis(req.CenterLatitude, req.AreaLatitude, req.Interval)
	lons := axis(req.CenterLongitude, req.AreaLongitude, req.Interval)

	points := make([]GridPoint, 0, len(lats)*len(lons))
	for _, lat := range lats {
		if lat < -90 || lat > 90 {
			continue
		}
		for _, lon := range lons {
			if lon < -180 || lon > 180 {
				continue
			}
			points = append(points, GridPoint{Latitude: lat, Longitude: lon})
		}
	}
	return points, nil
}

// axis steps from center-area to center+area, tolerating float drift at the far end
func axis(center, area, interval float64) []float64 {
	steps := int(math.Floor(2*area/interval+1e-9)) + 1
	values := make([]float64, steps)
	for i := range values {
		values[i] = round6(center - area + float64(i)*interval)
	}
	return values
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Collect fetches every grid point in turn. A failing point is logged and
// skipped; only cancellation stops the sweep.
func (s *GridService) Collect(ctx context.Context, req GridRequest) (*GridResult, error) {
	points, err := GridPoints(req)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	s.logger.Info(ctx, "[GRID_START] Fetching grid", logging.Fields{
		"points":   len(points),
		"interval": req.Interval,
		"start":    req.Start,
		"end":      req.End,
		"stage":    "INITIALIZATION",
	})

	result := &GridResult{}
	for _, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := s.collectPoint(ctx, pt, req)
		if err != nil {
			result.Failures = append(result.Failures, GridFailure{Point: pt, Error: err.Error()})
			s.logger.Error(ctx, "[GRID_POINT_ERROR] Point skipped", logging.Fields{
				"latitude":  pt.Latitude,
				"longitude": pt.Longitude,
				"stage":     "GRID_POINT",
			}, err)
			continue
		}
		result.Series = append(result.Series, *series)
	}

	result.Duration = time.Since(startTime)
	s.logger.Info(ctx, "[GRID_COMPLETE] Grid fetched", logging.Fields{
		"points":      len(points),
		"succeeded":   len(result.Series),
		"failed":      len(result.Failures),
		"duration_ms": result.Duration.Milliseconds(),
		"stage":       "COMPLETE",
	})

	return result, nil
}

func (s *GridService) collectPoint(ctx context.Context, pt GridPoint, req GridRequest) (*reporting.HeatmapSeries, error) {
	raw, err := s.fetcher.Fetch(ctx, power.Query{
		Latitude:  pt.Latitude,
		Longitude: pt.Longitude,
		Start:     req.Start,
		End:       req.End,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.SaveRaw(datastore.RawFileName(pt.Latitude, pt.Longitude, req.Start, req.End), raw); err != nil {
		return nil, err
	}

	records, err := processing.Clean(raw)
	if err != nil {
		var integrity *models.DataIntegrityError
		if errors.As(err, &integrity) {
			s.metrics.RecordIntegrityError(string(integrity.Kind))
		}
		return nil, err
	}

	s.logger.Debug(ctx, "[GRID_POINT] Point cleaned", logging.Fields{
		"latitude":  pt.Latitude,
		"longitude": pt.Longitude,
		"records":   len(records),
	})

	return &reporting.HeatmapSeries{
		Latitude:  pt.Latitude,
		Longitude: pt.Longitude,
		Records:   records,
	}, nil
}
