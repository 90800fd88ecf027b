// Package power fetches hourly point series from the NASA POWER API
// (https://power.larc.nasa.gov/docs/services/api/).
package power

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"solar-platform/internal/models"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// DefaultBaseURL is the hourly point endpoint
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/hourly/point"

// Query selects one point and an inclusive YYYYMMDD date range
type Query struct {
	Latitude  float64
	Longitude float64
	Start     string
	End       string
}

// Validate checks coordinate ranges and date formats
func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", q.Longitude)
	}
	for _, d := range []string{q.Start, q.End} {
		if _, err := time.Parse("20060102", d); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYYMMDD", d)
		}
	}
	return nil
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Community  string
	Parameters []string
	HTTPClient *http.Client
	Backoff    BackoffConfig
}

// Client calls the POWER API with retries and a circuit breaker
type Client struct {
	baseURL    string
	community  string
	parameters []string
	http       *http.Client
	backoff    BackoffConfig
	circuit    *gobreaker.CircuitBreaker
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewClient creates a client; zero option values take defaults
func NewClient(opts Options, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Community == "" {
		opts.Community = "RE"
	}
	if len(opts.Parameters) == 0 {
		opts.Parameters = models.MeasurementParameters
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff = BackoffConfig{MaxRetries: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: 10 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nasa-power",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL:    opts.BaseURL,
		community:  opts.Community,
		parameters: opts.Parameters,
		http:       opts.HTTPClient,
		backoff:    opts.Backoff,
		circuit:    cb,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// response is the subset of the GeoJSON payload we read
type response struct {
	Properties struct {
		Parameter map[string]map[string]interface{} `json:"parameter"`
	} `json:"properties"`
	Messages []string `json:"messages"`
}

// Fetch downloads the configured parameters for q and returns them keyed
// by parameter name then YYYYMMDDHH
func (c *Client) Fetch(ctx context.Context, q Query) (models.RawSeriesSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Info(ctx, "[POWER_FETCH_START] Fetching hourly series", logging.Fields{
		"latitude":  q.Latitude,
		"longitude": q.Longitude,
		"start":     q.Start,
		"end":       q.End,
		"stage":     "FETCH",
	})

	resp, err := doWithRetry(ctx, c.http, c.backoff, c.circuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrCircuitOpen) {
			outcome = "circuit_open"
		}
		c.metrics.RecordFetch(outcome, time.Since(start))
		return nil, fmt.Errorf("fetch power data: %w", err)
	}
	defer resp.Body.Close()

	var payload response
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		c.metrics.RecordFetch("decode_error", time.Since(start))
		return nil, fmt.Errorf("decode power response: %w", err)
	}

	if len(payload.Properties.Parameter) == 0 {
		c.metrics.RecordFetch("empty", time.Since(start))
		return nil, fmt.Errorf("power response has no parameter data: %s", strings.Join(payload.Messages, "; "))
	}

	raw := make(models.RawSeriesSet, len(payload.Properties.Parameter))
	for name, series := range payload.Properties.Parameter {
		raw[name] = series
	}

	duration := time.Since(start)
	c.metrics.RecordFetch("success", duration)
	c.logger.Info(ctx, "[POWER_FETCH_COMPLETE] Hourly series fetched", logging.Fields{
		"parameters":  len(raw),
		"hours":       len(raw[models.ParamIrradiance]),
		"duration_ms": duration.Milliseconds(),
		"stage":       "FETCH",
	})

	return raw, nil
}

func (c *Client) requestURL(q Query) string {
	values := url.Values{}
	values.Set("parameters", strings.Join(c.parameters, ","))
	values.Set("community", c.community)
	values.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	values.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	values.Set("start", q.Start)
	values.Set("end", q.End)
	values.Set("format", "JSON")
	return c.baseURL + "?" + values.Encode()
}
