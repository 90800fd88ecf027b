package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Fetch Metrics
	FetchRequestsTotal *prometheus.CounterVec
	FetchDuration      prometheus.Histogram

	// Cleaning Metrics
	RecordsCleanedTotal prometheus.Counter
	MissingValuesTotal  *prometheus.CounterVec
	GapsDetectedTotal   prometheus.Counter
	IntegrityErrors     *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec

	// Feature / Model Metrics
	FeaturesSelected    prometheus.Counter
	FeaturesDropped     *prometheus.CounterVec
	SeasonModelR2       *prometheus.GaugeVec
	SeasonModelMAE      *prometheus.GaugeVec
	SeasonModelMSE      *prometheus.GaugeVec
	SeasonFailuresTotal *prometheus.CounterVec

	// Database Metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec
	DBBatchSize      prometheus.Histogram
}

// NewCollector creates a collector registered with the default registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace)
}

// NewCollectorWith creates a collector registered with reg
func NewCollectorWith(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "power_fetch_requests_total",
				Help:      "Total number of NASA POWER requests by outcome",
			},
			[]string{"outcome"},
		),

		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "power_fetch_duration_seconds",
				Help:      "Duration of NASA POWER requests including retries",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		RecordsCleanedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_cleaned_total",
				Help:      "Total number of merged hourly records produced by cleaning",
			},
		),

		MissingValuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "missing_values_total",
				Help:      "Missing measurement values found after cleaning by column",
			},
			[]string{"column"},
		),

		GapsDetectedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_gaps_total",
				Help:      "Number of cleaned datasets with at least one missing value",
			},
		),

		IntegrityErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrity_errors_total",
				Help:      "Cleaning passes aborted by data integrity errors by kind",
			},
			[]string{"kind"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),

		FeaturesSelected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "features_selected_total",
				Help:      "Rows kept by feature selection",
			},
		),

		FeaturesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "features_dropped_total",
				Help:      "Rows dropped by feature selection by reason",
			},
			[]string{"reason"},
		),

		SeasonModelR2: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "season_model_r2",
				Help:      "Test-set R squared of the latest model per season",
			},
			[]string{"season"},
		),

		SeasonModelMAE: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "season_model_mae",
				Help:      "Test-set mean absolute error of the latest model per season",
			},
			[]string{"season"},
		),

		SeasonModelMSE: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "season_model_mse",
				Help:      "Test-set mean squared error of the latest model per season",
			},
			[]string{"season"},
		),

		SeasonFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "season_failures_total",
				Help:      "Seasons skipped because they could not be modeled",
			},
			[]string{"season"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),

		DBBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_batch_size",
				Help:      "Number of hourly records per insert batch",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// StageTimer times one pipeline stage
func (c *Collector) StageTimer(stage string) *Timer {
	return c.NewTimer(c.StageDuration.WithLabelValues(stage))
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordFetch counts a provider request by outcome ("success", "error", "circuit_open")
func (c *Collector) RecordFetch(outcome string, duration time.Duration) {
	c.FetchRequestsTotal.WithLabelValues(outcome).Inc()
	c.FetchDuration.Observe(duration.Seconds())
}

// RecordCleaning records the size and missing-value counts of a cleaned dataset
func (c *Collector) RecordCleaning(records, missingIrradiance, missingTemperature, missingZenith int, hasGap bool) {
	c.RecordsCleanedTotal.Add(float64(records))
	c.MissingValuesTotal.WithLabelValues("irradiance").Add(float64(missingIrradiance))
	c.MissingValuesTotal.WithLabelValues("temperature").Add(float64(missingTemperature))
	c.MissingValuesTotal.WithLabelValues("zenith_angle").Add(float64(missingZenith))
	if hasGap {
		c.GapsDetectedTotal.Inc()
	}
}

// RecordIntegrityError counts an aborted cleaning pass
func (c *Collector) RecordIntegrityError(kind string) {
	c.IntegrityErrors.WithLabelValues(kind).Inc()
}

// RecordFeatureSelection counts kept and dropped rows
func (c *Collector) RecordFeatureSelection(selected, droppedMissing, droppedZero int) {
	c.FeaturesSelected.Add(float64(selected))
	c.FeaturesDropped.WithLabelValues("missing").Add(float64(droppedMissing))
	c.FeaturesDropped.WithLabelValues("zero_irradiance").Add(float64(droppedZero))
}

// RecordSeasonModel publishes the latest metrics of a season model
func (c *Collector) RecordSeasonModel(season string, r2, mae, mse float64) {
	c.SeasonModelR2.WithLabelValues(season).Set(r2)
	c.SeasonModelMAE.WithLabelValues(season).Set(mae)
	c.SeasonModelMSE.WithLabelValues(season).Set(mse)
}

// RecordSeasonFailure counts a skipped season
func (c *Collector) RecordSeasonFailure(season string) {
	c.SeasonFailuresTotal.WithLabelValues(season).Inc()
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
