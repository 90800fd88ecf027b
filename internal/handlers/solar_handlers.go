package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"solar-platform/internal/config"
	"solar-platform/internal/datastore"
	"solar-platform/internal/models"
	"solar-platform/internal/power"
	"solar-platform/internal/reporting"
	"solar-platform/internal/repository"
	"solar-platform/internal/services"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

// SolarHandler handles the solar API endpoints
type SolarHandler struct {
	repo     repository.SolarRepository
	pipeline *services.PipelineService
	store    *datastore.FileStore
	location config.LocationConfig
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewSolarHandler creates a new handler. repo may be nil when the database is
// disabled; the query endpoints then answer 503.
func NewSolarHandler(
	repo repository.SolarRepository,
	pipeline *services.PipelineService,
	store *datastore.FileStore,
	location config.LocationConfig,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *SolarHandler {
	return &SolarHandler{
		repo:     repo,
		pipeline: pipeline,
		store:    store,
		location: location,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// PipelineRequest overrides the configured location for one run; zero fields keep the defaults
type PipelineRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
}

// PipelineResponse is the body of a successful pipeline run
type PipelineResponse struct {
	RunID        string                        `json:"run_id"`
	Records      int                           `json:"records"`
	CleanedPath  string                        `json:"cleaned_path"`
	Availability string                        `json:"availability"`
	Selection    interface{}                   `json:"selection"`
	Seasons      map[string]SeasonModelSummary `json:"seasons"`
	Failures     map[string]string             `json:"failures,omitempty"`
}

// SeasonModelSummary is one fitted season in a pipeline response
type SeasonModelSummary struct {
	Records  int     `json:"records"`
	Equation string  `json:"equation"`
	R2       float64 `json:"r2"`
	MAE      float64 `json:"mae"`
	MSE      float64 `json:"mse"`
	TrainR2  float64 `json:"train_r2"`
}

func (h *SolarHandler) observe(endpoint string, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// GetObservations handles GET /api/observations
func (h *SolarHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/observations"
	ctx := r.Context()
	defer h.observe(endpoint, time.Now())

	if h.repo == nil {
		h.sendError(w, r, "database is disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	page, limit := pagination(q.Get("page"), q.Get("limit"))

	filter := repository.ObservationFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if q.Get("lat") != "" || q.Get("lon") != "" {
		loc, status, msg := h.resolveLocation(r)
		if loc == nil {
			h.sendError(w, r, msg, status)
			return
		}
		filter.LocationID = &loc.ID
	}

	if s := q.Get("start"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			h.sendError(w, r, "invalid start format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartTime = &start
	}
	if s := q.Get("end"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			h.sendError(w, r, "invalid end format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = end.Add(23 * time.Hour)
		filter.EndTime = &end
	}

	observations, total, err := h.repo.GetObservations(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_OBSERVATIONS_ERROR] Failed to get observations", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to retrieve observations", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	h.sendJSON(w, PaginatedResponse{
		Data:       observations,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, http.StatusOK)
}

// GetModelRuns handles GET /api/models
func (h *SolarHandler) GetModelRuns(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/models"
	ctx := r.Context()
	defer h.observe(endpoint, time.Now())

	if h.repo == nil {
		h.sendError(w, r, "database is disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	_, limit := pagination("", q.Get("limit"))
	filter := repository.ModelRunFilter{Limit: limit}

	if q.Get("lat") != "" || q.Get("lon") != "" {
		loc, status, msg := h.resolveLocation(r)
		if loc == nil {
			h.sendError(w, r, msg, status)
			return
		}
		filter.LocationID = &loc.ID
	}

	if s := q.Get("season"); s != "" {
		season, err := parseSeasonParam(s)
		if err != nil {
			h.sendError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Season = &season
	}
	if s := q.Get("run_id"); s != "" {
		filter.RunID = &s
	}

	runs, err := h.repo.GetModelRuns(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_MODELS_ERROR] Failed to get model runs", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to retrieve model runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*models.ModelRun{}
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	h.sendJSON(w, map[string]interface{}{"data": runs, "count": len(runs)}, http.StatusOK)
}

// RunPipeline handles POST /api/pipeline/run
func (h *SolarHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/pipeline/run"
	ctx := r.Context()
	defer h.observe(endpoint, time.Now())

	var body PipelineRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	req := h.pipelineRequest(body)
	if err := config.ValidateDateRange(req.Start, req.End); err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	query := power.Query{Latitude: req.Latitude, Longitude: req.Longitude, Start: req.Start, End: req.End}
	if err := query.Validate(); err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Run(ctx, req)
	if err != nil {
		status, kind := classify(err)
		h.logger.Error(ctx, "[API_PIPELINE_ERROR] Pipeline run failed", logging.Fields{
			"latitude":  req.Latitude,
			"longitude": req.Longitude,
			"kind":      kind,
		}, err)
		h.metrics.RecordAPIError(kind, endpoint)
		h.sendError(w, r, err.Error(), status)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "POST", "200")
	h.sendJSON(w, pipelineResponse(result), http.StatusOK)
}

// LastPipelineRun handles GET /api/pipeline/last
func (h *SolarHandler) LastPipelineRun(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/pipeline/last"
	defer h.observe(endpoint, time.Now())

	last := h.pipeline.Last()
	if last == nil {
		h.sendError(w, r, "no pipeline run yet", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	h.sendJSON(w, pipelineResponse(last), http.StatusOK)
}

// GetHeatmap handles GET /api/heatmap by serving the page written by gridmap
func (h *SolarHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/heatmap"
	defer h.observe(endpoint, time.Now())

	path := h.store.Path(reporting.HeatmapFileName)
	if _, err := os.Stat(path); err != nil {
		h.sendError(w, r, "no heatmap has been generated", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

// HealthCheck handles GET /health
func (h *SolarHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"database":  "disabled",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.repo != nil {
		if err := h.repo.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_DB] Database unhealthy", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

func (h *SolarHandler) resolveLocation(r *http.Request) (*models.Location, int, string) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		return nil, http.StatusBadRequest, "lat and lon must both be numbers"
	}

	loc, err := h.repo.GetLocation(r.Context(), lat, lon)
	if err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			return nil, http.StatusNotFound, nf.Error()
		}
		h.metrics.RecordAPIError("internal_error", r.URL.Path)
		return nil, http.StatusInternalServerError, "failed to resolve location"
	}
	return loc, http.StatusOK, ""
}

func (h *SolarHandler) pipelineRequest(body PipelineRequest) services.IngestionRequest {
	req := services.IngestionRequest{
		Name:      h.location.Name,
		Latitude:  h.location.Latitude,
		Longitude: h.location.Longitude,
		Start:     h.location.StartDate,
		End:       h.location.EndDate,
	}
	if body.Name != "" {
		req.Name = body.Name
	}
	if body.Latitude != nil {
		req.Latitude = *body.Latitude
	}
	if body.Longitude != nil {
		req.Longitude = *body.Longitude
	}
	if body.Start != "" {
		req.Start = body.Start
	}
	if body.End != "" {
		req.End = body.End
	}
	return req
}

func pipelineResponse(result *services.PipelineResult) PipelineResponse {
	resp := PipelineResponse{
		RunID:        result.Modeling.RunID,
		Records:      result.Ingestion.RecordCount,
		CleanedPath:  result.Ingestion.CleanedPath,
		Availability: result.Ingestion.Availability.Message(),
		Selection:    result.Modeling.Selection,
		Seasons:      make(map[string]SeasonModelSummary, len(result.Modeling.Results)),
		Failures:     result.Failures,
	}
	for season, res := range result.Modeling.Results {
		resp.Seasons[season.String()] = SeasonModelSummary{
			Records:  res.Records,
			Equation: res.Equation(),
			R2:       res.Metrics.R2,
			MAE:      res.Metrics.MAE,
			MSE:      res.Metrics.MSE,
			TrainR2:  res.Metrics.TrainR2,
		}
	}
	return resp
}

// classify maps pipeline errors to an HTTP status and a metrics label
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrDataIntegrity):
		return http.StatusUnprocessableEntity, "data_integrity"
	case errors.Is(err, power.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.Is(err, power.ErrRateLimited),
		errors.Is(err, power.ErrServerError),
		errors.Is(err, power.ErrUnexpected):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// parseSeasonParam accepts a season code (1-4) or name
func parseSeasonParam(s string) (models.Season, error) {
	if code, err := strconv.Atoi(s); err == nil {
		season := models.Season(code)
		if !season.Valid() {
			return models.SeasonUnknown, errors.New("season code must be between 1 and 4")
		}
		return season, nil
	}
	return models.ParseSeason(s)
}

func pagination(pageStr, limitStr string) (int, int) {
	page, limit := 1, 100
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
		limit = l
	}
	return page, limit
}

// sendJSON sends a JSON response
func (h *SolarHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *SolarHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	h.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// RequestIDHeader carries the id that tags every log line of one request
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints one, echoes it on the
// response and stores it in the request context for the logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// RegisterRoutes registers all solar API routes
func (h *SolarHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestID)
	router.HandleFunc("/api/observations", h.GetObservations).Methods("GET")
	router.HandleFunc("/api/models", h.GetModelRuns).Methods("GET")
	router.HandleFunc("/api/pipeline/run", h.RunPipeline).Methods("POST")
	router.HandleFunc("/api/pipeline/last", h.LastPipelineRun).Methods("GET")
	router.HandleFunc("/api/heatmap", h.GetHeatmap).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
