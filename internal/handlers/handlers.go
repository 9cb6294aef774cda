package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"xcri-rankings/internal/config"
	"xcri-rankings/internal/models"
	"xcri-rankings/internal/services"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// Error kinds reported in the "error" field
const (
	ErrKindValidation     = "validation_error"
	ErrKindNotFound       = "not_found"
	ErrKindRateLimited    = "rate_limited"
	ErrKindNotImplemented = "not_implemented"
	ErrKindUnavailable    = "unavailable"
	ErrKindInternal       = "internal_error"
)

// Services are the read services behind the API
type Services struct {
	Athletes   *services.AthleteService
	Teams      *services.TeamService
	Components *services.ComponentService
	Metadata   *services.MetadataService
	Snapshots  *services.SnapshotService
	Knockout   *services.KnockoutService
	Health     *services.HealthService
	Feedback   *services.FeedbackService
}

// Handler serves every API endpoint
type Handler struct {
	svc     Services
	server  config.ServerConfig
	query   config.QueryConfig
	version string
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewHandler creates a new API handler
func NewHandler(
	svc Services,
	server config.ServerConfig,
	query config.QueryConfig,
	version string,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *Handler {
	return &Handler{
		svc:     svc,
		server:  server,
		query:   query,
		version: version,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// ListResponse is the envelope of every list endpoint
type ListResponse struct {
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	Results interface{} `json:"results"`
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error(context.TODO(), "[API_ENCODE_ERROR] Failed to encode response", nil, err)
		http.Error(w, `{"error":"internal_error","message":"failed to encode response","code":500}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// sendError sends an error response and counts it by kind and route
func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, kind, message string, statusCode int, cause error) {
	h.metrics.RecordAPIError(kind, routeTemplate(r))

	response := ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    statusCode,
	}
	if cause != nil && h.server.ExposeErrors {
		response.Detail = cause.Error()
	}

	h.sendJSON(w, response, statusCode)
}

// notFound answers 404 for an absent record
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.sendError(w, r, ErrKindNotFound, message, http.StatusNotFound, nil)
}

// handleError maps a service error onto the error taxonomy
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *models.ValidationError
	var rateErr *models.RateLimitError

	switch {
	case errors.As(err, &validationErr):
		h.sendError(w, r, ErrKindValidation, validationErr.Error(), http.StatusBadRequest, nil)

	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		h.sendError(w, r, ErrKindRateLimited, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests, nil)

	case errors.Is(err, models.ErrNotImplemented):
		h.sendError(w, r, ErrKindNotImplemented, "Endpoint not yet implemented", http.StatusNotImplemented, nil)

	case errors.Is(err, models.ErrFeedbackUnavailable):
		h.sendError(w, r, ErrKindUnavailable, "Feedback integration is not configured", http.StatusServiceUnavailable, nil)

	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"route":  routeTemplate(r),
		}, err)
		h.sendError(w, r, ErrKindInternal, "An unexpected error occurred", http.StatusInternalServerError, err)
	}
}

// sendList writes the list envelope
func (h *Handler) sendList(w http.ResponseWriter, results interface{}, total int, limit, offset int) {
	h.sendJSON(w, ListResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: results,
	}, http.StatusOK)
}
