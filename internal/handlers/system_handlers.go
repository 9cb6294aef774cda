package handlers

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"xcri-rankings/internal/models"
)

// maxFeedbackBody bounds the POST /feedback payload
const maxFeedbackBody = 64 << 10

// InfoResponse is the API root document
type InfoResponse struct {
	Name    string              `json:"name"`
	Version string              `json:"version"`
	Docs    string              `json:"docs"`
	Health  models.HealthStatus `json:"health"`
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, InfoResponse{
		Name:    "XCRI Rankings API",
		Version: h.version,
		Docs:    "/api/docs",
		Health:  h.svc.Health.Check(r.Context()),
	}, http.StatusOK)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Health.Check(r.Context())

	code := http.StatusOK
	if status.Status == models.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	h.sendJSON(w, status, code)
}

// SubmitFeedback handles POST /feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var sub models.FeedbackSubmission
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFeedbackBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleError(w, r, models.NewValidationError("body", "", "request body too large"))
			return
		}
		h.handleError(w, r, models.NewValidationError("body", "", "failed to read request body"))
		return
	}
	if err := json.Unmarshal(body, &sub); err != nil {
		h.handleError(w, r, models.NewValidationError("body", "", "must be a JSON object"))
		return
	}

	result, err := h.svc.Feedback.Submit(r.Context(), h.clientKey(r), sub)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, result, http.StatusOK)
}

// FeedbackStatus handles GET /feedback/status
func (h *Handler) FeedbackStatus(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.svc.Feedback.Status(), http.StatusOK)
}

// clientKey identifies the submitter for rate limiting
func (h *Handler) clientKey(r *http.Request) string {
	if h.server.TrustProxyHeaders {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
