package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers every API route. Literal segments are registered
// before the variable routes that would otherwise shadow them.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", h.OpenAPISpec).Methods("GET")

	// Athletes
	router.HandleFunc("/athletes", h.ListAthletes).Methods("GET")
	router.HandleFunc("/athletes/team/{team_id}/roster", h.GetTeamRoster).Methods("GET")
	router.HandleFunc("/athletes/{athlete_id}", h.GetAthlete).Methods("GET")

	// Teams
	router.HandleFunc("/teams", h.ListTeams).Methods("GET")
	router.HandleFunc("/teams/{team_id}", h.GetTeam).Methods("GET")
	router.HandleFunc("/teams/{team_id}/resume", h.GetTeamResume).Methods("GET")

	// Components
	router.HandleFunc("/components/athletes", h.GetAthletesComponents).Methods("GET")
	router.HandleFunc("/components/athletes/{athlete_id}", h.GetAthleteComponents).Methods("GET")
	router.HandleFunc("/components/athletes/{athlete_id}/comparison", h.CompareAthlete).Methods("GET")
	router.HandleFunc("/components/athletes/{athlete_id}/discrepancy", h.GetDiscrepancy).Methods("GET")
	router.HandleFunc("/components/leaderboard", h.GetLeaderboard).Methods("GET")
	router.HandleFunc("/components/distribution/{component}", h.GetDistribution).Methods("GET")
	router.HandleFunc("/components/biggest-discrepancies", h.BiggestDiscrepancies).Methods("GET")

	// Legacy component paths
	router.HandleFunc("/scs/athletes/{athlete_id}/components", h.GetAthleteComponents).Methods("GET")
	router.HandleFunc("/scs/athletes/{athlete_id}/comparison", h.CompareAthlete).Methods("GET")
	router.HandleFunc("/scs/athletes/{athlete_id}/discrepancy", h.GetDiscrepancy).Methods("GET")
	router.HandleFunc("/scs/leaderboard/{component}", h.GetLeaderboard).Methods("GET")
	router.HandleFunc("/scs/distribution/{component}", h.GetDistribution).Methods("GET")
	router.HandleFunc("/scs/biggest-discrepancies", h.BiggestDiscrepancies).Methods("GET")

	// Team knockout
	router.HandleFunc("/team-knockout", h.ListKnockoutRankings).Methods("GET")
	router.HandleFunc("/team-knockout/matchups", h.GetTeamMatchups).Methods("GET")
	router.HandleFunc("/team-knockout/matchups/head-to-head", h.GetHeadToHead).Methods("GET")
	router.HandleFunc("/team-knockout/matchups/common-opponents", h.GetCommonOpponents).Methods("GET")
	router.HandleFunc("/team-knockout/matchups/meet/{race_id}", h.GetMeetMatchups).Methods("GET")
	router.HandleFunc("/team-knockout/{team_id}", h.GetKnockoutTeam).Methods("GET")

	// Metadata
	router.HandleFunc("/metadata", h.ListMetadata).Methods("GET")
	router.HandleFunc("/metadata/latest", h.LatestMetadata).Methods("GET")
	router.HandleFunc("/metadata/summary/processing", h.ProcessingSummary).Methods("GET")
	router.HandleFunc("/metadata/{metadata_id}", h.GetMetadata).Methods("GET")

	// Snapshots
	router.HandleFunc("/snapshots", h.ListSnapshots).Methods("GET")
	router.HandleFunc("/snapshots/{date}/athletes", h.SnapshotAthletes).Methods("GET")
	router.HandleFunc("/snapshots/{date}/teams", h.SnapshotTeams).Methods("GET")
	router.HandleFunc("/snapshots/{date}/metadata", h.SnapshotMetadata).Methods("GET")

	// Feedback
	router.HandleFunc("/feedback", h.SubmitFeedback).Methods("POST")
	router.HandleFunc("/feedback/status", h.FeedbackStatus).Methods("GET")
}

// NewRouter builds the complete HTTP handler: API routes and /metrics
// behind request ids, CORS and gzip.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) (http.Handler, error) {
	router := mux.NewRouter()
	router.Use(h.Observe, h.Recover)

	h.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.notFound(w, r, "Resource not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.sendJSON(w, ErrorResponse{
			Error:   ErrKindValidation,
			Message: "Method not allowed",
			Code:    http.StatusMethodNotAllowed,
		}, http.StatusMethodNotAllowed)
	})

	minSize := h.server.GzipMinSize
	if minSize <= 0 {
		minSize = gzhttp.DefaultMinSize
	}
	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("failed to build gzip wrapper: %w", err)
	}

	return RequestID(h.CORS(gzip(router))), nil
}
