package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcri-rankings/internal/config"
	"xcri-rankings/internal/github"
	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/ratelimit"
	"xcri-rankings/internal/repository"
	"xcri-rankings/internal/services"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

type fakeAthletes struct {
	repository.AthleteRepository
	gotContext ranking.Context
	gotFilter  ranking.Filter
	gotPage    ranking.Page
	athlete    *models.AthleteRanking
	err        error
	panics     bool
}

func (f *fakeAthletes) List(_ context.Context, c ranking.Context, fl ranking.Filter, page ranking.Page) ([]models.AthleteRanking, int, error) {
	if f.panics {
		panic("boom")
	}
	f.gotContext, f.gotFilter, f.gotPage = c, fl, page
	if f.err != nil {
		return nil, 0, f.err
	}
	return []models.AthleteRanking{{AnetAthleteHnd: 1}}, 41, nil
}

func (f *fakeAthletes) Get(_ context.Context, _ int64, c ranking.Context) (*models.AthleteRanking, error) {
	f.gotContext = c
	return f.athlete, f.err
}

func (f *fakeAthletes) Roster(_ context.Context, _ int64, c ranking.Context, page ranking.Page) ([]models.AthleteRanking, int, error) {
	f.gotContext, f.gotPage = c, page
	return []models.AthleteRanking{}, 0, nil
}

type fakeKnockout struct {
	repository.KnockoutRepository
	calls int
	gotG  ranking.GroupContext

	gotSeason     int
	gotCheckpoint *models.Date
}

func (f *fakeKnockout) Meet(_ context.Context, _ int64, season int, checkpoint *models.Date) ([]models.TeamKnockoutMatchup, error) {
	f.calls++
	f.gotSeason, f.gotCheckpoint = season, checkpoint
	return nil, nil
}

func (f *fakeKnockout) Between(_ context.Context, _, _ int64, g ranking.GroupContext) ([]models.TeamKnockoutMatchup, error) {
	f.calls++
	f.gotG = g
	return nil, nil
}

func (f *fakeKnockout) TeamMatchups(_ context.Context, _ int64, g ranking.GroupContext, page ranking.Page) ([]models.TeamKnockoutMatchup, models.MatchupStats, error) {
	f.calls++
	f.gotG = g
	return nil, models.MatchupStats{TotalMatchups: 4, Wins: 3, Losses: 1}, nil
}

type fakeSnapshots struct {
	repository.SnapshotRepository
}

func (fakeSnapshots) Combinations(context.Context, models.Date) ([]models.SnapshotCombination, error) {
	return nil, nil
}

type fakeHealth struct {
	pingErr error
}

func (f fakeHealth) Ping(context.Context) error { return f.pingErr }

func (f fakeHealth) CountRows(context.Context, string) (int64, error) { return 3, nil }

type fakeIssues struct{}

func (fakeIssues) CreateIssue(context.Context, github.IssueRequest) (*github.Issue, error) {
	return &github.Issue{Number: 12, HTMLURL: "https://github.com/example/xcri/issues/12"}, nil
}

type testServer struct {
	handler  http.Handler
	athletes *fakeAthletes
	knockout *fakeKnockout
	metrics  *metrics.Collector
}

type serverOption func(*config.ServerConfig, *config.FeedbackConfig, *fakeHealth)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := logging.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector("test", reg)

	server := config.Default().Server
	server.CORSOrigins = []string{"https://xcri.example"}
	fb := config.FeedbackConfig{Enabled: true, GitHubRepo: "example/xcri", HourlyLimit: 1, DailyLimit: 5, Backend: ratelimit.BackendMemory}
	health := &fakeHealth{}
	for _, opt := range opts {
		opt(&server, &fb, health)
	}

	athletes := &fakeAthletes{}
	knockout := &fakeKnockout{}
	limiter := ratelimit.NewMemory(ratelimit.FeedbackRules(fb.HourlyLimit, fb.DailyLimit), 0)

	svc := Services{
		Athletes:   services.NewAthleteService(athletes, logger, m),
		Knockout:   services.NewKnockoutService(knockout, logger, m),
		Snapshots:  services.NewSnapshotService(fakeSnapshots{}, athletes, nil, logger, m),
		Components: services.NewComponentService(nil, logger, m),
		Health:     services.NewHealthService(health, "2.0.0", logger, m),
		Feedback:   services.NewFeedbackService(fb, limiter, fakeIssues{}, logger, m),
	}
	query := config.QueryConfig{DefaultSeasonYear: 2025, DefaultLimit: 100, MaxLimit: 5000}

	h := NewHandler(svc, server, query, "2.0.0", logger, m)
	router, err := NewRouter(h, reg)
	require.NoError(t, err)

	return &testServer{handler: router, athletes: athletes, knockout: knockout, metrics: m}
}

func (s *testServer) do(t *testing.T, method, target string, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestListAthletes_ContextAndEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/athletes?season_year=2024&division=2030&gender=m&limit=25&offset=0&search=smith&min_races=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	c := s.athletes.gotContext
	assert.Equal(t, 2024, c.SeasonYear)
	require.NotNil(t, c.Division)
	assert.Equal(t, 2030, *c.Division)
	require.NotNil(t, c.Gender)
	assert.Equal(t, "M", *c.Gender)
	assert.Equal(t, ranking.AlgorithmLight, c.Algorithm)
	assert.Nil(t, c.Checkpoint)
	assert.Equal(t, ranking.Page{Limit: 25, Offset: 0}, s.athletes.gotPage)
	assert.Equal(t, "smith", s.athletes.gotFilter.Search)
	require.NotNil(t, s.athletes.gotFilter.MinRaces)
	assert.Equal(t, 3, *s.athletes.gotFilter.MinRaces)

	var body struct {
		Total   int               `json:"total"`
		Limit   int               `json:"limit"`
		Offset  int               `json:"offset"`
		Results []json.RawMessage `json:"results"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 41, body.Total)
	assert.Equal(t, 25, body.Limit)
	assert.Len(t, body.Results, 1)

	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestListAthletes_Defaults(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/athletes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2025, s.athletes.gotContext.SeasonYear)
	assert.Equal(t, ranking.DivisionScope, s.athletes.gotContext.Scope)
	assert.Equal(t, ranking.Page{Limit: 100, Offset: 0}, s.athletes.gotPage)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"limit above max", "/athletes?limit=5001"},
		{"zero limit", "/athletes?limit=0"},
		{"negative offset", "/athletes?offset=-1"},
		{"bad gender", "/athletes?gender=X"},
		{"bad season", "/athletes?season_year=1999"},
		{"bad checkpoint", "/athletes?checkpoint_date=2024-13-01"},
		{"bad scoring group", "/athletes?scoring_group=state_4"},
		{"bad algorithm", "/athletes?algorithm_type=medium"},
		{"short search", "/athletes?search=a"},
		{"non-numeric division", "/athletes?division=d1"},
		{"non-numeric athlete", "/athletes/abc"},
		{"roster over nested cap", "/athletes/team/5/roster?limit=501"},
		{"missing component", "/components/leaderboard"},
		{"missing team id", "/team-knockout/matchups"},
		{"bad group type", "/team-knockout/matchups?team_id=4&rank_group_type=X"},
		{"bad snapshot date", "/snapshots/yesterday/metadata"},
		{"meet season out of range", "/team-knockout/matchups/meet/9?season_year=1999"},
		{"meet bad checkpoint", "/team-knockout/matchups/meet/9?checkpoint_date=2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, "GET", tt.target, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body ErrorResponse
			decode(t, rec, &body)
			assert.Equal(t, ErrKindValidation, body.Error)
			assert.Equal(t, http.StatusBadRequest, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.Empty(t, body.Detail)
		})
	}
}

func TestMeetMatchups_PassesSeasonAndCheckpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/team-knockout/matchups/meet/9?season_year=2024&checkpoint_date=2024-10-19", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, s.knockout.calls)
	assert.Equal(t, 2024, s.knockout.gotSeason)
	require.NotNil(t, s.knockout.gotCheckpoint)
	assert.Equal(t, "2024-10-19", s.knockout.gotCheckpoint.String())

	rec = s.do(t, "GET", "/team-knockout/matchups/meet/9?checkpoint_date=bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, s.knockout.calls)
}

func TestUnknownComponentNeverQueries(t *testing.T) {
	s := newTestServer(t)

	// the component repository is nil, so any query would panic into a 500
	rec := s.do(t, "GET", "/components/leaderboard?component=speed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "GET", "/scs/distribution/speed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeadToHead_IdenticalTeams(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/team-knockout/matchups/head-to-head?team_a_id=9&team_b_id=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.knockout.calls)
}

func TestHeadToHead_NeverMet(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/team-knockout/matchups/head-to-head?team_a_id=9&team_b_id=10&gender_code=f&rank_group_type=R&rank_group_fk=3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, ErrKindNotFound, body.Error)

	g := s.knockout.gotG
	require.NotNil(t, g.Gender)
	assert.Equal(t, "F", *g.Gender)
	assert.Equal(t, ranking.Scope{Kind: ranking.Region, ID: 3}, g.Scope)
}

func TestTeamMatchups_Stats(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/team-knockout/matchups?team_id=4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body MatchupsResponse
	decode(t, rec, &body)
	assert.Equal(t, 4, body.Total)
	assert.Equal(t, 50, body.Limit)
	assert.Equal(t, 3, body.Stats.Wins)
	assert.InDelta(t, 75.0, body.Stats.WinPct, 0.001)
	assert.NotNil(t, body.Results)
}

func TestGetAthlete_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/athletes/77", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	s := newTestServer(t)
	s.athletes.err = errors.New("pq: relation \"athlete_rankings\" does not exist")

	rec := s.do(t, "GET", "/athletes", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, ErrKindInternal, body.Error)
	assert.Empty(t, body.Detail)
	assert.NotContains(t, rec.Body.String(), "athlete_rankings")

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.APIErrorsTotal.WithLabelValues(ErrKindInternal, "/athletes")))
}

func TestInternalErrorDetailWhenExposed(t *testing.T) {
	s := newTestServer(t, func(sc *config.ServerConfig, _ *config.FeedbackConfig, _ *fakeHealth) {
		sc.ExposeErrors = true
	})
	s.athletes.err = errors.New("statement timeout")

	rec := s.do(t, "GET", "/athletes", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Contains(t, body.Detail, "statement timeout")
}

func TestPanicRecovered(t *testing.T) {
	s := newTestServer(t)
	s.athletes.panics = true

	rec := s.do(t, "GET", "/athletes", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, ErrKindInternal, body.Error)
}

func TestNotImplemented(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/components/athletes/5/discrepancy", "/components/biggest-discrepancies", "/scs/biggest-discrepancies"} {
		rec := s.do(t, "GET", target, "")
		assert.Equal(t, http.StatusNotImplemented, rec.Code, target)
	}
}

func TestSnapshotMetadata_EmptyDate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/snapshots/2024-10-15/metadata", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.SnapshotMetadata
	decode(t, rec, &body)
	assert.Equal(t, models.SnapshotNotFound, body.Status)
	assert.NotNil(t, body.DivisionsAvailable)
	assert.Empty(t, body.DivisionsAvailable)
}

func TestSnapshotAthletes_UseCheckpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/snapshots/2023-11-01/athletes?division=2030&gender=F", "")
	require.Equal(t, http.StatusOK, rec.Code)

	c := s.athletes.gotContext
	require.NotNil(t, c.Checkpoint)
	assert.Equal(t, "2023-11-01", c.Checkpoint.String())
	assert.Zero(t, c.SeasonYear)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.HealthStatus
	decode(t, rec, &body)
	assert.Equal(t, models.HealthHealthy, body.Status)
	assert.Equal(t, "2.0.0", body.APIVersion)
	assert.Len(t, body.DatabaseTables, len(repository.HealthTables))

	down := newTestServer(t, func(_ *config.ServerConfig, _ *config.FeedbackConfig, h *fakeHealth) {
		h.pingErr = errors.New("connection refused")
	})
	rec = down.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFeedback(t *testing.T) {
	s := newTestServer(t)
	body := `{"feedback_type":"feedback","message":"Please add conference filters to snapshots."}`

	rec := s.do(t, "POST", "/feedback", body, "X-Forwarded-For", "198.51.100.7")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.FeedbackResult
	decode(t, rec, &result)
	assert.True(t, result.Success)
	assert.Equal(t, 12, result.IssueNumber)

	// proxy headers are not trusted by default, so both requests share the remote address
	rec = s.do(t, "POST", "/feedback", body, "X-Forwarded-For", "198.51.100.8")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var errBody ErrorResponse
	decode(t, rec, &errBody)
	assert.Equal(t, ErrKindRateLimited, errBody.Error)
}

func TestFeedback_TrustedProxy(t *testing.T) {
	s := newTestServer(t, func(sc *config.ServerConfig, _ *config.FeedbackConfig, _ *fakeHealth) {
		sc.TrustProxyHeaders = true
	})
	body := `{"feedback_type":"question","message":"How often are the rankings recalculated?"}`

	rec := s.do(t, "POST", "/feedback", body, "X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "POST", "/feedback", body, "X-Forwarded-For", "198.51.100.8, 10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedback_BadBodyAndDisabled(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/feedback", `{"feedback_type":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "POST", "/feedback", `{"feedback_type":"bug","message":"too short"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	disabled := newTestServer(t, func(_ *config.ServerConfig, fb *config.FeedbackConfig, _ *fakeHealth) {
		fb.Enabled = false
	})
	rec = disabled.do(t, "POST", "/feedback", `{"feedback_type":"bug","message":"The page is blank on mobile."}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = disabled.do(t, "GET", "/feedback/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status models.FeedbackStatus
	decode(t, rec, &status)
	assert.False(t, status.Enabled)
	assert.False(t, status.Configured)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "OPTIONS", "/athletes", "", "Origin", "https://xcri.example", "Access-Control-Request-Method", "GET")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://xcri.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(t, "GET", "/athletes", "", "Origin", "https://elsewhere.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/athletes", "", RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestGzip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/api/docs/openapi.json", "", "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestRouteMetricsUseTemplates(t *testing.T) {
	s := newTestServer(t)

	s.do(t, "GET", "/athletes/77", "")
	s.do(t, "GET", "/athletes/78", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.APIRequestsTotal.WithLabelValues("/athletes/{athlete_id}", "GET", "404")))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, ErrKindNotFound, body.Error)
}

func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	doc := openAPIDocument("2.0.0")
	paths := doc["paths"].(map[string]interface{})

	for _, p := range []string{"/athletes", "/team-knockout/matchups/common-opponents", "/snapshots/{date}/metadata", "/feedback"} {
		assert.Contains(t, paths, p)
	}
}
