package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
)

// LeaderboardResponse is a component leaderboard page
type LeaderboardResponse struct {
	Component string                    `json:"component"`
	Total     int                       `json:"total"`
	Limit     int                       `json:"limit"`
	Offset    int                       `json:"offset"`
	Results   []models.LeaderboardEntry `json:"results"`
}

// GetAthleteComponents handles GET /components/athletes/{athlete_id}
func (h *Handler) GetAthleteComponents(w http.ResponseWriter, r *http.Request) {
	athleteID, c, ok := h.athleteAndContext(w, r)
	if !ok {
		return
	}

	breakdown, err := h.svc.Components.GetAthleteComponents(r.Context(), athleteID, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if breakdown == nil {
		h.notFound(w, r, "Component data not found for athlete")
		return
	}

	h.sendJSON(w, breakdown, http.StatusOK)
}

// GetAthletesComponents handles GET /components/athletes?ids=1,2,3
func (h *Handler) GetAthletesComponents(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	ids := parseIDList(p, "ids")
	c := h.rankingContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	breakdowns, err := h.svc.Components.GetAthletesComponents(r.Context(), ids, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if breakdowns == nil {
		breakdowns = []models.ComponentBreakdown{}
	}

	h.sendList(w, breakdowns, len(breakdowns), len(breakdowns), 0)
}

// CompareAthlete handles GET /components/athletes/{athlete_id}/comparison
func (h *Handler) CompareAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, c, ok := h.athleteAndContext(w, r)
	if !ok {
		return
	}

	comparison, err := h.svc.Components.CompareAthlete(r.Context(), athleteID, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if comparison == nil {
		h.notFound(w, r, "Component data not found for athlete")
		return
	}

	h.sendJSON(w, comparison, http.StatusOK)
}

// GetDiscrepancy handles GET /components/athletes/{athlete_id}/discrepancy
func (h *Handler) GetDiscrepancy(w http.ResponseWriter, r *http.Request) {
	athleteID, c, ok := h.athleteAndContext(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Components.GetDiscrepancy(r.Context(), athleteID, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sendJSON(w, result, http.StatusOK)
}

// GetLeaderboard handles GET /components/leaderboard?component= and
// GET /scs/leaderboard/{component}
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	component := mux.Vars(r)["component"]
	if component == "" {
		component = p.str("component")
	}
	if component == "" {
		p.fail(models.NewValidationError("component", "", "is required"))
	}
	c := h.rankingContext(p)
	f := p.filter(false)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	entries, total, err := h.svc.Components.GetLeaderboard(r.Context(), component, c, f, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	h.sendJSON(w, LeaderboardResponse{
		Component: strings.ToLower(component),
		Total:     total,
		Limit:     page.Limit,
		Offset:    page.Offset,
		Results:   entries,
	}, http.StatusOK)
}

// GetDistribution handles GET /components/distribution/{component}
func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	c := h.rankingContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	distribution, err := h.svc.Components.GetDistribution(r.Context(), mux.Vars(r)["component"], c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if distribution == nil {
		h.notFound(w, r, "No component scores found")
		return
	}

	h.sendJSON(w, distribution, http.StatusOK)
}

// BiggestDiscrepancies handles GET /components/biggest-discrepancies
func (h *Handler) BiggestDiscrepancies(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	c := h.rankingContext(p)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	result, err := h.svc.Components.BiggestDiscrepancies(r.Context(), c, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sendJSON(w, result, http.StatusOK)
}

func (h *Handler) athleteAndContext(w http.ResponseWriter, r *http.Request) (int64, ranking.Context, bool) {
	athleteID, err := pathID(r, "athlete_id")
	if err != nil {
		h.handleError(w, r, err)
		return 0, ranking.Context{}, false
	}

	p := newParams(r)
	c := h.rankingContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return 0, ranking.Context{}, false
	}
	return athleteID, c, true
}

// parseIDList accepts comma-separated and repeated values
func parseIDList(p *params, name string) []int64 {
	var ids []int64
	for _, raw := range p.values[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				p.fail(models.NewValidationError(name, part, "must be a list of positive integers"))
				return nil
			}
			ids = append(ids, id)
		}
	}
	return ids
}
