package handlers

import (
	"net/http"

	"xcri-rankings/internal/repository"
	"xcri-rankings/internal/ranking"
)

// ListAthletes handles GET /athletes
func (h *Handler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	c := h.rankingContext(p)
	f := p.filter(true)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	athletes, total, err := h.svc.Athletes.ListAthletes(r.Context(), c, f, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, athletes, total, page.Limit, page.Offset)
}

// GetAthlete handles GET /athletes/{athlete_id}
func (h *Handler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := pathID(r, "athlete_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	c := h.rankingContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	athlete, err := h.svc.Athletes.GetAthlete(r.Context(), athleteID, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if athlete == nil {
		h.notFound(w, r, "Athlete not found")
		return
	}

	h.sendJSON(w, athlete, http.StatusOK)
}

// GetTeamRoster handles GET /athletes/team/{team_id}/roster
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	c := h.rankingContext(p)
	page := p.page(nestedDefaultLimit, nestedMaxLimit)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	roster, total, err := h.svc.Athletes.GetTeamRoster(r.Context(), teamID, c, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, roster, total, page.Limit, page.Offset)
}

// ListTeams handles GET /teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	c := h.rankingContext(p)
	f := p.filter(false)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	teams, total, err := h.svc.Teams.ListTeams(r.Context(), c, f, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, teams, total, page.Limit, page.Offset)
}

// GetTeam handles GET /teams/{team_id}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	c := h.rankingContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	team, err := h.svc.Teams.GetTeam(r.Context(), teamID, c)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if team == nil {
		h.notFound(w, r, "Team not found")
		return
	}

	h.sendJSON(w, team, http.StatusOK)
}

// GetTeamResume handles GET /teams/{team_id}/resume
func (h *Handler) GetTeamResume(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	q := repository.ResumeQuery{
		TeamID:     teamID,
		SeasonYear: p.intOr("season_year", h.query.DefaultSeasonYear),
		Division:   p.optInt("division"),
	}
	if p.err == nil {
		// season bounds and gender share the ranking context rules
		c, err := ranking.NewContext(q.SeasonYear, q.Division, p.str("gender"), "", "", "")
		if err != nil {
			p.fail(err)
		}
		q.Gender = c.Gender
	}
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	resume, err := h.svc.Teams.GetTeamResume(r.Context(), q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if resume == nil {
		h.notFound(w, r, "Season resume not found")
		return
	}

	h.sendJSON(w, resume, http.StatusOK)
}
