package handlers

import (
	"net/http"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
)

// MatchupsResponse is a page of one team's matchups plus its record
type MatchupsResponse struct {
	Total   int                          `json:"total"`
	Limit   int                          `json:"limit"`
	Offset  int                          `json:"offset"`
	Stats   models.MatchupStats          `json:"stats"`
	Results []models.TeamKnockoutMatchup `json:"results"`
}

// ListKnockoutRankings handles GET /team-knockout
func (h *Handler) ListKnockoutRankings(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	g := h.groupContext(p)
	search := p.search()
	page := p.page(nestedDefaultLimit, nestedMaxLimit)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	rankings, total, err := h.svc.Knockout.ListRankings(r.Context(), g, search, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, rankings, total, page.Limit, page.Offset)
}

// GetKnockoutTeam handles GET /team-knockout/{team_id}
func (h *Handler) GetKnockoutTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	g := h.groupContext(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	team, err := h.svc.Knockout.GetTeam(r.Context(), teamID, g)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if team == nil {
		h.notFound(w, r, "Team not found in knockout rankings")
		return
	}

	h.sendJSON(w, team, http.StatusOK)
}

// GetTeamMatchups handles GET /team-knockout/matchups?team_id=
func (h *Handler) GetTeamMatchups(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	teamID := p.requiredID("team_id")
	g := h.groupContext(p)
	page := p.page(matchupsLimit, nestedMaxLimit)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	matchups, stats, err := h.svc.Knockout.TeamMatchups(r.Context(), teamID, g, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if matchups == nil {
		matchups = []models.TeamKnockoutMatchup{}
	}

	h.sendJSON(w, MatchupsResponse{
		Total:   stats.TotalMatchups,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Stats:   stats,
		Results: matchups,
	}, http.StatusOK)
}

// GetHeadToHead handles GET /team-knockout/matchups/head-to-head
func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	teamA, teamB, g := h.teamPair(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	h2h, err := h.svc.Knockout.HeadToHead(r.Context(), teamA, teamB, g)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if h2h == nil {
		h.notFound(w, r, "No matchups found between these teams")
		return
	}

	h.sendJSON(w, h2h, http.StatusOK)
}

// GetCommonOpponents handles GET /team-knockout/matchups/common-opponents
func (h *Handler) GetCommonOpponents(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	teamA, teamB, g := h.teamPair(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	analysis, err := h.svc.Knockout.CommonOpponents(r.Context(), teamA, teamB, g)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if analysis == nil {
		h.notFound(w, r, "No common opponents found")
		return
	}

	h.sendJSON(w, analysis, http.StatusOK)
}

// GetMeetMatchups handles GET /team-knockout/matchups/meet/{race_id}
func (h *Handler) GetMeetMatchups(w http.ResponseWriter, r *http.Request) {
	raceID, err := pathID(r, "race_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	p := newParams(r)
	season := p.intOr("season_year", h.query.DefaultSeasonYear)
	raw := p.str("checkpoint_date")
	var checkpoint *models.Date
	if p.err == nil {
		if err := ranking.ValidateSeason(season); err != nil {
			p.fail(err)
		} else if checkpoint, err = ranking.ParseCheckpoint(raw); err != nil {
			p.fail(err)
		}
	}
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	meet, err := h.svc.Knockout.MeetMatchups(r.Context(), raceID, season, checkpoint)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if meet == nil {
		h.notFound(w, r, "No matchups found for this meet")
		return
	}

	h.sendJSON(w, meet, http.StatusOK)
}

func (h *Handler) teamPair(p *params) (int64, int64, ranking.GroupContext) {
	teamA := p.requiredID("team_a_id")
	teamB := p.requiredID("team_b_id")
	g := h.groupContext(p)
	return teamA, teamB, g
}
