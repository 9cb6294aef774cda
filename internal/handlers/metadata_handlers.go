package handlers

import (
	"net/http"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
)

// ListMetadata handles GET /metadata
func (h *Handler) ListMetadata(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	c := h.rankingContext(p)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	runs, total, err := h.svc.Metadata.ListMetadata(r.Context(), c, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, runs, total, page.Limit, page.Offset)
}

// LatestMetadata handles GET /metadata/latest
func (h *Handler) LatestMetadata(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.Metadata.LatestMetadata(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.CalculationMetadata{}
	}

	h.sendJSON(w, runs, http.StatusOK)
}

// GetMetadata handles GET /metadata/{metadata_id}
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	metadataID, err := pathID(r, "metadata_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	run, err := h.svc.Metadata.GetMetadata(r.Context(), metadataID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if run == nil {
		h.notFound(w, r, "Metadata not found")
		return
	}

	h.sendJSON(w, run, http.StatusOK)
}

// ProcessingSummary handles GET /metadata/summary/processing
func (h *Handler) ProcessingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Metadata.ProcessingSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, summary, http.StatusOK)
}

// ListSnapshots handles GET /snapshots
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	p := newParams(r)
	season := p.optInt("season_year")
	page := h.listPage(p)
	if season != nil && (*season < 2000 || *season > 2100) {
		p.fail(models.NewValidationError("season_year", p.str("season_year"), "must be between 2000 and 2100"))
	}
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	snapshots, total, err := h.svc.Snapshots.ListSnapshots(r.Context(), season, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, snapshots, total, page.Limit, page.Offset)
}

// SnapshotAthletes handles GET /snapshots/{date}/athletes
func (h *Handler) SnapshotAthletes(w http.ResponseWriter, r *http.Request) {
	date, p, division, gender, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}
	f := p.filter(true)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	athletes, total, err := h.svc.Snapshots.SnapshotAthletes(r.Context(), date, division, gender, f, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, athletes, total, page.Limit, page.Offset)
}

// SnapshotTeams handles GET /snapshots/{date}/teams
func (h *Handler) SnapshotTeams(w http.ResponseWriter, r *http.Request) {
	date, p, division, gender, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}
	f := p.filter(false)
	page := h.listPage(p)
	if p.err != nil {
		h.handleError(w, r, p.err)
		return
	}

	teams, total, err := h.svc.Snapshots.SnapshotTeams(r.Context(), date, division, gender, f, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendList(w, teams, total, page.Limit, page.Offset)
}

// SnapshotMetadata handles GET /snapshots/{date}/metadata
func (h *Handler) SnapshotMetadata(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r, "date")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	meta, err := h.svc.Snapshots.SnapshotMetadata(r.Context(), date)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, meta, http.StatusOK)
}

func (h *Handler) snapshotParams(w http.ResponseWriter, r *http.Request) (models.Date, *params, *int, *string, bool) {
	date, err := pathDate(r, "date")
	if err != nil {
		h.handleError(w, r, err)
		return models.Date{}, nil, nil, nil, false
	}

	p := newParams(r)
	division := p.optInt("division")
	gender, err := ranking.NormalizeGender(p.str("gender"))
	if err != nil {
		p.fail(err)
	}
	return date, p, division, gender, true
}
