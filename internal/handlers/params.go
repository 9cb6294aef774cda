package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
)

const (
	// nested lists (rosters, knockout rankings) are capped lower than the top-level lists
	nestedMaxLimit     = 500
	nestedDefaultLimit = 100
	matchupsLimit      = 50
	minSearchLength    = 2
)

// params reads query values and keeps the first validation failure
type params struct {
	values url.Values
	err    error
}

func newParams(r *http.Request) *params {
	return &params{values: r.URL.Query()}
}

func (p *params) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *params) str(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

// first returns the first non-empty of several aliases
func (p *params) first(names ...string) string {
	for _, name := range names {
		if v := p.str(name); v != "" {
			return v
		}
	}
	return ""
}

func (p *params) optInt(name string) *int {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(models.NewValidationError(name, raw, "must be an integer"))
		return nil
	}
	return &n
}

func (p *params) optInt64(name string) *int64 {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(models.NewValidationError(name, raw, "must be an integer"))
		return nil
	}
	return &n
}

func (p *params) intOr(name string, def int) int {
	if n := p.optInt(name); n != nil {
		return *n
	}
	return def
}

func (p *params) requiredID(name string) int64 {
	raw := p.str(name)
	if raw == "" {
		p.fail(models.NewValidationError(name, "", "is required"))
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		p.fail(models.NewValidationError(name, raw, "must be a positive integer"))
		return 0
	}
	return n
}

func (p *params) page(def, maxLimit int) ranking.Page {
	limit := p.intOr("limit", def)
	offset := p.intOr("offset", 0)
	if p.err != nil {
		return ranking.Page{}
	}
	page, err := ranking.NewPage(limit, offset, maxLimit)
	if err != nil {
		p.fail(err)
	}
	return page
}

func (p *params) search() string {
	s := p.str("search")
	if s != "" && utf8.RuneCountInString(s) < minSearchLength {
		p.fail(models.NewValidationError("search", s, "must be at least 2 characters"))
		return ""
	}
	return s
}

func (p *params) filter(withMinRaces bool) ranking.Filter {
	f := ranking.Filter{
		Search:     p.search(),
		Region:     p.str("region"),
		Conference: p.str("conference"),
	}
	if withMinRaces {
		f.MinRaces = p.optInt("min_races")
		if f.MinRaces != nil && *f.MinRaces < 0 {
			p.fail(models.NewValidationError("min_races", strconv.Itoa(*f.MinRaces), "must not be negative"))
		}
	}
	return f
}

// rankingContext reads the shared ranking context parameters
func (h *Handler) rankingContext(p *params) ranking.Context {
	season := p.intOr("season_year", h.query.DefaultSeasonYear)
	division := p.optInt("division")
	if p.err != nil {
		return ranking.Context{}
	}

	c, err := ranking.NewContext(season, division, p.str("gender"), p.str("scoring_group"), p.str("checkpoint_date"), p.str("algorithm_type"))
	if err != nil {
		p.fail(err)
	}
	return c
}

// groupContext reads the knockout group parameters
func (h *Handler) groupContext(p *params) ranking.GroupContext {
	season := p.intOr("season_year", h.query.DefaultSeasonYear)
	fk := p.optInt64("rank_group_fk")
	if p.err != nil {
		return ranking.GroupContext{}
	}

	g, err := ranking.NewGroupContext(season, p.str("rank_group_type"), fk, p.first("gender", "gender_code"), p.str("checkpoint_date"))
	if err != nil {
		p.fail(err)
	}
	return g
}

func (h *Handler) listPage(p *params) ranking.Page {
	return p.page(h.query.DefaultLimit, h.query.MaxLimit)
}

// pathID parses a positive integer path variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, models.NewValidationError(name, raw, "must be a positive integer")
	}
	return n, nil
}

// pathDate parses a YYYY-MM-DD path variable
func pathDate(r *http.Request, name string) (models.Date, error) {
	raw := mux.Vars(r)[name]
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, models.NewValidationError(name, raw, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}
