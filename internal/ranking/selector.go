package ranking

import (
	"strings"

	"xcri-rankings/internal/models"
)

// Predicate is an ordered WHERE clause and its positional arguments.
// Fragments use ? placeholders; callers Rebind the final statement.
type Predicate struct {
	clauses []string
	args    []interface{}
}

// NewPredicate starts an empty predicate
func NewPredicate() *Predicate {
	return &Predicate{}
}

// And appends one fragment with the arguments for its placeholders
func (p *Predicate) And(fragment string, args ...interface{}) *Predicate {
	p.clauses = append(p.clauses, fragment)
	p.args = append(p.args, args...)
	return p
}

// Merge appends every clause of other, keeping order
func (p *Predicate) Merge(other *Predicate) *Predicate {
	if other == nil {
		return p
	}
	p.clauses = append(p.clauses, other.clauses...)
	p.args = append(p.args, other.args...)
	return p
}

// Where renders " WHERE a AND b", or an empty string for no clauses
func (p *Predicate) Where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// Args returns a copy of the positional arguments
func (p *Predicate) Args() []interface{} {
	out := make([]interface{}, len(p.args))
	copy(out, p.args)
	return out
}

// Paged returns the LIMIT/OFFSET suffix and the arguments with limit then offset last
func (p *Predicate) Paged(page Page) (string, []interface{}) {
	return " LIMIT ? OFFSET ?", append(p.Args(), page.Limit, page.Offset)
}

// Len is the number of clauses
func (p *Predicate) Len() int {
	return len(p.clauses)
}

// Columns is the fixed allow-list of qualified columns an entity exposes to
// the refinements. Only these strings are ever spliced into SQL.
type Columns struct {
	Alias      string
	Search     []string
	Region     string
	Conference string
	Races      string
}

type options struct {
	withoutAlgorithm bool
}

// Option adjusts the selector to a table shape
type Option func(*options)

// WithoutAlgorithm omits algorithm_type for tables that do not carry it
func WithoutAlgorithm() Option {
	return func(o *options) { o.withoutAlgorithm = true }
}

// Select builds the predicate for a ranking context plus refinements. Clause
// order is fixed: season (unless zero), scoring group, algorithm, checkpoint, division,
// gender, then search, region, conference and minimum races.
func Select(c Context, f Filter, cols Columns, opts ...Option) *Predicate {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	col := qualifier(cols.Alias)
	p := NewPredicate()

	if c.SeasonYear != 0 {
		p.And(col("season_year")+" = ?", c.SeasonYear)
	}
	p.And(col("scoring_group")+" = ?", c.Scope.ScoringGroup())

	if !o.withoutAlgorithm {
		algorithm := c.Algorithm
		if algorithm == "" {
			algorithm = AlgorithmLight
		}
		p.And(col("algorithm_type")+" = ?", algorithm)
	}

	checkpoint(p, col("checkpoint_date"), c.Checkpoint)

	if c.Division != nil {
		p.And(col("division_code")+" = ?", *c.Division)
	}
	if c.Gender != nil {
		p.And(col("gender_code")+" = ?", *c.Gender)
	}

	refine(p, f, cols)
	return p
}

// SelectGroup builds the knockout predicate: season, group type, group key,
// gender, checkpoint, then an optional team-name search.
func SelectGroup(g GroupContext, alias string, search string) *Predicate {
	col := qualifier(alias)
	p := NewPredicate()

	p.And(col("season_year")+" = ?", g.SeasonYear)
	p.And(col("rank_group_type")+" = ?", g.Scope.GroupType())
	if fk, ok := g.Scope.GroupFK(); ok {
		p.And(col("rank_group_fk")+" = ?", fk)
	}
	if g.Gender != nil {
		p.And(col("gender_code")+" = ?", *g.Gender)
	}
	checkpoint(p, col("checkpoint_date"), g.Checkpoint)

	if search = strings.TrimSpace(search); search != "" {
		p.And(col("team_name")+" ILIKE ?", likePattern(search))
	}
	return p
}

func refine(p *Predicate, f Filter, cols Columns) {
	if search := strings.TrimSpace(f.Search); search != "" && len(cols.Search) > 0 {
		pattern := likePattern(search)
		parts := make([]string, len(cols.Search))
		args := make([]interface{}, len(cols.Search))
		for i, c := range cols.Search {
			parts[i] = c + " ILIKE ?"
			args[i] = pattern
		}
		p.And("("+strings.Join(parts, " OR ")+")", args...)
	}
	if f.Region != "" && cols.Region != "" {
		p.And(cols.Region+" = ?", f.Region)
	}
	if f.Conference != "" && cols.Conference != "" {
		p.And(cols.Conference+" = ?", f.Conference)
	}
	if f.MinRaces != nil && cols.Races != "" {
		p.And(cols.Races+" >= ?", *f.MinRaces)
	}
}

func checkpoint(p *Predicate, column string, d *models.Date) {
	if d == nil {
		p.And(column + " IS NULL")
		return
	}
	p.And(column+" = ?", d.String())
}

func qualifier(alias string) func(string) string {
	if alias == "" {
		return func(c string) string { return c }
	}
	return func(c string) string { return alias + "." + c }
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
