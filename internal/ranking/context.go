// Package ranking turns a ranking context into the deterministic predicate
// shared by every ranking query.
package ranking

import (
	"strconv"
	"strings"

	"xcri-rankings/internal/models"
)

// Algorithm variants produced by the calculation pipeline
const (
	AlgorithmLight = "light"
	AlgorithmHeavy = "heavy"
)

// Context selects exactly one ranking generation. A nil Checkpoint is the
// live full-season view and never matches a dated snapshot. A zero
// SeasonYear leaves the season unconstrained; only snapshot reads use it,
// since a checkpoint date already names one generation.
type Context struct {
	SeasonYear int
	Division   *int
	Gender     *string
	Scope      Scope
	Checkpoint *models.Date
	Algorithm  string
}

// GroupContext selects one knockout ranking group
type GroupContext struct {
	SeasonYear int
	Scope      Scope
	Gender     *string
	Checkpoint *models.Date
}

// Filter holds the optional list refinements
type Filter struct {
	Search     string
	Region     string
	Conference string
	MinRaces   *int
}

// Page is a validated LIMIT/OFFSET pair
type Page struct {
	Limit  int
	Offset int
}

// NewContext validates raw request values into a Context
func NewContext(season int, division *int, gender, scoringGroup, checkpoint, algorithm string) (Context, error) {
	c := Context{SeasonYear: season}

	if err := ValidateSeason(season); err != nil {
		return Context{}, err
	}

	g, err := NormalizeGender(gender)
	if err != nil {
		return Context{}, err
	}
	c.Gender = g
	c.Division = division

	if c.Scope, err = ParseScoringGroup(scoringGroup); err != nil {
		return Context{}, err
	}
	if c.Checkpoint, err = ParseCheckpoint(checkpoint); err != nil {
		return Context{}, err
	}
	if c.Algorithm, err = ParseAlgorithm(algorithm); err != nil {
		return Context{}, err
	}
	return c, nil
}

// NewGroupContext validates raw knockout request values
func NewGroupContext(season int, groupType string, groupFK *int64, gender, checkpoint string) (GroupContext, error) {
	if err := ValidateSeason(season); err != nil {
		return GroupContext{}, err
	}

	scope, err := ParseGroupType(groupType, groupFK)
	if err != nil {
		return GroupContext{}, err
	}
	g, err := NormalizeGender(gender)
	if err != nil {
		return GroupContext{}, err
	}
	cp, err := ParseCheckpoint(checkpoint)
	if err != nil {
		return GroupContext{}, err
	}

	return GroupContext{SeasonYear: season, Scope: scope, Gender: g, Checkpoint: cp}, nil
}

// Live returns the live light division-scope view for a season
func Live(season int) Context {
	return Context{SeasonYear: season, Scope: DivisionScope, Algorithm: AlgorithmLight}
}

// AtCheckpoint returns the snapshot view for a date
func AtCheckpoint(d models.Date) Context {
	return Context{SeasonYear: d.Year(), Scope: DivisionScope, Checkpoint: &d, Algorithm: AlgorithmLight}
}

// NormalizeGender uppercases and validates a gender code; empty means unset
func NormalizeGender(s string) (*string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	if s != "M" && s != "F" {
		return nil, models.NewValidationError("gender", s, "must be M or F")
	}
	return &s, nil
}

// ParseCheckpoint parses an optional YYYY-MM-DD checkpoint
func ParseCheckpoint(s string) (*models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, models.NewValidationError("checkpoint_date", s, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// ParseAlgorithm defaults to light
func ParseAlgorithm(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return AlgorithmLight, nil
	case AlgorithmLight, AlgorithmHeavy:
		return s, nil
	}
	return "", models.NewValidationError("algorithm_type", s, "must be light or heavy")
}

// ValidateSeason bounds a season year to 2000..2100
func ValidateSeason(season int) error {
	if season < 2000 || season > 2100 {
		return models.NewValidationError("season_year", strconv.Itoa(season), "must be between 2000 and 2100")
	}
	return nil
}

// NewPage validates a LIMIT/OFFSET pair against an upper bound
func NewPage(limit, offset, maxLimit int) (Page, error) {
	if limit < 1 || limit > maxLimit {
		return Page{}, models.NewValidationError("limit", strconv.Itoa(limit), "must be between 1 and "+strconv.Itoa(maxLimit))
	}
	if offset < 0 {
		return Page{}, models.NewValidationError("offset", strconv.Itoa(offset), "must not be negative")
	}
	return Page{Limit: limit, Offset: offset}, nil
}
