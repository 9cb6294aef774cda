package ranking

import (
	"fmt"
	"strconv"
	"strings"

	"xcri-rankings/internal/models"
)

// ScopeKind is the geographic breadth a ranking is computed over
type ScopeKind int

const (
	Division ScopeKind = iota
	Region
	Conference
)

func (k ScopeKind) String() string {
	switch k {
	case Region:
		return "region"
	case Conference:
		return "conference"
	default:
		return "division"
	}
}

// Scope identifies a ranking population. ID is zero when the scope is a
// whole division or when a knockout query leaves the group unqualified.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

// DivisionScope is the default population
var DivisionScope = Scope{Kind: Division}

// ParseScoringGroup parses "division", "region_<id>" or "conference_<id>"
func ParseScoringGroup(s string) (Scope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "division" {
		return DivisionScope, nil
	}

	prefix, rawID, ok := strings.Cut(s, "_")
	if !ok {
		return Scope{}, models.NewValidationError("scoring_group", s, "must be division, region_<id> or conference_<id>")
	}

	var kind ScopeKind
	switch prefix {
	case "region":
		kind = Region
	case "conference":
		kind = Conference
	default:
		return Scope{}, models.NewValidationError("scoring_group", s, "must be division, region_<id> or conference_<id>")
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Scope{}, models.NewValidationError("scoring_group", s, "group id must be a positive integer")
	}

	return Scope{Kind: kind, ID: id}, nil
}

// ParseGroupType parses the knockout D/R/C code with an optional group key
func ParseGroupType(groupType string, fk *int64) (Scope, error) {
	var kind ScopeKind
	switch strings.ToUpper(strings.TrimSpace(groupType)) {
	case "", "D":
		kind = Division
	case "R":
		kind = Region
	case "C":
		kind = Conference
	default:
		return Scope{}, models.NewValidationError("rank_group_type", groupType, "must be D, R or C")
	}

	scope := Scope{Kind: kind}
	if fk != nil {
		if *fk <= 0 {
			return Scope{}, models.NewValidationError("rank_group_fk", strconv.FormatInt(*fk, 10), "must be a positive integer")
		}
		scope.ID = *fk
	}
	return scope, nil
}

// ScoringGroup renders the scope as the scoring_group column value
func (s Scope) ScoringGroup() string {
	if s.Kind == Division {
		return "division"
	}
	return fmt.Sprintf("%s_%d", s.Kind, s.ID)
}

// GroupType renders the scope as the knockout rank_group_type code
func (s Scope) GroupType() string {
	switch s.Kind {
	case Region:
		return "R"
	case Conference:
		return "C"
	default:
		return "D"
	}
}

// GroupFK returns the knockout rank_group_fk, if one was given
func (s Scope) GroupFK() (int64, bool) {
	return s.ID, s.ID != 0
}

func (s Scope) String() string {
	return s.ScoringGroup()
}
