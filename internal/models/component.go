package models

import (
	"time"
)

// Component names accepted by the leaderboard and distribution endpoints
const (
	ComponentSAGA = "saga"
	ComponentSEWR = "sewr"
	ComponentOSMA = "osma"
	ComponentXCRI = "xcri"
)

// Components lists every component in display order
var Components = []string{ComponentSAGA, ComponentSEWR, ComponentOSMA, ComponentXCRI}

// IsComponent reports whether name is a known component
func IsComponent(name string) bool {
	for _, c := range Components {
		if c == name {
			return true
		}
	}
	return false
}

// ComponentScores holds the four score/rank pairs shared by breakdown and leaderboard rows
type ComponentScores struct {
	SAGAScore *float64 `json:"saga_score" db:"saga_score"`
	SAGARank  *int     `json:"saga_rank" db:"saga_rank"`
	SEWRScore *float64 `json:"sewr_score" db:"sewr_score"`
	SEWRRank  *int     `json:"sewr_rank" db:"sewr_rank"`
	OSMAScore *float64 `json:"osma_score" db:"osma_score"`
	OSMARank  *int     `json:"osma_rank" db:"osma_rank"`
	XCRIScore *float64 `json:"xcri_score" db:"xcri_score"`
	XCRIRank  *int     `json:"xcri_rank" db:"xcri_rank"`
}

// ScoreAndRank returns the pair for one component
func (c ComponentScores) ScoreAndRank(component string) (*float64, *int) {
	switch component {
	case ComponentSAGA:
		return c.SAGAScore, c.SAGARank
	case ComponentSEWR:
		return c.SEWRScore, c.SEWRRank
	case ComponentOSMA:
		return c.OSMAScore, c.OSMARank
	case ComponentXCRI:
		return c.XCRIScore, c.XCRIRank
	}
	return nil, nil
}

// ComponentBreakdown decomposes an athlete's composite score
type ComponentBreakdown struct {
	ComponentID    int64  `json:"component_id" db:"component_id"`
	RankingID      int64  `json:"ranking_id" db:"ranking_id"`
	SeasonYear     int    `json:"season_year" db:"season_year"`
	DivisionCode   int    `json:"division_code" db:"division_code"`
	GenderCode     string `json:"gender_code" db:"gender_code"`
	ScoringGroup   string `json:"scoring_group" db:"scoring_group"`
	CheckpointDate *Date  `json:"checkpoint_date" db:"checkpoint_date"`

	AnetAthleteHnd   int64   `json:"anet_athlete_hnd" db:"anet_athlete_hnd"`
	AthleteNameFirst *string `json:"athlete_name_first" db:"athlete_name_first"`
	AthleteNameLast  *string `json:"athlete_name_last" db:"athlete_name_last"`
	TeamName         *string `json:"team_name" db:"team_name"`

	ComponentScores

	RacesUsed        *int     `json:"races_used" db:"races_used"`
	BestAGS          *float64 `json:"best_ags" db:"best_ags"`
	AvgAGS           *float64 `json:"avg_ags" db:"avg_ags"`
	WorstAGS         *float64 `json:"worst_ags" db:"worst_ags"`
	BestCPR          *float64 `json:"best_cpr" db:"best_cpr"`
	AvgCPR           *float64 `json:"avg_cpr" db:"avg_cpr"`
	WorstCPR         *float64 `json:"worst_cpr" db:"worst_cpr"`
	AvgRaceQuality   *float64 `json:"avg_race_quality" db:"avg_race_quality"`
	BestRaceQuality  *float64 `json:"best_race_quality" db:"best_race_quality"`
	AvgOpponentCount *float64 `json:"avg_opponent_count" db:"avg_opponent_count"`
	TotalOpponents   *int     `json:"total_opponents" db:"total_opponents"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardEntry is one row of a component leaderboard. Score and Rank
// repeat the requested component's pair.
type LeaderboardEntry struct {
	ComponentID      int64   `json:"component_id" db:"component_id"`
	RankingID        int64   `json:"ranking_id" db:"ranking_id"`
	SeasonYear       int     `json:"season_year" db:"season_year"`
	DivisionCode     int     `json:"division_code" db:"division_code"`
	GenderCode       string  `json:"gender_code" db:"gender_code"`
	AnetAthleteHnd   int64   `json:"anet_athlete_hnd" db:"anet_athlete_hnd"`
	AthleteNameFirst *string `json:"athlete_name_first" db:"athlete_name_first"`
	AthleteNameLast  *string `json:"athlete_name_last" db:"athlete_name_last"`
	TeamName         *string `json:"team_name" db:"team_name"`

	Score *float64 `json:"score" db:"score"`
	Rank  *int     `json:"rank" db:"rank"`

	ComponentScores

	RacesUsed *int `json:"races_used" db:"races_used"`
}

// ComponentDescriptions is the human label for each component
var ComponentDescriptions = map[string]string{
	ComponentSAGA: "Season Adjusted Gap Average",
	ComponentSEWR: "Season Equal-Weight Rating",
	ComponentOSMA: "Opponent Strength of Schedule",
	ComponentXCRI: "Composite score, 0.6 SEWR plus 0.4 OSMA",
}

// ComponentStanding places one athlete's component within the field
type ComponentStanding struct {
	Component   string   `json:"component"`
	Description string   `json:"description"`
	Score       *float64 `json:"score"`
	Rank        *int     `json:"rank"`
	Total       int      `json:"total"`
	Percentile  *float64 `json:"percentile"`
}

// ComponentComparison reports an athlete's standing in every component
type ComponentComparison struct {
	AnetAthleteHnd int64               `json:"anet_athlete_hnd"`
	AthleteName    string              `json:"athlete_name"`
	TeamName       *string             `json:"team_name"`
	SeasonYear     int                 `json:"season_year"`
	DivisionCode   int                 `json:"division_code"`
	GenderCode     string              `json:"gender_code"`
	TotalAthletes  int                 `json:"total_athletes"`
	RacesUsed      *int                `json:"races_used"`
	TotalOpponents *int                `json:"total_opponents"`
	Components     []ComponentStanding `json:"components"`
}

// ComponentDistribution summarises one component's score spread
type ComponentDistribution struct {
	Component    string   `json:"component" db:"-"`
	SeasonYear   int      `json:"season_year" db:"-"`
	DivisionCode *int     `json:"division_code" db:"-"`
	GenderCode   *string  `json:"gender_code" db:"-"`
	Count        int      `json:"count" db:"count"`
	Min          *float64 `json:"min" db:"min"`
	Max          *float64 `json:"max" db:"max"`
	Mean         *float64 `json:"mean" db:"mean"`
	StdDev       *float64 `json:"std_dev" db:"std_dev"`
	P25          *float64 `json:"percentile_25" db:"p25"`
	Median       *float64 `json:"median" db:"p50"`
	P75          *float64 `json:"percentile_75" db:"p75"`
}
