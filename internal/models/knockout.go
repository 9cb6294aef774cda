package models

import (
	"time"
)

// TeamKnockoutRanking is a head-to-head derived team ranking within one ranking group
type TeamKnockoutRanking struct {
	ID             int64   `json:"id" db:"id"`
	TeamID         int64   `json:"team_id" db:"team_id"`
	TeamName       *string `json:"team_name" db:"team_name"`
	TeamCode       *string `json:"team_code" db:"team_code"`
	RankGroupType  string  `json:"rank_group_type" db:"rank_group_type"`
	RankGroupFK    int64   `json:"rank_group_fk" db:"rank_group_fk"`
	GenderCode     string  `json:"gender_code" db:"gender_code"`
	ReglGroupFK    *int64  `json:"regl_group_fk" db:"regl_group_fk"`
	ConfGroupFK    *int64  `json:"conf_group_fk" db:"conf_group_fk"`
	ReglFinish     *int    `json:"regl_finish" db:"regl_finish"`
	ConfFinish     *int    `json:"conf_finish" db:"conf_finish"`
	SeasonYear     int     `json:"season_year" db:"season_year"`
	CheckpointDate *Date   `json:"checkpoint_date" db:"checkpoint_date"`

	KnockoutRank      int      `json:"knockout_rank" db:"knockout_rank"`
	TeamFiveRank      *int     `json:"team_five_rank" db:"team_five_rank"`
	EliminationMethod *string  `json:"elimination_method" db:"elimination_method"`
	TeamSize          *int     `json:"team_size" db:"team_size"`
	AthletesWithXCRI  *int     `json:"athletes_with_xcri" db:"athletes_with_xcri"`
	TeamFiveXCRIPts   *float64 `json:"team_five_xcri_pts" db:"team_five_xcri_pts"`
	H2HWins           int      `json:"h2h_wins" db:"h2h_wins"`
	H2HLosses         int      `json:"h2h_losses" db:"h2h_losses"`
	H2HWinPct         *float64 `json:"h2h_win_pct" db:"h2h_win_pct"`

	ReglGroupName      *string   `json:"regl_group_name" db:"regl_group_name"`
	ConfGroupName      *string   `json:"conf_group_name" db:"conf_group_name"`
	MostRecentRaceDate *Date     `json:"most_recent_race_date" db:"most_recent_race_date"`
	CalculationDate    time.Time `json:"calculation_date" db:"calculation_date"`
}

// TeamKnockoutMatchup is one pairwise result at a meet
type TeamKnockoutMatchup struct {
	MatchupID    int64    `json:"matchup_id" db:"matchup_id"`
	RaceHnd      int64    `json:"race_hnd" db:"race_hnd"`
	RaceDate     Date     `json:"race_date" db:"race_date"`
	MeetName     *string  `json:"meet_name" db:"meet_name"`
	TeamAID      int64    `json:"team_a_id" db:"team_a_id"`
	TeamARank    *int     `json:"team_a_rank" db:"team_a_rank"`
	TeamAScore   *float64 `json:"team_a_score" db:"team_a_score"`
	TeamBID      int64    `json:"team_b_id" db:"team_b_id"`
	TeamBRank    *int     `json:"team_b_rank" db:"team_b_rank"`
	TeamBScore   *float64 `json:"team_b_score" db:"team_b_score"`
	WinnerTeamID *int64   `json:"winner_team_id" db:"winner_team_id"`

	SeasonYear      int       `json:"season_year" db:"season_year"`
	RankGroupType   string    `json:"rank_group_type" db:"rank_group_type"`
	RankGroupFK     int64     `json:"rank_group_fk" db:"rank_group_fk"`
	GenderCode      string    `json:"gender_code" db:"gender_code"`
	CheckpointDate  *Date     `json:"checkpoint_date" db:"checkpoint_date"`
	CalculationDate time.Time `json:"calculation_date" db:"calculation_date"`

	TeamAName      *string `json:"team_a_name" db:"team_a_name"`
	TeamBName      *string `json:"team_b_name" db:"team_b_name"`
	WinnerTeamName *string `json:"winner_team_name" db:"winner_team_name"`
}

// Involves reports whether team raced in this matchup
func (m *TeamKnockoutMatchup) Involves(team int64) bool {
	return m.TeamAID == team || m.TeamBID == team
}

// Opponent returns the other team in the matchup
func (m *TeamKnockoutMatchup) Opponent(team int64) int64 {
	if m.TeamAID == team {
		return m.TeamBID
	}
	return m.TeamAID
}

// NameOf returns the joined display name for either side
func (m *TeamKnockoutMatchup) NameOf(team int64) *string {
	switch team {
	case m.TeamAID:
		return m.TeamAName
	case m.TeamBID:
		return m.TeamBName
	}
	return nil
}

// WonBy reports whether team is the declared winner
func (m *TeamKnockoutMatchup) WonBy(team int64) bool {
	return m.WinnerTeamID != nil && *m.WinnerTeamID == team
}

// MatchupStats summarises a team's record over a whole filtered matchup set
type MatchupStats struct {
	TotalMatchups int     `json:"total_matchups" db:"total_matchups"`
	Wins          int     `json:"wins" db:"wins"`
	Losses        int     `json:"losses" db:"losses"`
	WinPct        float64 `json:"win_pct" db:"-"`
}

// HeadToHead is the pairwise record between two teams
type HeadToHead struct {
	TeamAID           int64                 `json:"team_a_id"`
	TeamAName         *string               `json:"team_a_name"`
	TeamBID           int64                 `json:"team_b_id"`
	TeamBName         *string               `json:"team_b_name"`
	TotalMatchups     int                   `json:"total_matchups"`
	TeamAWins         int                   `json:"team_a_wins"`
	TeamBWins         int                   `json:"team_b_wins"`
	LatestMatchupDate *Date                 `json:"latest_matchup_date"`
	LatestWinnerID    *int64                `json:"latest_winner_id"`
	Matchups          []TeamKnockoutMatchup `json:"matchups"`
}

// CommonOpponent is one shared opponent with each team's record against it
type CommonOpponent struct {
	OpponentID   int64   `json:"opponent_id"`
	OpponentName *string `json:"opponent_name"`
	TeamAWins    int     `json:"team_a_wins"`
	TeamALosses  int     `json:"team_a_losses"`
	TeamAMeets   int     `json:"team_a_meetings"`
	TeamBWins    int     `json:"team_b_wins"`
	TeamBLosses  int     `json:"team_b_losses"`
	TeamBMeets   int     `json:"team_b_meetings"`
}

// CommonOpponentsAnalysis compares two teams through the opponents they share
type CommonOpponentsAnalysis struct {
	TeamAID              int64            `json:"team_a_id"`
	TeamAName            *string          `json:"team_a_name"`
	TeamBID              int64            `json:"team_b_id"`
	TeamBName            *string          `json:"team_b_name"`
	TotalCommonOpponents int              `json:"total_common_opponents"`
	TeamARecordVsCommon  string           `json:"team_a_record_vs_common"`
	TeamBRecordVsCommon  string           `json:"team_b_record_vs_common"`
	CommonOpponents      []CommonOpponent `json:"common_opponents"`
}

// MeetMatchups lists every pairwise result at one race
type MeetMatchups struct {
	RaceHnd       int64                 `json:"race_hnd"`
	MeetName      *string               `json:"meet_name"`
	RaceDate      *Date                 `json:"race_date"`
	TotalMatchups int                   `json:"total_matchups"`
	Matchups      []TeamKnockoutMatchup `json:"matchups"`
}
