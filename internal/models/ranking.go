package models

import (
	"time"
)

// AthleteRanking represents one athlete within one ranking generation.
// Nullable columns are pointers.
type AthleteRanking struct {
	RankingID      int64   `json:"ranking_id" db:"ranking_id"`
	SeasonYear     int     `json:"season_year" db:"season_year"`
	DivisionCode   int     `json:"division_code" db:"division_code"`
	GenderCode     string  `json:"gender_code" db:"gender_code"`
	CheckpointDate *Date   `json:"checkpoint_date" db:"checkpoint_date"`
	AlgorithmType  string  `json:"algorithm_type" db:"algorithm_type"`
	ScoringGroup   string  `json:"scoring_group" db:"scoring_group"`

	AnetAthleteHnd   int64   `json:"anet_athlete_hnd" db:"anet_athlete_hnd"`
	AthleteNameFirst *string `json:"athlete_name_first" db:"athlete_name_first"`
	AthleteNameLast  *string `json:"athlete_name_last" db:"athlete_name_last"`

	AnetTeamHnd   int64   `json:"anet_team_hnd" db:"anet_team_hnd"`
	TeamName      *string `json:"team_name" db:"team_name"`
	TeamGroupFK   *int64  `json:"team_group_fk" db:"team_group_fk"`
	ReglGroupName *string `json:"regl_group_name" db:"regl_group_name"`
	ConfGroupName *string `json:"conf_group_name" db:"conf_group_name"`

	AthleteRank        int      `json:"athlete_rank" db:"athlete_rank"`
	XCRIScore          *float64 `json:"xcri_score" db:"xcri_score"`
	RacesCount         *int     `json:"races_count" db:"races_count"`
	SeasonAverage      *float64 `json:"season_average" db:"season_average"`
	BestPerformance    *float64 `json:"best_performance" db:"best_performance"`
	MostRecentRaceDate *Date    `json:"most_recent_race_date" db:"most_recent_race_date"`

	H2HWins     int      `json:"h2h_wins" db:"h2h_wins"`
	H2HLosses   int      `json:"h2h_losses" db:"h2h_losses"`
	H2HMeetings int      `json:"h2h_meetings" db:"h2h_meetings"`
	H2HWinRate  *float64 `json:"h2h_win_rate" db:"h2h_win_rate"`

	MinOpponentQuality *float64 `json:"min_opponent_quality" db:"min_opponent_quality"`
	AvgOpponentQuality *float64 `json:"avg_opponent_quality" db:"avg_opponent_quality"`

	SCSScore  *float64 `json:"scs_score" db:"scs_score"`
	SCSRank   *int     `json:"scs_rank" db:"scs_rank"`
	SAGAScore *float64 `json:"saga_score" db:"saga_score"`
	SAGARank  *int     `json:"saga_rank" db:"saga_rank"`
	SEWRScore *float64 `json:"sewr_score" db:"sewr_score"`
	SEWRRank  *int     `json:"sewr_rank" db:"sewr_rank"`
	OSMAScore *float64 `json:"osma_score" db:"osma_score"`
	OSMARank  *int     `json:"osma_rank" db:"osma_rank"`

	CalculatedAt          time.Time `json:"calculated_at" db:"calculated_at"`
	AlgorithmVersion      *string   `json:"algorithm_version" db:"algorithm_version"`
	ProcessingTimeSeconds *float64  `json:"processing_time_seconds" db:"processing_time_seconds"`
}

// TeamRanking represents one team within one ranking generation.
// The seven top-athlete handles are a fixed-width roster preview.
type TeamRanking struct {
	RankingID      int64  `json:"ranking_id" db:"ranking_id"`
	SeasonYear     int    `json:"season_year" db:"season_year"`
	DivisionCode   int    `json:"division_code" db:"division_code"`
	GenderCode     string `json:"gender_code" db:"gender_code"`
	CheckpointDate *Date  `json:"checkpoint_date" db:"checkpoint_date"`
	AlgorithmType  string `json:"algorithm_type" db:"algorithm_type"`
	ScoringGroup   string `json:"scoring_group" db:"scoring_group"`

	AnetTeamHnd   int64   `json:"anet_team_hnd" db:"anet_team_hnd"`
	TeamName      *string `json:"team_name" db:"team_name"`
	TeamGroupFK   *int64  `json:"team_group_fk" db:"team_group_fk"`
	ReglGroupName *string `json:"regl_group_name" db:"regl_group_name"`
	ConfGroupName *string `json:"conf_group_name" db:"conf_group_name"`

	TeamRank           int      `json:"team_rank" db:"team_rank"`
	TeamXCRIScore      *float64 `json:"team_xcri_score" db:"team_xcri_score"`
	MostRecentRaceDate *Date    `json:"most_recent_race_date" db:"most_recent_race_date"`

	AthletesCount   *int     `json:"athletes_count" db:"athletes_count"`
	Top7Average     *float64 `json:"top7_average" db:"top7_average"`
	Top5Average     *float64 `json:"top5_average" db:"top5_average"`
	SquadDepthScore *float64 `json:"squad_depth_score" db:"squad_depth_score"`

	TopAthlete1Hnd *int64 `json:"top_athlete_1_hnd" db:"top_athlete_1_hnd"`
	TopAthlete2Hnd *int64 `json:"top_athlete_2_hnd" db:"top_athlete_2_hnd"`
	TopAthlete3Hnd *int64 `json:"top_athlete_3_hnd" db:"top_athlete_3_hnd"`
	TopAthlete4Hnd *int64 `json:"top_athlete_4_hnd" db:"top_athlete_4_hnd"`
	TopAthlete5Hnd *int64 `json:"top_athlete_5_hnd" db:"top_athlete_5_hnd"`
	TopAthlete6Hnd *int64 `json:"top_athlete_6_hnd" db:"top_athlete_6_hnd"`
	TopAthlete7Hnd *int64 `json:"top_athlete_7_hnd" db:"top_athlete_7_hnd"`

	CalculatedAt     time.Time `json:"calculated_at" db:"calculated_at"`
	AlgorithmVersion *string   `json:"algorithm_version" db:"algorithm_version"`
}

// SeasonResume is an externally authored HTML summary of a team's season
type SeasonResume struct {
	GroupResumeID int64      `json:"group_resume_id" db:"group_resume_id"`
	SeasonYear    int        `json:"season_year" db:"season_year"`
	AnetGroupHnd  int64      `json:"anet_group_hnd" db:"anet_group_hnd"`
	DivisionCode  int        `json:"division_code" db:"division_code"`
	GenderCode    string     `json:"gender_code" db:"gender_code"`
	ResumeHTML    string     `json:"resume_html" db:"resume_html"`
	CreatedAt     *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at" db:"updated_at"`
}
