package repository

import (
	"strings"
)

// Tables owned by the calculation pipeline
const (
	TableAthleteRankings = "iz_rankings_xcri_athlete_rankings"
	TableTeamRankings    = "iz_rankings_xcri_team_rankings"
	TableComponents      = "iz_rankings_xcri_scs_components"
	TableMetadata        = "iz_rankings_xcri_calculation_metadata"
	TableKnockout        = "iz_rankings_xcri_team_knockout"
	TableMatchups        = "iz_rankings_xcri_team_knockout_matchups"
	TableTeamFive        = "iz_rankings_xcri_team_five"
	TableSeasonResumes   = "iz_groups_season_resumes"
)

// HealthTables are counted by the health endpoint
var HealthTables = []string{
	TableAthleteRankings,
	TableTeamRankings,
	TableComponents,
	TableMetadata,
	TableKnockout,
	TableMatchups,
}

func qualify(alias string, columns ...string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

var athleteColumns = []string{
	"ranking_id", "season_year", "division_code", "gender_code", "checkpoint_date",
	"algorithm_type", "scoring_group", "anet_athlete_hnd", "athlete_name_first",
	"athlete_name_last", "anet_team_hnd", "team_name", "team_group_fk",
	"athlete_rank", "xcri_score", "races_count", "season_average", "best_performance",
	"most_recent_race_date", "h2h_wins", "h2h_losses", "h2h_meetings", "h2h_win_rate",
	"min_opponent_quality", "avg_opponent_quality", "scs_score", "scs_rank",
	"saga_score", "saga_rank", "sewr_score", "sewr_rank", "osma_score", "osma_rank",
	"calculated_at", "algorithm_version", "processing_time_seconds",
}

var teamColumns = []string{
	"ranking_id", "season_year", "division_code", "gender_code", "checkpoint_date",
	"algorithm_type", "scoring_group", "anet_team_hnd", "team_name", "team_group_fk",
	"regl_group_name", "conf_group_name", "team_rank", "team_xcri_score",
	"most_recent_race_date", "athletes_count", "top7_average", "top5_average",
	"squad_depth_score", "top_athlete_1_hnd", "top_athlete_2_hnd", "top_athlete_3_hnd",
	"top_athlete_4_hnd", "top_athlete_5_hnd", "top_athlete_6_hnd", "top_athlete_7_hnd",
	"calculated_at", "algorithm_version",
}

var componentColumns = []string{
	"component_id", "ranking_id", "season_year", "division_code", "gender_code",
	"scoring_group", "checkpoint_date", "anet_athlete_hnd", "athlete_name_first",
	"athlete_name_last", "team_name", "saga_score", "saga_rank", "sewr_score",
	"sewr_rank", "osma_score", "osma_rank", "xcri_score", "xcri_rank", "races_used",
	"best_ags", "avg_ags", "worst_ags", "best_cpr", "avg_cpr", "worst_cpr",
	"avg_race_quality", "best_race_quality", "avg_opponent_count", "total_opponents",
	"created_at", "updated_at",
}

var metadataColumns = []string{
	"metadata_id", "season_year", "division_code", "gender_code", "checkpoint_date",
	"algorithm_type", "scoring_group", "calculated_at", "algorithm_version",
	"total_performances", "total_athletes", "total_teams", "total_races",
	"processing_time_seconds", "cache_used", "cache_hit_rate", "athletes_with_h2h",
	"athletes_no_h2h", "heavy_fallback_count", "calculation_status", "error_message",
}

var knockoutColumns = []string{
	"id", "team_id", "team_name", "team_code", "rank_group_type", "rank_group_fk",
	"gender_code", "regl_group_fk", "conf_group_fk", "regl_finish", "conf_finish",
	"knockout_rank", "team_five_rank", "elimination_method", "team_size",
	"athletes_with_xcri", "team_five_xcri_pts", "h2h_wins", "h2h_losses",
	"h2h_win_pct", "checkpoint_date", "season_year", "calculation_date",
}

var matchupColumns = []string{
	"matchup_id", "race_hnd", "race_date", "meet_name", "team_a_id", "team_a_rank",
	"team_a_score", "team_b_id", "team_b_rank", "team_b_score", "winner_team_id",
	"season_year", "rank_group_type", "rank_group_fk", "gender_code",
	"checkpoint_date", "calculation_date",
}
