package models

import (
	"time"
)

// CalculationMetadata records the provenance of one calculation run
type CalculationMetadata struct {
	MetadataID     int64   `json:"metadata_id" db:"metadata_id"`
	SeasonYear     int     `json:"season_year" db:"season_year"`
	DivisionCode   int     `json:"division_code" db:"division_code"`
	GenderCode     string  `json:"gender_code" db:"gender_code"`
	CheckpointDate *Date   `json:"checkpoint_date" db:"checkpoint_date"`
	AlgorithmType  *string `json:"algorithm_type" db:"algorithm_type"`
	ScoringGroup   string  `json:"scoring_group" db:"scoring_group"`

	CalculatedAt     time.Time `json:"calculated_at" db:"calculated_at"`
	AlgorithmVersion *string   `json:"algorithm_version" db:"algorithm_version"`

	TotalPerformances     *int     `json:"total_performances" db:"total_performances"`
	TotalAthletes         *int     `json:"total_athletes" db:"total_athletes"`
	TotalTeams            *int     `json:"total_teams" db:"total_teams"`
	TotalRaces            *int     `json:"total_races" db:"total_races"`
	ProcessingTimeSeconds *float64 `json:"processing_time_seconds" db:"processing_time_seconds"`
	CacheUsed             bool     `json:"cache_used" db:"cache_used"`
	CacheHitRate          *float64 `json:"cache_hit_rate" db:"cache_hit_rate"`

	AthletesWithH2H    *int `json:"athletes_with_h2h" db:"athletes_with_h2h"`
	AthletesNoH2H      *int `json:"athletes_no_h2h" db:"athletes_no_h2h"`
	HeavyFallbackCount *int `json:"heavy_fallback_count" db:"heavy_fallback_count"`

	CalculationStatus string  `json:"calculation_status" db:"calculation_status"`
	ErrorMessage      *string `json:"error_message" db:"error_message"`
}

// ProcessingSummary aggregates the live calculation runs
type ProcessingSummary struct {
	TotalCalculations    int        `json:"total_calculations" db:"total_calculations"`
	SuccessfulRuns       int        `json:"successful_runs" db:"successful_runs"`
	FailedRuns           int        `json:"failed_runs" db:"failed_runs"`
	AvgProcessingSeconds *float64   `json:"avg_processing_seconds" db:"avg_processing_seconds"`
	MaxProcessingSeconds *float64   `json:"max_processing_seconds" db:"max_processing_seconds"`
	TotalAthletesRanked  *int64     `json:"total_athletes_ranked" db:"total_athletes_ranked"`
	TotalTeamsRanked     *int64     `json:"total_teams_ranked" db:"total_teams_ranked"`
	AvgCacheHitRate      *float64   `json:"avg_cache_hit_rate" db:"avg_cache_hit_rate"`
	LastCalculationAt    *time.Time `json:"last_calculation_at" db:"last_calculation_at"`
}

// Snapshot describes one historical checkpoint available for browsing
type Snapshot struct {
	CheckpointDate Date     `json:"checkpoint_date"`
	SeasonYear     int      `json:"season_year"`
	DisplayName    string   `json:"display_name"`
	Divisions      []int    `json:"divisions"`
	Genders        []string `json:"genders"`
	AthleteCount   int      `json:"athlete_count"`
}

// Snapshot metadata statuses
const (
	SnapshotAvailable = "available"
	SnapshotNotFound  = "not_found"
)

// SnapshotCombination is one division/gender pair present at a checkpoint
type SnapshotCombination struct {
	DivisionCode int    `json:"division_code" db:"division_code"`
	GenderCode   string `json:"gender_code" db:"gender_code"`
	AthleteCount int    `json:"athlete_count" db:"athlete_count"`
}

// SnapshotMetadata reports whether a checkpoint has data and for which divisions
type SnapshotMetadata struct {
	CheckpointDate     Date                  `json:"checkpoint_date"`
	SeasonYear         int                   `json:"season_year"`
	DisplayName        string                `json:"display_name"`
	Status             string                `json:"status"`
	DivisionsAvailable []int                 `json:"divisions_available"`
	Combinations       []SnapshotCombination `json:"combinations"`
	AthleteCount       int                   `json:"athlete_count"`
}

// SnapshotDisplayName formats a checkpoint the way the UI lists it
func SnapshotDisplayName(d Date) string {
	return d.Format("January 02, 2006")
}
