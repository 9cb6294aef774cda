package models

import (
	"time"
)

// Feedback types
const (
	FeedbackBug      = "bug"
	FeedbackGeneral  = "feedback"
	FeedbackQuestion = "question"
)

// FeedbackSubmission is the POST /feedback body
type FeedbackSubmission struct {
	Name         string `json:"name" validate:"omitempty,max=100"`
	Email        string `json:"email" validate:"omitempty,max=100"`
	FeedbackType string `json:"feedback_type" validate:"required,oneof=bug feedback question"`
	Message      string `json:"message" validate:"required,min=10,max=2000"`
}

// FeedbackResult is returned after an issue was filed
type FeedbackResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IssueNumber int    `json:"issue_number,omitempty"`
	IssueURL    string `json:"issue_url,omitempty"`
}

// FeedbackStatus describes whether submissions are accepted
type FeedbackStatus struct {
	Enabled     bool   `json:"enabled"`
	Configured  bool   `json:"configured"`
	Repository  string `json:"repository"`
	Backend     string `json:"rate_limit_backend"`
	HourlyLimit int    `json:"hourly_limit"`
	DailyLimit  int    `json:"daily_limit"`
}

// Health statuses
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is the /health body
type HealthStatus struct {
	Status            string           `json:"status"`
	APIVersion        string           `json:"api_version"`
	DatabaseConnected bool             `json:"database_connected"`
	DatabaseTables    map[string]int64 `json:"database_tables"`
	Timestamp         time.Time        `json:"timestamp"`
}
