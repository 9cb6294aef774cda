package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"xcri-rankings/internal/config"
	"xcri-rankings/internal/github"
	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ratelimit"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

const titleMessageLength = 80

var feedbackTitles = map[string]string{
	models.FeedbackBug:      "Bug Report",
	models.FeedbackGeneral:  "User Feedback",
	models.FeedbackQuestion: "User Question",
}

var feedbackLabels = map[string][]string{
	models.FeedbackBug:      {"bug", "user-feedback"},
	models.FeedbackGeneral:  {"enhancement", "user-feedback"},
	models.FeedbackQuestion: {"question", "user-feedback"},
}

// IssueCreator files an issue for a submission
type IssueCreator interface {
	CreateIssue(ctx context.Context, issue github.IssueRequest) (*github.Issue, error)
}

// FeedbackService turns rate-limited feedback submissions into issues
type FeedbackService struct {
	cfg      config.FeedbackConfig
	limiter  ratelimit.Limiter
	issues   IssueCreator
	validate *validator.Validate
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewFeedbackService creates a new feedback service. A nil issues means no
// tracker is configured and every submission is refused.
func NewFeedbackService(cfg config.FeedbackConfig, limiter ratelimit.Limiter, issues IssueCreator, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *FeedbackService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &FeedbackService{
		cfg:      cfg,
		limiter:  limiter,
		issues:   issues,
		validate: v,
		logger:   logger,
		metrics:  metricsCollector,
		now:      time.Now,
	}
}

// Status reports whether submissions are accepted and the limits applied
func (s *FeedbackService) Status() models.FeedbackStatus {
	status := models.FeedbackStatus{
		Enabled:     s.cfg.Enabled,
		Configured:  s.configured(),
		Repository:  s.cfg.GitHubRepo,
		HourlyLimit: s.cfg.HourlyLimit,
		DailyLimit:  s.cfg.DailyLimit,
	}
	if s.limiter != nil {
		status.Backend = s.limiter.Backend()
	}
	return status
}

func (s *FeedbackService) configured() bool {
	return s.cfg.Enabled && s.issues != nil && s.limiter != nil
}

// Submit validates a submission, charges it to clientKey and files an issue.
// A submission that passes the limiter counts against it even if filing fails.
func (s *FeedbackService) Submit(ctx context.Context, clientKey string, sub models.FeedbackSubmission) (*models.FeedbackResult, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.FeedbackType = strings.ToLower(strings.TrimSpace(sub.FeedbackType))
	sub.Message = strings.TrimSpace(sub.Message)

	if err := s.validateSubmission(sub); err != nil {
		s.metrics.RecordFeedback(sub.FeedbackType, "invalid")
		return nil, err
	}

	if !s.configured() {
		s.metrics.RecordFeedback(sub.FeedbackType, "unavailable")
		return nil, models.ErrFeedbackUnavailable
	}

	decision, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		s.metrics.RateLimiterFailures.Inc()
		s.metrics.RecordFeedback(sub.FeedbackType, "error")
		return nil, fmt.Errorf("failed to check feedback rate limit: %w", err)
	}
	if !decision.Allowed {
		s.metrics.RateLimitRejections.Inc()
		s.metrics.RecordFeedback(sub.FeedbackType, "rate_limited")
		s.logger.Warn(ctx, "[FEEDBACK] Rate limit exceeded", logging.Fields{
			"client": clientKey,
			"window": decision.Rule.Name,
		})
		return nil, &models.RateLimitError{
			Window:     decision.Rule.Name,
			Limit:      decision.Rule.Limit,
			RetryAfter: int(math.Ceil(decision.RetryAfter.Seconds())),
		}
	}

	issue, err := s.issues.CreateIssue(ctx, s.buildIssue(sub))
	if err != nil {
		s.metrics.RecordFeedback(sub.FeedbackType, "failed")
		return nil, fmt.Errorf("failed to create feedback issue: %w", err)
	}

	s.metrics.RecordFeedback(sub.FeedbackType, "created")
	s.logger.Info(ctx, "[FEEDBACK] Issue created", logging.Fields{
		"feedback_type": sub.FeedbackType,
		"issue_number":  issue.Number,
	})

	return &models.FeedbackResult{
		Success:     true,
		Message:     "Thank you for your feedback! We've received your submission.",
		IssueNumber: issue.Number,
		IssueURL:    issue.HTMLURL,
	}, nil
}

func (s *FeedbackService) validateSubmission(sub models.FeedbackSubmission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("body", "", err.Error())
	}

	fe := fieldErrs[0]
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fe.Field(), value, "is required")
	case "oneof":
		return models.NewValidationError(fe.Field(), value, "must be one of "+fe.Param())
	case "min":
		return models.NewValidationError(fe.Field(), value, "must be at least "+fe.Param()+" characters")
	case "max":
		return models.NewValidationError(fe.Field(), value, "must be at most "+fe.Param()+" characters")
	}
	return models.NewValidationError(fe.Field(), value, "failed "+fe.Tag()+" validation")
}

func (s *FeedbackService) buildIssue(sub models.FeedbackSubmission) github.IssueRequest {
	kind := feedbackTitles[sub.FeedbackType]

	titleMessage := sub.Message
	if runes := []rune(titleMessage); len(runes) > titleMessageLength {
		titleMessage = string(runes[:titleMessageLength]) + "..."
	}

	name := sub.Name
	if name == "" {
		name = "Anonymous"
	}
	email := sub.Email
	if email == "" {
		email = "Not provided"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "## %s\n\n", kind)
	fmt.Fprintf(&body, "**Message:**\n%s\n\n---\n\n", sub.Message)
	fmt.Fprintf(&body, "**Submitted by:** %s\n", name)
	fmt.Fprintf(&body, "**Email:** %s\n", email)
	fmt.Fprintf(&body, "**Type:** %s\n", sub.FeedbackType)
	fmt.Fprintf(&body, "**Date:** %s\n", s.now().UTC().Format("2006-01-02 15:04:05 UTC"))
	body.WriteString("**Source:** XCRI Feedback Form\n")

	return github.IssueRequest{
		Title:  fmt.Sprintf("[User %s] %s", kind, titleMessage),
		Body:   body.String(),
		Labels: feedbackLabels[sub.FeedbackType],
	}
}
