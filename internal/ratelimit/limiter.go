// Package ratelimit caps how often one client may submit feedback.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"xcri-rankings/internal/config"
	"xcri-rankings/pkg/logging"
)

// Backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Rule caps submissions within a sliding window
type Rule struct {
	Name   string
	Window time.Duration
	Limit  int
}

// Decision is the outcome of one Allow call. When Allowed is false, Rule is
// the first rule that was exceeded.
type Decision struct {
	Allowed    bool
	Rule       Rule
	RetryAfter time.Duration
}

// Limiter atomically checks every rule for a key and, when all pass,
// records the attempt.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Backend() string
	Close() error
}

// FeedbackRules returns the hourly rule followed by the daily rule
func FeedbackRules(hourly, daily int) []Rule {
	return []Rule{
		{Name: "hour", Window: time.Hour, Limit: hourly},
		{Name: "day", Window: 24 * time.Hour, Limit: daily},
	}
}

// New builds the limiter selected by feedback.backend
func New(ctx context.Context, fb config.FeedbackConfig, rc config.RedisConfig, logger *logging.StructuredLogger) (Limiter, error) {
	rules := FeedbackRules(fb.HourlyLimit, fb.DailyLimit)

	switch fb.Backend {
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         rc.Addr,
			Password:     rc.Password,
			DB:           rc.DB,
			PoolSize:     rc.PoolSize,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}

		logger.Info(ctx, "[RATE_LIMIT] Using redis backend", logging.Fields{
			"addr":   rc.Addr,
			"prefix": rc.KeyPrefix,
		})
		return NewRedis(client, rules, rc.KeyPrefix), nil

	case BackendMemory, "":
		logger.Info(ctx, "[RATE_LIMIT] Using in-memory backend", logging.Fields{
			"hourly_limit": fb.HourlyLimit,
			"daily_limit":  fb.DailyLimit,
		})
		return NewMemory(rules, 10*time.Minute), nil
	}

	return nil, fmt.Errorf("unknown rate limit backend %q", fb.Backend)
}

func horizon(rules []Rule) time.Duration {
	var longest time.Duration
	for _, r := range rules {
		if r.Window > longest {
			longest = r.Window
		}
	}
	return longest
}
