package ratelimit

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Memory keeps per-key submission timestamps in process. Counts reset on
// restart and are not shared between replicas.
type Memory struct {
	rules   []Rule
	horizon time.Duration
	hits    *xsync.Map[string, []time.Time]
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewMemory starts a limiter whose janitor drops idle keys every interval.
// A non-positive interval disables the janitor.
func NewMemory(rules []Rule, interval time.Duration) *Memory {
	m := &Memory{
		rules:   rules,
		horizon: horizon(rules),
		hits:    xsync.NewMap[string, []time.Time](),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if interval > 0 {
		go m.janitor(interval)
	} else {
		close(m.done)
	}
	return m
}

// Allow implements Limiter
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	var decision Decision

	m.hits.Compute(key, func(old []time.Time, _ bool) ([]time.Time, xsync.ComputeOp) {
		kept := prune(old, now.Add(-m.horizon))
		decision = evaluate(m.rules, kept, now)

		if decision.Allowed {
			return append(kept, now), xsync.UpdateOp
		}
		if len(kept) == 0 {
			return nil, xsync.DeleteOp
		}
		return kept, xsync.UpdateOp
	})

	return decision, nil
}

// Backend implements Limiter
func (m *Memory) Backend() string {
	return BackendMemory
}

// Close stops the janitor
func (m *Memory) Close() error {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	<-m.done
	return nil
}

// Len is the number of tracked keys
func (m *Memory) Len() int {
	return m.hits.Size()
}

func (m *Memory) janitor(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	cutoff := m.now().Add(-m.horizon)

	var keys []string
	m.hits.Range(func(key string, _ []time.Time) bool {
		keys = append(keys, key)
		return true
	})

	for _, key := range keys {
		m.hits.Compute(key, func(old []time.Time, loaded bool) ([]time.Time, xsync.ComputeOp) {
			if !loaded {
				return nil, xsync.CancelOp
			}
			kept := prune(old, cutoff)
			if len(kept) == 0 {
				return nil, xsync.DeleteOp
			}
			return kept, xsync.UpdateOp
		})
	}
}

// prune copies the timestamps after cutoff into a fresh slice
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := make([]time.Time, 0, len(hits)+1)
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// evaluate checks rules in order against timestamps sorted oldest first
func evaluate(rules []Rule, hits []time.Time, now time.Time) Decision {
	for _, rule := range rules {
		since := now.Add(-rule.Window)

		count := 0
		var oldest time.Time
		for _, t := range hits {
			if t.After(since) {
				if count == 0 {
					oldest = t
				}
				count++
			}
		}

		if count >= rule.Limit {
			return Decision{
				Rule:       rule,
				RetryAfter: oldest.Add(rule.Window).Sub(now),
			}
		}
	}
	return Decision{Allowed: true}
}
