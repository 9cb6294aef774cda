package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestMemory(t *testing.T, c *clock) *Memory {
	m := NewMemory(FeedbackRules(3, 10), 0)
	m.now = c.Now
	t.Cleanup(func() { m.Close() })
	return m
}

func newTestRedis(t *testing.T, c *clock) (*Redis, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	r := NewRedis(client, FeedbackRules(3, 10), "test:")
	r.now = c.Now
	t.Cleanup(func() { r.Close() })
	return r, mini
}

// backends runs the same scenario against every Limiter implementation
func backends(t *testing.T, fn func(t *testing.T, l Limiter, c *clock)) {
	t.Run("memory", func(t *testing.T) {
		c := newClock()
		fn(t, newTestMemory(t, c), c)
	})
	t.Run("redis", func(t *testing.T) {
		c := newClock()
		r, _ := newTestRedis(t, c)
		fn(t, r, c)
	})
}

func TestLimiter_HourlyLimit(t *testing.T) {
	backends(t, func(t *testing.T, l Limiter, c *clock) {
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			d, err := l.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, d.Allowed, "submission %d", i+1)
			c.Advance(time.Minute)
		}

		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "hour", d.Rule.Name)
		assert.Equal(t, 57*time.Minute, d.RetryAfter)

		other, err := l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, other.Allowed, "keys are independent")

		c.Advance(57*time.Minute + time.Second)
		d, err = l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "oldest submission left the hourly window")
	})
}

func TestLimiter_DailyLimit(t *testing.T) {
	backends(t, func(t *testing.T, l Limiter, c *clock) {
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			d, err := l.Allow(ctx, "client")
			require.NoError(t, err)
			require.True(t, d.Allowed, "submission %d", i+1)
			c.Advance(2 * time.Hour)
		}

		d, err := l.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "day", d.Rule.Name)
		assert.Equal(t, 24*time.Hour, d.Rule.Window)

		c.Advance(5 * time.Hour)
		d, err = l.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestLimiter_RejectedAttemptsAreNotRecorded(t *testing.T) {
	backends(t, func(t *testing.T, l Limiter, c *clock) {
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := l.Allow(ctx, "k")
			require.NoError(t, err)
		}
		for i := 0; i < 5; i++ {
			d, err := l.Allow(ctx, "k")
			require.NoError(t, err)
			require.False(t, d.Allowed)
		}

		c.Advance(time.Hour + time.Second)
		d, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestMemory_SweepDropsIdleKeys(t *testing.T) {
	c := newClock()
	m := newTestMemory(t, c)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "a")
	c.Advance(23 * time.Hour)
	_, _ = m.Allow(ctx, "b")
	assert.Equal(t, 2, m.Len())

	c.Advance(2 * time.Hour)
	m.sweep()
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ConcurrentAllowNeverExceedsLimit(t *testing.T) {
	c := newClock()
	m := newTestMemory(t, c)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := m.Allow(context.Background(), "burst")
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, allowed)
}

func TestRedis_KeyExpiresAfterLongestWindow(t *testing.T) {
	c := newClock()
	r, mini := newTestRedis(t, c)

	_, err := r.Allow(context.Background(), "10.1.1.1")
	require.NoError(t, err)

	assert.True(t, mini.Exists("test:10.1.1.1"))
	assert.Equal(t, 24*time.Hour, mini.TTL("test:10.1.1.1"))
}

func TestRedis_BackendFailure(t *testing.T) {
	c := newClock()
	r, mini := newTestRedis(t, c)
	mini.SetError("ERR backend offline")

	_, err := r.Allow(context.Background(), "x")
	assert.Error(t, err)
}
