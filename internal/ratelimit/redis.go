package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allowScript trims the key's sorted set, checks each rule and records the
// attempt when every rule passes. ARGV: now, member, cutoff, ttl, then one
// (exclusive lower bound, limit, window) triple per rule. Returns
// {allowed, rule index, retry after ms}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[3])
for i = 5, #ARGV, 3 do
	local since = ARGV[i]
	local limit = tonumber(ARGV[i + 1])
	local window = tonumber(ARGV[i + 2])
	local count = redis.call('ZCOUNT', key, since, '+inf')
	if count >= limit then
		local retry = window
		local oldest = redis.call('ZRANGEBYSCORE', key, since, '+inf', 'WITHSCORES', 'LIMIT', 0, 1)
		if oldest[2] then
			retry = tonumber(oldest[2]) + window - now
		end
		return {0, (i - 5) / 3, retry}
	end
end
redis.call('ZADD', key, ARGV[1], ARGV[2])
redis.call('PEXPIRE', key, ARGV[4])
return {1, -1, 0}
`)

// Redis keeps one sorted set of submission times per key, so limits hold
// across replicas.
type Redis struct {
	client  *redis.Client
	rules   []Rule
	horizon time.Duration
	prefix  string
	now     func() time.Time
}

// NewRedis wraps an established client
func NewRedis(client *redis.Client, rules []Rule, prefix string) *Redis {
	return &Redis{
		client:  client,
		rules:   rules,
		horizon: horizon(rules),
		prefix:  prefix,
		now:     time.Now,
	}
}

// Allow implements Limiter
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now().UnixMilli()

	args := []interface{}{now, uuid.NewString(), now - r.horizon.Milliseconds(), r.horizon.Milliseconds()}
	for _, rule := range r.rules {
		args = append(args,
			"("+strconv.FormatInt(now-rule.Window.Milliseconds(), 10),
			rule.Limit,
			rule.Window.Milliseconds(),
		)
	}

	res, err := allowScript.Run(ctx, r.client, []string{r.prefix + key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check for %s: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit check for %s: unexpected reply %v", key, res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}

	idx := int(res[1])
	if idx < 0 || idx >= len(r.rules) {
		return Decision{}, fmt.Errorf("rate limit check for %s: unknown rule index %d", key, idx)
	}
	return Decision{
		Rule:       r.rules[idx],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Backend implements Limiter
func (r *Redis) Backend() string {
	return BackendRedis
}

// Close releases the client
func (r *Redis) Close() error {
	return r.client.Close()
}
