package redis

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/metrics"
)

// rateLimitScript implements a token bucket: refill from elapsed time,
// clamp to capacity, consume one token if available. Runs atomically on
// the Redis side so concurrent checks never double-spend a token.
// ARGV: [1]=now_ms, [2]=capacity, [3]=tokens per minute
var rateLimitScript = goredis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last_refill = tonumber(redis.call('HGET', KEYS[1], 'last_refill')) or tonumber(ARGV[1])
if tokens == nil then
	tokens = tonumber(ARGV[2])
end
local elapsed_min = (tonumber(ARGV[1]) - last_refill) / 60000.0
tokens = math.min(tonumber(ARGV[2]), tokens + elapsed_min * tonumber(ARGV[3]))
local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last_refill', ARGV[1])
redis.call('EXPIRE', KEYS[1], 300)
return allowed
`)

// VoteRateLimiter implements token bucket rate limiting for votes,
// keyed per voter within a community.
type VoteRateLimiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	capacity int
	rate     int // tokens per minute
}

// NewVoteRateLimiter creates a new vote rate limiter.
// capacity: maximum burst size (tokens)
// rate: sustained rate (tokens per minute)
func NewVoteRateLimiter(client *Client, clock clockwork.Clock, capacity, rate int) *VoteRateLimiter {
	return &VoteRateLimiter{
		rdb:      client.rdb,
		clock:    clock,
		capacity: capacity,
		rate:     rate,
	}
}

// Allow checks if a vote is allowed for the voter.
// Returns true if allowed (token consumed), false if rate limited.
func (v *VoteRateLimiter) Allow(ctx context.Context, communityID, voterID string) (bool, error) {
	key := fmt.Sprintf("rate_limit:votes:%s:%s", communityID, voterID)

	result, err := rateLimitScript.Run(ctx, v.rdb, []string{key},
		v.clock.Now().UnixMilli(),
		v.capacity,
		v.rate,
	).Int()
	if err != nil {
		metrics.VoteRateLimitChecks.WithLabelValues("error").Inc()
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if result == 1 {
		metrics.VoteRateLimitChecks.WithLabelValues("allowed").Inc()
		return true, nil
	}
	metrics.VoteRateLimitChecks.WithLabelValues("limited").Inc()
	return false, nil
}
