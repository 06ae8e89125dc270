// Package ratelimit enforces a per-identifier request quota over a fixed
// window, counted in Redis.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// Config configures the limiter.
type Config struct {
	// Requests is the number of requests allowed per window.
	Requests int

	// Window is the fixed window duration, anchored to the first request.
	Window time.Duration
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() Config {
	return Config{
		Requests: 10,
		Window:   time.Minute,
	}
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per identifier in a fixed window. The window's
// expiry is set only on the first increment, so bursts at a window boundary
// may reach twice the nominal rate; that approximation is intentional.
//
// The limiter fails open: if the backing store is unavailable, requests are
// allowed through, since counter unavailability must not block the service.
type Limiter struct {
	rdb    redis.Cmdable
	logger *observability.Logger
	config Config
}

// NewLimiter creates a Redis-backed limiter.
func NewLimiter(rdb redis.Cmdable, logger *observability.Logger, config Config) *Limiter {
	if config.Requests <= 0 {
		config.Requests = DefaultConfig().Requests
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	return &Limiter{rdb: rdb, logger: logger, config: config}
}

// Limit returns the configured per-window request quota.
func (l *Limiter) Limit() int {
	return l.config.Requests
}

// Check tests and consumes quota for the identifier. A rejected request does
// not increment the counter.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	key := "ratelimit:" + identifier

	current, err := l.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		l.logger.Error(ctx, "rate limiter store failure, failing open", "error", err, "identifier", identifier)
		return Result{Allowed: true, Remaining: l.config.Requests, ResetAt: time.Now().Add(l.config.Window)}
	}

	count := 0
	if current != "" {
		count, _ = strconv.Atoi(current)
	}

	if count >= l.config.Requests {
		l.logger.Warn(ctx, "rate limit exceeded",
			"identifier", identifier,
			"count", count,
			"limit", l.config.Requests,
		)
		return Result{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(l.config.Window)}
	}

	pipe := l.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	// NX keeps the window anchored to the first request
	pipe.ExpireNX(ctx, key, l.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error(ctx, "rate limiter increment failed, failing open", "error", err, "identifier", identifier)
		return Result{Allowed: true, Remaining: l.config.Requests, ResetAt: time.Now().Add(l.config.Window)}
	}

	return Result{
		Allowed:   true,
		Remaining: l.config.Requests - count - 1,
		ResetAt:   time.Now().Add(l.config.Window),
	}
}
