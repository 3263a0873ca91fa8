package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subsum/internal/llm"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out calls to the wrapped Completer.
type RateLimiter struct {
	next    llm.Completer
	limiter *rate.Limiter
	log     *slog.Logger
}

// New wraps next so that at most burst calls start back to back and the rest
// wait interval between each other. A non-positive interval disables limiting.
func New(next llm.Completer, interval time.Duration, burst int, log *slog.Logger) *RateLimiter {
	if burst <= 0 {
		burst = defaultBurst
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &RateLimiter{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

func (rl *RateLimiter) Complete(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()

	if err := rl.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	if waited := time.Since(start); waited >= slowWaitLog {
		rl.log.DebugContext(ctx, "Rate limiting completion request",
			"waited", waited,
			"messageCount", len(req.Messages))
	}

	return rl.next.Complete(ctx, req)
}
