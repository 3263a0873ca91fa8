package ratelimiter_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"subsum/internal/llm"
	"subsum/internal/ratelimiter"
)

type countingCompleter struct {
	calls atomic.Int64
}

func (c *countingCompleter) Complete(context.Context, llm.Request) (string, error) {
	c.calls.Add(1)

	return "ok", nil
}

func TestRateLimiterPassesThrough(t *testing.T) {
	next := &countingCompleter{}
	rl := ratelimiter.New(next, 0, 0, slog.New(slog.DiscardHandler))

	for range 5 {
		got, err := rl.Complete(context.Background(), llm.Request{})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if got != "ok" {
			t.Fatalf("unexpected result: %q", got)
		}
	}

	if n := next.calls.Load(); n != 5 {
		t.Fatalf("expected 5 calls, got %d", n)
	}
}

func TestRateLimiterSpacesCalls(t *testing.T) {
	next := &countingCompleter{}
	interval := 50 * time.Millisecond
	rl := ratelimiter.New(next, interval, 1, slog.New(slog.DiscardHandler))

	start := time.Now()
	for range 3 {
		if _, err := rl.Complete(context.Background(), llm.Request{}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 2*interval-10*time.Millisecond {
		t.Fatalf("expected calls to be spaced, elapsed %v", elapsed)
	}
}

func TestRateLimiterHonoursCancellation(t *testing.T) {
	next := &countingCompleter{}
	rl := ratelimiter.New(next, time.Hour, 1, slog.New(slog.DiscardHandler))

	if _, err := rl.Complete(context.Background(), llm.Request{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rl.Complete(ctx, llm.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if n := next.calls.Load(); n != 1 {
		t.Fatalf("expected wrapped completer to be called once, got %d", n)
	}
}
