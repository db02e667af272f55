package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("expected token %d to be available", i)
		}
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected bucket exhausted")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(2, 10)
	ctx := context.Background()

	tb.Allow(ctx)
	tb.Allow(ctx)
	if tb.Allow(ctx) {
		t.Fatalf("expected bucket exhausted")
	}

	// 直接推时钟，不真的 sleep
	tb.mu.Lock()
	tb.lastRefill = tb.lastRefill.Add(-time.Second)
	tb.mu.Unlock()

	if !tb.Allow(ctx) {
		t.Fatalf("expected refilled token")
	}
}

func TestTokenBucketRefillCapped(t *testing.T) {
	tb := NewTokenBucket(2, 100)

	tb.mu.Lock()
	tb.lastRefill = tb.lastRefill.Add(-time.Minute)
	tb.refill(time.Now())
	tokens := tb.tokens
	tb.mu.Unlock()

	if tokens != 2 {
		t.Fatalf("expected tokens capped at capacity, got %d", tokens)
	}
}

func TestWaitRespectsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	tb.Allow(ctx) // 耗尽
	cancel()

	if err := tb.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
