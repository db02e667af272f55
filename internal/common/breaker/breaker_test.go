package breaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := New("test", 3, time.Minute)
	ctx := context.Background()
	failing := func() error { return fmt.Errorf("boom") }

	for i := 0; i < 3; i++ {
		if err := cb.Call(ctx, failing); err == nil {
			t.Fatalf("expected call error")
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %v", cb.GetState())
	}

	// 开启后快速失败，不再调用下游
	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if called {
		t.Fatalf("expected downstream not called while open")
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := New("test", 1, time.Minute)
	ctx := context.Background()

	cb.Call(ctx, func() error { return fmt.Errorf("boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state")
	}

	// 推时钟越过重置超时
	cb.mu.Lock()
	cb.lastFailTime = cb.lastFailTime.Add(-2 * time.Minute)
	cb.mu.Unlock()

	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := New("test", 1, time.Minute)
	ctx := context.Background()

	cb.Call(ctx, func() error { return fmt.Errorf("boom") })
	cb.mu.Lock()
	cb.lastFailTime = cb.lastFailTime.Add(-2 * time.Minute)
	cb.mu.Unlock()

	cb.Call(ctx, func() error { return fmt.Errorf("still down") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected reopen after half-open failure, got %v", cb.GetState())
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := New("test", 2, time.Minute)
	ctx := context.Background()

	cb.Call(ctx, func() error { return fmt.Errorf("boom") })
	cb.Call(ctx, func() error { return nil })
	cb.Call(ctx, func() error { return fmt.Errorf("boom") })

	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed state after interleaved success, got %v", cb.GetState())
	}
}
