package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAttemptLimiterBlocksAfterMax(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	limiter := NewAttemptLimiter(newClient(mr), 3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, err := limiter.Allow(ctx, "a@b.c"); err != nil || !ok {
			t.Fatalf("attempt %d should be allowed: %v %v", i, ok, err)
		}
		if err := limiter.Failure(ctx, "a@b.c"); err != nil {
			t.Fatalf("failure: %v", err)
		}
	}
	if ok, _ := limiter.Allow(ctx, "a@b.c"); ok {
		t.Fatalf("expected key to be blocked")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := limiter.Allow(ctx, "a@b.c"); !ok {
		t.Fatalf("expected window to expire")
	}
}

func TestAttemptLimiterReset(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	limiter := NewAttemptLimiter(newClient(mr), 1, time.Minute)
	_ = limiter.Failure(ctx, "a@b.c")
	if ok, _ := limiter.Allow(ctx, "a@b.c"); ok {
		t.Fatalf("expected key to be blocked")
	}
	if err := limiter.Reset(ctx, "a@b.c"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := limiter.Allow(ctx, "a@b.c"); !ok {
		t.Fatalf("expected reset to clear the counter")
	}
}
