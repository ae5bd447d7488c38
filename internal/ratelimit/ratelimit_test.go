package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/internal/ratelimit"
)

func TestLimiter_AllowRespectsBurst(t *testing.T) {
	l := ratelimit.NewWithBurst(1, 2)

	if !l.Allow() {
		t.Fatal("expected first call to be allowed")
	}
	if !l.Allow() {
		t.Fatal("expected second call (within burst) to be allowed")
	}
	if l.Allow() {
		t.Fatal("expected third call to exceed burst and be denied")
	}
}

func TestLimiter_WaitUnblocksAfterInterval(t *testing.T) {
	l := ratelimit.NewWithBurst(1000, 1) // effectively 1ms between tokens
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("unexpected error waiting for second token: %v", err)
	}
}

func TestLimiter_New(t *testing.T) {
	l := ratelimit.New(600) // 10/s, burst 60
	if !l.Allow() {
		t.Fatal("expected first call to be allowed")
	}
}
