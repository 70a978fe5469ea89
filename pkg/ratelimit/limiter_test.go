package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis/v8"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, 15*time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err.Error())
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := l.Allow(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if ok {
		t.Fatal("6th request within the window must be limited")
	}
}

func TestMemoryLimiterIndependentKeys(t *testing.T) {
	l := NewMemoryLimiter(1, 15*time.Minute)
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "a"); !ok {
		t.Fatal("first request for key a should pass")
	}
	if ok, _ := l.Allow(ctx, "b"); !ok {
		t.Fatal("key b must not share key a's budget")
	}
	if ok, _ := l.Allow(ctx, "a"); ok {
		t.Fatal("second request for key a should be limited")
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, 15*time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()

	l.Allow(ctx, "203.0.113.7")
	if ok, _ := l.Allow(ctx, "203.0.113.7"); ok {
		t.Fatal("expected limit inside window")
	}

	now = now.Add(16 * time.Minute)

	if ok, _ := l.Allow(ctx, "203.0.113.7"); !ok {
		t.Fatal("window elapsed, request should pass again")
	}

	if len(l.store) != 1 {
		t.Fatalf("stale windows should be cleaned up, store has %d entries", len(l.store))
	}
}

func TestRedisLimiter(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	defer s.Close()

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	l := NewRedisLimiter(rdb, 2, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err.Error())
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if ok, _ := l.Allow(ctx, "203.0.113.7"); ok {
		t.Fatal("request over the limit must be rejected")
	}

	s.FastForward(16 * time.Minute)

	if ok, _ := l.Allow(ctx, "203.0.113.7"); !ok {
		t.Fatal("window elapsed, request should pass again")
	}
}
