package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRateLimitRepository_RecordAndCount(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, "rl", 2*time.Minute)

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-90 * time.Second, -30 * time.Second, -10 * time.Second} {
		if err := repo.RecordAttempt(ctx, "writes:192.0.2.1", now.Add(offset)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "writes:192.0.2.1", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts inside the window, got %d", count)
	}

	remaining := server.TTL("rl:writes:192.0.2.1")
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Fatalf("expected ttl within (0, 2m], got %v", remaining)
	}
}

func TestRateLimitRepository_TrimAndOldest(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "", time.Minute)

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	stale := now.Add(-5 * time.Minute)
	recent := now.Add(-20 * time.Second)

	for _, at := range []time.Time{stale, recent} {
		if err := repo.RecordAttempt(ctx, "k", at); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	if err := repo.TrimWindow(ctx, "k", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	total, err := client.ZCard(ctx, defaultRateLimitPrefix+":k").Result()
	if err != nil {
		t.Fatalf("ZCard returned error: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected stale attempt to be trimmed, %d remain", total)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "k", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !ok || !oldest.Equal(recent) {
		t.Fatalf("expected oldest attempt %v, got %v (ok=%v)", recent, oldest, ok)
	}
}

func TestRateLimitRepository_EmptyAndInvalidWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "rl", time.Minute)
	ctx := context.Background()
	now := time.Now()

	if _, ok, err := repo.OldestAttempt(ctx, "missing", time.Minute, now); err != nil || ok {
		t.Fatalf("expected no attempts for unknown key, got ok=%v err=%v", ok, err)
	}

	if _, err := repo.CountAttempts(ctx, "k", 0, now); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
	if err := repo.TrimWindow(ctx, "k", -time.Second, now); err == nil {
		t.Fatalf("expected error for negative window")
	}
}
