package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/casting-agency/internal/core/port"
)

const defaultRateLimitPrefix = "casting:rate-limit"

var errInvalidWindow = errors.New("window must be positive")

// RateLimitRepository keeps write attempts in one sorted set per client key, scored by
// attempt time in nanoseconds.
type RateLimitRepository struct {
	client red.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRateLimitRepository wires a Redis client into a sliding-window store. Keys expire
// after ttl of inactivity.
func NewRateLimitRepository(client red.Cmdable, keyPrefix string, ttl time.Duration) *RateLimitRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRateLimitPrefix
	}
	return &RateLimitRepository{client: client, prefix: prefix, ttl: ttl}
}

// RecordAttempt adds an attempt at the given instant and refreshes the key TTL.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, key string, at time.Time) error {
	redisKey := r.key(key)
	nanos := at.UnixNano()

	_, err := r.client.TxPipelined(ctx, func(pipe red.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, red.Z{Score: float64(nanos), Member: strconv.FormatInt(nanos, 10)})
		if r.ttl > 0 {
			pipe.Expire(ctx, redisKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record attempt: %w", err)
	}
	return nil
}

// CountAttempts counts attempts inside [reference-window, reference].
func (r *RateLimitRepository) CountAttempts(ctx context.Context, key string, window time.Duration, reference time.Time) (int, error) {
	if window <= 0 {
		return 0, errInvalidWindow
	}

	lower, upper := windowBounds(window, reference)
	count, err := r.client.ZCount(ctx, r.key(key), lower, upper).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcount: %w", err)
	}
	return int(count), nil
}

// TrimWindow drops attempts that fell out of the window.
func (r *RateLimitRepository) TrimWindow(ctx context.Context, key string, window time.Duration, reference time.Time) error {
	if window <= 0 {
		return errInvalidWindow
	}

	lower, _ := windowBounds(window, reference)
	if err := r.client.ZRemRangeByScore(ctx, r.key(key), "-inf", "("+lower).Err(); err != nil {
		return fmt.Errorf("redis zremrangebyscore: %w", err)
	}
	return nil
}

// OldestAttempt returns the earliest attempt still inside the window.
func (r *RateLimitRepository) OldestAttempt(ctx context.Context, key string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	if window <= 0 {
		return time.Time{}, false, errInvalidWindow
	}

	lower, upper := windowBounds(window, reference)
	members, err := r.client.ZRangeByScore(ctx, r.key(key), &red.ZRangeBy{
		Min:   lower,
		Max:   upper,
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis zrangebyscore: %w", err)
	}
	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	nanos, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse attempt timestamp: %w", err)
	}
	return time.Unix(0, nanos), true, nil
}

func (r *RateLimitRepository) key(key string) string {
	return r.prefix + ":" + strings.TrimSpace(key)
}

func windowBounds(window time.Duration, reference time.Time) (string, string) {
	return strconv.FormatInt(reference.Add(-window).UnixNano(), 10),
		strconv.FormatInt(reference.UnixNano(), 10)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
