// Package cache stores computed reports in Redis, encoded with msgpack.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/spec-kit/incident-analytics/internal/analysis"
)

// ErrMiss is returned when no report is cached under a key.
var ErrMiss = errors.New("report cache miss")

const keyPrefix = "incident-analytics:report:"

// ReportCache is a Redis-backed report store. A nil client disables it.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache wraps client; ttl <= 0 keeps entries until invalidated.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is configured.
func (c *ReportCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key builds the cache key for a report variant.
func Key(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}

// Get loads the report stored under key.
func (c *ReportCache) Get(ctx context.Context, key string) (*analysis.Report, error) {
	if !c.Enabled() {
		return nil, ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var report analysis.Report
	if err := msgpack.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &report, nil
}

// Set stores report under key.
func (c *ReportCache) Set(ctx context.Context, key string, report *analysis.Report) error {
	if !c.Enabled() || report == nil {
		return nil
	}
	raw, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached report and returns how many were removed.
func (c *ReportCache) Invalidate(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	removed := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan reports: %w", err)
	}
	return removed, nil
}
