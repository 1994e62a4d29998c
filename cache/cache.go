// Package cache holds the short-lived Redis cache for live monthly reports.
// Live reports are recomputed on every read, so a small TTL keeps repeated
// dashboard refreshes cheap without making the numbers stale for long.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTTL bounds how stale a cached live report can get.
const DefaultTTL = 60 * time.Second

// ReportCache caches serialized live reports per (user, month, year). A nil
// *ReportCache is valid and behaves as a cache that always misses, so callers
// never need to branch on whether Redis is configured.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: DefaultTTL}
}

func key(userID string, month, year int) string {
	return fmt.Sprintf("livereport:%s:%d-%02d", userID, year, month)
}

// Get returns the cached payload for the month, if any.
func (c *ReportCache) Get(ctx context.Context, userID string, month, year int) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, key(userID, month, year)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("report cache get failed: %v", err)
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload for the month. Failures are logged, not surfaced;
// the cache must never fail a request.
func (c *ReportCache) Set(ctx context.Context, userID string, month, year int, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key(userID, month, year), payload, c.ttl).Err(); err != nil {
		logrus.Warnf("report cache set failed: %v", err)
	}
}

// InvalidateMonth drops the cached report for the month a bill write landed
// in, so the next live read reflects it immediately.
func (c *ReportCache) InvalidateMonth(ctx context.Context, userID string, month, year int) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(userID, month, year)).Err(); err != nil {
		logrus.Warnf("report cache invalidate failed: %v", err)
	}
}
