package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ReportCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewReportCache(rdb)
}

func TestReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_, ok := c.Get(ctx, "u1", 2, 2025)
	assert.False(t, ok)

	payload := []byte(`{"status":"success"}`)
	c.Set(ctx, "u1", 2, 2025, payload)

	got, ok := c.Get(ctx, "u1", 2, 2025)
	require.True(t, ok)
	assert.Equal(t, payload, got)

	// Keys are scoped per user and month.
	_, ok = c.Get(ctx, "u2", 2, 2025)
	assert.False(t, ok)
	_, ok = c.Get(ctx, "u1", 3, 2025)
	assert.False(t, ok)
}

func TestReportCacheInvalidateMonth(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	c.Set(ctx, "u1", 2, 2025, []byte("feb"))
	c.Set(ctx, "u1", 3, 2025, []byte("mar"))

	c.InvalidateMonth(ctx, "u1", 2, 2025)

	_, ok := c.Get(ctx, "u1", 2, 2025)
	assert.False(t, ok)
	got, ok := c.Get(ctx, "u1", 3, 2025)
	require.True(t, ok)
	assert.Equal(t, []byte("mar"), got)
}

func TestNilReportCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c *ReportCache

	_, ok := c.Get(ctx, "u1", 2, 2025)
	assert.False(t, ok)

	// Writes on a nil cache are no-ops, not panics.
	c.Set(ctx, "u1", 2, 2025, []byte("x"))
	c.InvalidateMonth(ctx, "u1", 2, 2025)
}
