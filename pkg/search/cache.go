package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// readVenueCache looks up a previously cached Venues result. A read error
// other than a plain miss, or a decode failure, is logged; any of the
// three is treated as absent rather than propagated, since Venues always
// has a working fallback (the live aggregation).
func (c *Client) readVenueCache(ctx context.Context, key string) ([]VenueBucket, bool) {
	raw, err := c.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("search: venue cache read failed", "error", err)
		}
		return nil, false
	}

	var buckets []VenueBucket
	if err := json.Unmarshal([]byte(raw), &buckets); err != nil {
		slog.Warn("search: venue cache decode failed", "error", err)
		return nil, false
	}
	return buckets, true
}

// writeVenueCache stores a Venues result for venueCacheTTL. Write failures
// are logged, not returned: the cache is an optimization, never a
// correctness dependency.
func (c *Client) writeVenueCache(ctx context.Context, key string, buckets []VenueBucket) {
	raw, err := json.Marshal(buckets)
	if err != nil {
		slog.Warn("search: venue cache encode failed", "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, raw, venueCacheTTL).Err(); err != nil {
		slog.Warn("search: venue cache write failed", "error", err)
	}
}
