// Package cache implements the per-user summary cache: read-through on
// miss, invalidated on every write, fail-open when the backend is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finbook/internal/core"
	applog "finbook/internal/log"
)

// ErrMiss is returned by a Backend when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is the minimal key-value surface the summary cache needs.
// Implementations must be safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// FetchFunc computes a fresh summary from the authoritative store.
type FetchFunc func(ctx context.Context) ([]core.CategoryTotal, error)

// SummaryCache caches per-category totals keyed by user with a fixed TTL.
//
// Cache availability never affects correctness: a backend failure on the
// read path degrades to direct computation, and a failure on the
// invalidation path is logged and swallowed so the surrounding store
// write still succeeds.
type SummaryCache struct {
	backend Backend
	ttl     time.Duration
	logger  *applog.Logger
}

func NewSummaryCache(backend Backend, ttl time.Duration, logger *applog.Logger) *SummaryCache {
	return &SummaryCache{
		backend: backend,
		ttl:     ttl,
		logger:  logger.WithComponent(applog.ComponentCache),
	}
}

// Key returns the cache key for a user's summary.
func Key(userID int64) string {
	return fmt.Sprintf("summary:%d", userID)
}

// Get returns the cached summary for the user, or computes one via fetch.
// The second return value reports whether the summary came from cache.
//
// On miss the freshly computed value is always stored before returning.
// Concurrent misses for the same user may race; last writer wins.
func (c *SummaryCache) Get(ctx context.Context, userID int64, fetch FetchFunc) ([]core.CategoryTotal, bool, error) {
	start := time.Now()
	key := Key(userID)

	raw, err := c.backend.Get(ctx, key)
	if err == nil {
		var summary []core.CategoryTotal
		if jsonErr := json.Unmarshal([]byte(raw), &summary); jsonErr == nil {
			c.logger.InfoContext(ctx, "Summary served from cache",
				applog.FieldUserID, userID,
				applog.FieldCacheKey, key,
				applog.FieldCacheHit, true,
				applog.FieldDuration, time.Since(start).Milliseconds())
			return summary, true, nil
		}
		// Corrupt entry: recompute and overwrite it.
		c.logger.WarnContext(ctx, "Discarding unreadable cache entry",
			applog.FieldCacheKey, key)
	} else if !errors.Is(err, ErrMiss) {
		c.logger.WarnContext(ctx, "Cache backend unavailable, computing directly",
			applog.FieldCacheKey, key,
			applog.FieldError, err.Error())
	}

	summary, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	if payload, merr := json.Marshal(summary); merr == nil {
		if serr := c.backend.Set(ctx, key, string(payload), c.ttl); serr != nil {
			c.logger.WarnContext(ctx, "Cache set failed",
				applog.FieldCacheKey, key,
				applog.FieldError, serr.Error())
		}
	}

	c.logger.InfoContext(ctx, "Summary recomputed",
		applog.FieldUserID, userID,
		applog.FieldCacheKey, key,
		applog.FieldCacheHit, false,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return summary, false, nil
}

// Invalidate removes the user's cached summary. Invalidating an absent
// key is a no-op; a backend failure is logged and swallowed.
func (c *SummaryCache) Invalidate(ctx context.Context, userID int64) {
	key := Key(userID)
	if err := c.backend.Del(ctx, key); err != nil && !errors.Is(err, ErrMiss) {
		c.logger.WarnContext(ctx, "Cache invalidation failed",
			applog.FieldCacheKey, key,
			applog.FieldOperation, applog.OpInvalidate,
			applog.FieldError, err.Error())
		return
	}
	c.logger.DebugContext(ctx, "Cache entry invalidated",
		applog.FieldCacheKey, key,
		applog.FieldOperation, applog.OpInvalidate)
}

// TTL reports the configured entry lifetime.
func (c *SummaryCache) TTL() time.Duration {
	return c.ttl
}
