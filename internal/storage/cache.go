package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// ReviewSource is the read side of the review store.
type ReviewSource interface {
	ReviewsForTool(ctx context.Context, toolSlug string) ([]Review, error)
	ReviewedBy(ctx context.Context, userID string) ([]string, error)
}

// ReviewCache caches per-tool review lists for a short TTL. A recommendation
// pass reads the reviews of every catalog tool, so repeat visits within the
// TTL skip the database entirely. Per-user lookups are never cached.
type ReviewCache struct {
	next  ReviewSource
	cache *cache.Cache
}

// NewReviewCache wraps next with a TTL cache. A non-positive ttl disables caching.
func NewReviewCache(next ReviewSource, ttl time.Duration) *ReviewCache {
	if ttl <= 0 {
		return &ReviewCache{next: next}
	}
	return &ReviewCache{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// ReviewsForTool returns cached reviews, loading them on a miss.
// Errors are never cached.
func (c *ReviewCache) ReviewsForTool(ctx context.Context, toolSlug string) ([]Review, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(toolSlug); ok {
			return copyReviews(v.([]Review)), nil
		}
	}

	reviews, err := c.next.ReviewsForTool(ctx, toolSlug)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetDefault(toolSlug, copyReviews(reviews))
	}
	return reviews, nil
}

// ReviewedBy passes straight through to the underlying store.
func (c *ReviewCache) ReviewedBy(ctx context.Context, userID string) ([]string, error) {
	return c.next.ReviewedBy(ctx, userID)
}

// Invalidate drops the cached reviews of one tool.
func (c *ReviewCache) Invalidate(toolSlug string) {
	if c.cache != nil {
		c.cache.Delete(toolSlug)
	}
}

func copyReviews(in []Review) []Review {
	if in == nil {
		return nil
	}
	out := make([]Review, len(in))
	copy(out, in)
	return out
}
