package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReviews struct {
	calls   int
	reviews []Review
	err     error
}

func (c *countingReviews) ReviewsForTool(ctx context.Context, toolSlug string) ([]Review, error) {
	c.calls++
	return c.reviews, c.err
}

func (c *countingReviews) ReviewedBy(ctx context.Context, userID string) ([]string, error) {
	c.calls++
	return []string{"x"}, nil
}

func TestReviewCache_HitsWithinTTL(t *testing.T) {
	src := &countingReviews{reviews: []Review{{ID: "r1", Rating: 4}}}
	c := NewReviewCache(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.ReviewsForTool(ctx, "whisper")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, src.calls)

	c.Invalidate("whisper")
	_, err := c.ReviewsForTool(ctx, "whisper")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestReviewCache_ErrorsNotCached(t *testing.T) {
	src := &countingReviews{err: errors.New("db down")}
	c := NewReviewCache(src, time.Minute)
	ctx := context.Background()

	_, err := c.ReviewsForTool(ctx, "whisper")
	require.Error(t, err)

	src.err = nil
	_, err = c.ReviewsForTool(ctx, "whisper")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestReviewCache_Disabled(t *testing.T) {
	src := &countingReviews{}
	c := NewReviewCache(src, 0)
	ctx := context.Background()

	_, _ = c.ReviewsForTool(ctx, "a")
	_, _ = c.ReviewsForTool(ctx, "a")
	assert.Equal(t, 2, src.calls)

	slugs, err := c.ReviewedBy(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, slugs)
}

func TestReviewCache_ReturnsCopies(t *testing.T) {
	src := &countingReviews{reviews: []Review{{ID: "r1", Rating: 4}}}
	c := NewReviewCache(src, time.Minute)
	ctx := context.Background()

	first, err := c.ReviewsForTool(ctx, "whisper")
	require.NoError(t, err)
	first[0].Rating = 1

	second, err := c.ReviewsForTool(ctx, "whisper")
	require.NoError(t, err)
	assert.Equal(t, 4, second[0].Rating)
}
