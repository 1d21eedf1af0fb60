package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// countingReviews fails every call and counts them.
type countingReviews struct {
	calls int
}

func (c *countingReviews) ReviewsForTool(context.Context, string) ([]storage.Review, error) {
	c.calls++
	return nil, errUnavailable
}

func (c *countingReviews) ReviewedBy(context.Context, string) ([]string, error) {
	c.calls++
	return nil, errUnavailable
}

func TestGuardedReviewStore_OpensAfterThreshold(t *testing.T) {
	next := &countingReviews{}
	g := NewGuardedReviewStore(next, BreakerSettings{FailureThreshold: 2, Timeout: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	_, err := g.ReviewsForTool(ctx, "alpha")
	assert.ErrorIs(t, err, errUnavailable)
	_, err = g.ReviewedBy(ctx, "u1")
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, "open", g.State())

	_, err = g.ReviewsForTool(ctx, "alpha")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls, "open breaker does not reach the store")
}

func TestGuardedActivityLog_PassesThrough(t *testing.T) {
	log := &memActivity{}
	g := NewGuardedActivityLog(log, DefaultBreakerSettings(), zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, g.AppendActivity(ctx, storage.ActivityEvent{
		UserID: "u1", Type: storage.ActivityToolSearch, Query: "audio", CreatedAt: at,
	}))

	events, err := g.RecentActivity(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "audio", events[0].Query)

	events, err = g.ActivitySince(ctx, "u1", storage.ActivityToolSearch, at.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "closed", g.State())
}

func TestGuardedPlaybookStore_NilPlaybook(t *testing.T) {
	g := NewGuardedPlaybookStore(&memPlaybooks{}, DefaultBreakerSettings(), zerolog.Nop())
	pb, err := g.PlaybookForTool(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, pb)
}

func TestGuard_CancellationDoesNotTrip(t *testing.T) {
	log := &cancelledLog{}
	g := NewGuardedActivityLog(log, BreakerSettings{FailureThreshold: 1, Timeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := g.RecentActivity(context.Background(), "u1", 10)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", g.State())
}

type cancelledLog struct{ memActivity }

func (c *cancelledLog) RecentActivity(context.Context, string, int) ([]storage.ActivityEvent, error) {
	return nil, context.Canceled
}
