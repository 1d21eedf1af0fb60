package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// BreakerSettings configures the circuit breakers around external reads.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// Timeout is how long an open breaker waits before probing again.
	Timeout time.Duration
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 3, Timeout: 30 * time.Second}
}

func newBreaker(name string, s BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = DefaultBreakerSettings().FailureThreshold
	}
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		// A caller giving up is not a dependency failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
}

// execute runs fn through cb and restores its concrete result type.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// GuardedActivityLog wraps an ActivityLog with a circuit breaker. While the
// breaker is open, calls fail fast with gobreaker.ErrOpenState.
type GuardedActivityLog struct {
	next ActivityLog
	cb   *gobreaker.CircuitBreaker[any]
}

func NewGuardedActivityLog(next ActivityLog, s BreakerSettings, logger zerolog.Logger) *GuardedActivityLog {
	return &GuardedActivityLog{next: next, cb: newBreaker("activity", s, logger)}
}

func (g *GuardedActivityLog) RecentActivity(ctx context.Context, userID string, limit int) ([]storage.ActivityEvent, error) {
	return execute(g.cb, func() ([]storage.ActivityEvent, error) {
		return g.next.RecentActivity(ctx, userID, limit)
	})
}

func (g *GuardedActivityLog) ActivitySince(ctx context.Context, userID, activityType string, since time.Time) ([]storage.ActivityEvent, error) {
	return execute(g.cb, func() ([]storage.ActivityEvent, error) {
		return g.next.ActivitySince(ctx, userID, activityType, since)
	})
}

func (g *GuardedActivityLog) AppendActivity(ctx context.Context, event storage.ActivityEvent) error {
	_, err := execute(g.cb, func() (struct{}, error) {
		return struct{}{}, g.next.AppendActivity(ctx, event)
	})
	return err
}

// State reports the breaker state ("closed", "half-open" or "open").
func (g *GuardedActivityLog) State() string {
	return g.cb.State().String()
}

// GuardedReviewStore wraps a ReviewStore with a circuit breaker.
type GuardedReviewStore struct {
	next ReviewStore
	cb   *gobreaker.CircuitBreaker[any]
}

func NewGuardedReviewStore(next ReviewStore, s BreakerSettings, logger zerolog.Logger) *GuardedReviewStore {
	return &GuardedReviewStore{next: next, cb: newBreaker("reviews", s, logger)}
}

func (g *GuardedReviewStore) ReviewsForTool(ctx context.Context, toolSlug string) ([]storage.Review, error) {
	return execute(g.cb, func() ([]storage.Review, error) {
		return g.next.ReviewsForTool(ctx, toolSlug)
	})
}

func (g *GuardedReviewStore) ReviewedBy(ctx context.Context, userID string) ([]string, error) {
	return execute(g.cb, func() ([]string, error) {
		return g.next.ReviewedBy(ctx, userID)
	})
}

func (g *GuardedReviewStore) State() string {
	return g.cb.State().String()
}

// GuardedPlaybookStore wraps a PlaybookStore with a circuit breaker.
type GuardedPlaybookStore struct {
	next PlaybookStore
	cb   *gobreaker.CircuitBreaker[any]
}

func NewGuardedPlaybookStore(next PlaybookStore, s BreakerSettings, logger zerolog.Logger) *GuardedPlaybookStore {
	return &GuardedPlaybookStore{next: next, cb: newBreaker("playbooks", s, logger)}
}

func (g *GuardedPlaybookStore) PlaybookForTool(ctx context.Context, toolSlug string) (*storage.Playbook, error) {
	return execute(g.cb, func() (*storage.Playbook, error) {
		return g.next.PlaybookForTool(ctx, toolSlug)
	})
}

func (g *GuardedPlaybookStore) State() string {
	return g.cb.State().String()
}
