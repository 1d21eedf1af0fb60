package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

var errUnavailable = errors.New("store unavailable")

// memActivity is an in-memory ActivityLog.
type memActivity struct {
	mu      sync.Mutex
	events  []storage.ActivityEvent
	nextID  int64
	failing bool
}

func (m *memActivity) add(userID, typ, query string, details storage.ActivityDetails, at time.Time) {
	_ = m.AppendActivity(context.Background(), storage.ActivityEvent{
		UserID: userID, Type: typ, Query: query, Details: details, CreatedAt: at,
	})
}

func (m *memActivity) AppendActivity(_ context.Context, event storage.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, event)
	return nil
}

// newestFirst returns matching events ordered like the SQLite store.
func (m *memActivity) newestFirst(keep func(storage.ActivityEvent) bool) []storage.ActivityEvent {
	var out []storage.ActivityEvent
	for _, ev := range m.events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memActivity) RecentActivity(_ context.Context, userID string, limit int) ([]storage.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	out := m.newestFirst(func(ev storage.ActivityEvent) bool { return ev.UserID == userID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memActivity) ActivitySince(_ context.Context, userID, activityType string, since time.Time) ([]storage.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	return m.newestFirst(func(ev storage.ActivityEvent) bool {
		return ev.UserID == userID && ev.Type == activityType && !ev.CreatedAt.Before(since)
	}), nil
}

func (m *memActivity) ofType(typ string) []storage.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ActivityEvent
	for _, ev := range m.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// memReviews is an in-memory ReviewStore.
type memReviews struct {
	byTool   map[string][]storage.Review
	failing  bool
	reviewed map[string][]string
}

func (m *memReviews) ReviewsForTool(_ context.Context, slug string) ([]storage.Review, error) {
	if m.failing {
		return nil, errUnavailable
	}
	return m.byTool[slug], nil
}

func (m *memReviews) ReviewedBy(_ context.Context, userID string) ([]string, error) {
	if m.failing {
		return nil, errUnavailable
	}
	return m.reviewed[userID], nil
}

// memPlaybooks is an in-memory PlaybookStore.
type memPlaybooks struct {
	byTool  map[string]*storage.Playbook
	failing bool
}

func (m *memPlaybooks) PlaybookForTool(_ context.Context, slug string) (*storage.Playbook, error) {
	if m.failing {
		return nil, errUnavailable
	}
	return m.byTool[slug], nil
}

// Fixture tools, two clusters.
var (
	toolAlpha = catalog.Tool{
		Slug: "alpha", Name: "Alpha Verify",
		ClusterSlug: "verification", ClusterName: "Verification",
		Description: "Local image checks.",
		Tags:        []string{"verification", "sovereign-alternative"},
		UseCases:    []string{"fact-checking", "osint"},
		CDI:         catalog.CDI{Cost: 0, Difficulty: 2, Invasiveness: 0},
	}
	toolBravo = catalog.Tool{
		Slug: "bravo", Name: "Bravo Team",
		ClusterSlug: "verification", ClusterName: "Verification",
		Description: "Cloud API with team collaboration.",
		Tags:        []string{"deepfakes", "api"},
		UseCases:    []string{"fact-checking"},
		CDI:         catalog.CDI{Cost: 8, Difficulty: 9, Invasiveness: 9},
	}
	toolCharlie = catalog.Tool{
		Slug: "charlie", Name: "Charlie Workflow",
		ClusterSlug: "transcription", ClusterName: "Transcription",
		Description: "Hosted transcription.",
		Tags:        []string{"transcription", "automation"},
		UseCases:    []string{"interviews"},
		CDI:         catalog.CDI{Cost: 3, Difficulty: 7, Invasiveness: 4},
	}
	toolDelta = catalog.Tool{
		Slug: "delta", Name: "Delta",
		ClusterSlug: "transcription", ClusterName: "Transcription",
		Description: "Transcripts with an API.",
		Tags:        []string{"transcription"},
		UseCases:    []string{"interviews", "podcasts"},
		CDI:         catalog.CDI{Cost: 5, Difficulty: 5, Invasiveness: 5},
	}
)

// newTestCatalog builds the fixture catalog plus extra generic tools.
func newTestCatalog(t *testing.T, extra int) *catalog.Catalog {
	t.Helper()
	tools := []catalog.Tool{toolAlpha, toolBravo, toolCharlie, toolDelta}
	for i := 0; i < extra; i++ {
		tools = append(tools, catalog.Tool{
			Slug:        fmt.Sprintf("misc-%02d", i),
			Name:        fmt.Sprintf("Misc %02d", i),
			ClusterSlug: "misc",
			ClusterName: "Miscellaneous",
			CDI:         catalog.CDI{Cost: i % 10, Difficulty: 5, Invasiveness: 5},
		})
	}
	clusters := []catalog.Cluster{
		{Slug: "verification", Name: "Verification"},
		{Slug: "transcription", Name: "Transcription"},
		{Slug: "misc", Name: "Miscellaneous"},
	}
	cat, err := catalog.New(clusters, tools)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

// fixedClock returns a clock frozen at a time well inside a 4-hour bucket.
func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}
