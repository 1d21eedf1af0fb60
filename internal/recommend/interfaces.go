package recommend

import (
	"context"
	"time"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// ToolLookup resolves a tool by slug.
type ToolLookup interface {
	Get(slug string) (catalog.Tool, bool)
}

// ToolCatalog is the read side of the tool catalog.
type ToolCatalog interface {
	ToolLookup
	All() []catalog.Tool
	ByCluster(cluster string) []catalog.Tool
	Search(query string) ([]catalog.Tool, error)
}

// ActivityLog is the append-only user activity log.
type ActivityLog interface {
	RecentActivity(ctx context.Context, userID string, limit int) ([]storage.ActivityEvent, error)
	ActivitySince(ctx context.Context, userID, activityType string, since time.Time) ([]storage.ActivityEvent, error)
	AppendActivity(ctx context.Context, event storage.ActivityEvent) error
}

// ReviewStore returns visible reviews only.
type ReviewStore interface {
	ReviewsForTool(ctx context.Context, toolSlug string) ([]storage.Review, error)
	ReviewedBy(ctx context.Context, userID string) ([]string, error)
}

// PlaybookStore returns a tool's playbook, or nil if it has none.
type PlaybookStore interface {
	PlaybookForTool(ctx context.Context, toolSlug string) (*storage.Playbook, error)
}

var (
	_ ToolCatalog   = (*catalog.Catalog)(nil)
	_ ActivityLog   = (*storage.SQLiteStorage)(nil)
	_ ReviewStore   = (*storage.ReviewCache)(nil)
	_ PlaybookStore = (*storage.SQLiteStorage)(nil)
)
