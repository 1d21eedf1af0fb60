package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/khanglvm/editorial-toolkit/internal/metrics"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// Caps on the activity signals kept in a UserContext.
const (
	DefaultActivityLimit = 100
	maxSearchedQueries   = 10
	maxBrowsedClusters   = 10
	maxViewedTools       = 20
)

// UserContext is a snapshot of everything the engine knows about a user.
// It is built fresh for every request and must not be modified afterwards.
type UserContext struct {
	UserID           string
	OrganisationType OrganisationType
	Role             string
	Country          string
	Experience       ExperienceLevel
	Budget           Budget
	RiskLevel        RiskLevel
	DataSensitivity  DataSensitivity
	DeploymentPref   DeploymentPref

	// UseCases are the user's declared use-case tags, in declaration order.
	UseCases []string

	// Activity signals, newest first.
	SearchedQueries []string
	BrowsedClusters []string
	ViewedTools     []string

	// ReviewedTools is the exclusion set of tools the user already reviewed.
	ReviewedTools map[string]struct{}

	// CDI ceilings derived from Budget, Experience and DataSensitivity.
	MaxCost         int
	MaxDifficulty   int
	MaxInvasiveness int
}

// NewUserContext builds a profile-only context with no activity signals.
// Unknown enum values in p are dropped.
func NewUserContext(p storage.Profile) UserContext {
	uc := UserContext{
		UserID:           p.UserID,
		OrganisationType: ParseOrganisationType(p.OrganisationType),
		Role:             strings.TrimSpace(p.Role),
		Country:          strings.TrimSpace(p.Country),
		Experience:       ParseExperienceLevel(p.AIExperienceLevel),
		Budget:           ParseBudget(p.Budget),
		RiskLevel:        ParseRiskLevel(p.RiskLevel),
		DataSensitivity:  ParseDataSensitivity(p.DataSensitivity),
		DeploymentPref:   ParseDeploymentPref(p.DeploymentPref),
		UseCases:         splitUseCases(p.UseCases),
		ReviewedTools:    make(map[string]struct{}),
	}
	uc.MaxCost = MaxCost(uc.Budget)
	uc.MaxDifficulty = MaxDifficulty(uc.Experience)
	uc.MaxInvasiveness = MaxInvasiveness(uc.DataSensitivity)
	return uc
}

// HasUseCase reports whether tag is one of the user's declared use cases.
func (uc UserContext) HasUseCase(tag string) bool {
	return contains(uc.UseCases, tag)
}

// HasBrowsed reports whether the user recently browsed cluster.
func (uc UserContext) HasBrowsed(cluster string) bool {
	return contains(uc.BrowsedClusters, cluster)
}

// HasReviewed reports whether the user has reviewed slug.
func (uc UserContext) HasReviewed(slug string) bool {
	_, ok := uc.ReviewedTools[slug]
	return ok
}

// Summary renders the context as short human-readable lines.
func (uc UserContext) Summary() []string {
	lines := []string{
		fmt.Sprintf("Budget: %s", orUnset(string(uc.Budget))),
		fmt.Sprintf("Experience: %s", orUnset(string(uc.Experience))),
		fmt.Sprintf("Data sensitivity: %s", orUnset(string(uc.DataSensitivity))),
		fmt.Sprintf("Constraints: max cost %d, max difficulty %d, max invasiveness %d",
			uc.MaxCost, uc.MaxDifficulty, uc.MaxInvasiveness),
	}
	if len(uc.UseCases) > 0 {
		lines = append(lines, "Use cases: "+strings.Join(head(uc.UseCases, 5), ", "))
	}
	if len(uc.SearchedQueries) > 0 {
		lines = append(lines, "Recent searches: "+strings.Join(head(uc.SearchedQueries, 3), ", "))
	}
	if len(uc.BrowsedClusters) > 0 {
		lines = append(lines, "Browsed clusters: "+strings.Join(head(uc.BrowsedClusters, 3), ", "))
	}
	if len(uc.ViewedTools) > 0 {
		lines = append(lines, "Viewed tools: "+strings.Join(head(uc.ViewedTools, 5), ", "))
	}
	return lines
}

// Builder aggregates profiles and activity into UserContexts.
type Builder struct {
	activity ActivityLog
	reviews  ReviewStore
	limit    int
	logger   zerolog.Logger
}

// NewBuilder creates a context builder. Either source may be nil, in which
// case its signals are simply absent. A non-positive limit uses
// DefaultActivityLimit.
func NewBuilder(activity ActivityLog, reviews ReviewStore, limit int, logger zerolog.Logger) *Builder {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &Builder{
		activity: activity,
		reviews:  reviews,
		limit:    limit,
		logger:   logger.With().Str("component", "context").Logger(),
	}
}

// Build returns the user's context. It never fails: an unavailable activity
// log or review store yields a context without those signals.
func (b *Builder) Build(ctx context.Context, p storage.Profile) UserContext {
	uc := NewUserContext(p)

	if b.activity != nil {
		events, err := b.activity.RecentActivity(ctx, p.UserID, b.limit)
		if err != nil {
			metrics.DependencyDegradations.WithLabelValues("activity").Inc()
			b.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("activity log unavailable, using profile only")
		} else {
			b.applyActivity(&uc, events)
		}
	}

	if b.reviews != nil {
		slugs, err := b.reviews.ReviewedBy(ctx, p.UserID)
		if err != nil {
			metrics.DependencyDegradations.WithLabelValues("reviews").Inc()
			b.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("review store unavailable, reviewed tools from activity only")
		}
		for _, slug := range slugs {
			uc.ReviewedTools[slug] = struct{}{}
		}
	}

	return uc
}

// applyActivity buckets events (newest first) into the context's signals.
func (b *Builder) applyActivity(uc *UserContext, events []storage.ActivityEvent) {
	for _, ev := range events {
		switch ev.Type {
		case storage.ActivityToolSearch:
			uc.SearchedQueries = appendUnique(uc.SearchedQueries, strings.TrimSpace(ev.Query))
		case storage.ActivityToolFinder:
			uc.BrowsedClusters = appendUnique(uc.BrowsedClusters, ev.Details.Need)
		case storage.ActivityBrowse:
			uc.BrowsedClusters = appendUnique(uc.BrowsedClusters, ev.Details.Cluster)
		case storage.ActivityToolView:
			uc.ViewedTools = appendUnique(uc.ViewedTools, ev.Details.ToolSlug)
		case storage.ActivityToolReview:
			if ev.Details.ToolSlug != "" {
				uc.ReviewedTools[ev.Details.ToolSlug] = struct{}{}
			}
		}
	}

	uc.SearchedQueries = head(uc.SearchedQueries, maxSearchedQueries)
	uc.BrowsedClusters = head(uc.BrowsedClusters, maxBrowsedClusters)
	uc.ViewedTools = head(uc.ViewedTools, maxViewedTools)
}

func appendUnique(list []string, v string) []string {
	if v == "" || contains(list, v) {
		return list
	}
	return append(list, v)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
