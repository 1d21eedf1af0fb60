package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/metrics"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// ErrToolNotFound is returned for an unknown tool slug.
var ErrToolNotFound = errors.New("tool not found")

const defaultConcurrency = 4

// Options tunes a Service. Zero values select defaults.
type Options struct {
	// Cooldown is the recently-shown window (default 24h).
	Cooldown time.Duration

	// ActivityLimit is how many recent events feed the context (default 100).
	ActivityLimit int

	// Concurrency bounds parallel review/playbook reads (default 4).
	Concurrency int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Service orchestrates recommendation passes.
type Service struct {
	catalog   ToolCatalog
	activity  ActivityLog
	reviews   ReviewStore
	playbooks PlaybookStore

	builder  *Builder
	scorer   *Scorer
	recorder *Recorder

	cooldown    time.Duration
	concurrency int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewService wires the engine. activity, reviews and playbooks may be nil;
// their signals are then absent. Close must be called to flush shown records.
func NewService(cat ToolCatalog, activity ActivityLog, reviews ReviewStore, playbooks PlaybookStore, opts Options) *Service {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		catalog:     cat,
		activity:    activity,
		reviews:     reviews,
		playbooks:   playbooks,
		builder:     NewBuilder(activity, reviews, opts.ActivityLimit, opts.Logger),
		scorer:      NewScorer(cat),
		cooldown:    opts.Cooldown,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		logger:      opts.Logger.With().Str("component", "recommend").Logger(),
	}
	if activity != nil {
		s.recorder = NewRecorder(activity, opts.Logger)
		s.recorder.now = opts.Now
	}
	return s
}

// Close flushes pending shown records.
func (s *Service) Close() {
	if s.recorder != nil {
		s.recorder.Stop()
	}
}

// Context builds the user context the service would score with.
func (s *Service) Context(ctx context.Context, profile storage.Profile) UserContext {
	return s.builder.Build(ctx, profile)
}

// GetRecommendations ranks candidate tools for the user. Tools the user has
// reviewed are excluded. Within one 4-hour bucket, with unchanged activity
// and catalog, repeated calls return identical results.
func (s *Service) GetRecommendations(ctx context.Context, profile storage.Profile, req Request) ([]ToolRecommendation, error) {
	start := time.Now()
	metrics.RecommendationRequests.WithLabelValues("recommendations").Inc()
	defer func() {
		metrics.RecommendationDuration.WithLabelValues("recommendations").Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > MaxRecommendations {
		limit = MaxRecommendations
	}

	reqLogger := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("user_id", profile.UserID).
		Logger()

	uc := s.builder.Build(ctx, profile)
	now := s.now()
	shown := s.recentlyShown(ctx, uc.UserID, now, reqLogger)
	rotation := NewRotation(DiversitySeed(uc.UserID, now))

	candidates, err := s.candidates(req)
	if err != nil {
		return nil, err
	}
	candidates = slices.DeleteFunc(candidates, func(t catalog.Tool) bool {
		return uc.HasReviewed(t.Slug)
	})
	metrics.CandidatesScored.Observe(float64(len(candidates)))

	reviews, playbooks, err := s.fetchEvidence(ctx, candidates, reqLogger)
	if err != nil {
		return nil, err
	}

	// Rotation draws from one RNG, so candidates are scored in order.
	recs := make([]ToolRecommendation, 0, len(candidates))
	for i, tool := range candidates {
		score, breakdown := s.scorer.Score(tool, uc, reviews[i])

		_, recent := shown[tool.Slug]
		if recent {
			metrics.RotationPenalties.Inc()
		}
		score = rotation.Adjust(score, recent)

		explanation, citations := Explain(tool, uc, breakdown, reviews[i], playbooks[i], s.catalog)
		recs = append(recs, ToolRecommendation{
			ToolSlug:    tool.Slug,
			ToolName:    tool.Name,
			ClusterSlug: tool.ClusterSlug,
			ClusterName: tool.ClusterName,
			Purpose:     tool.Purpose,
			Tags:        tool.Tags,
			CDI:         tool.CDI,
			FitScore:    round1(score),
			Breakdown:   breakdown,
			Explanation: explanation,
			Citations:   citations,
			Guidance:    Guidance(tool, uc, playbooks[i]),
		})
	}

	slices.SortStableFunc(recs, func(a, b ToolRecommendation) int {
		return cmp.Compare(b.FitScore, a.FitScore)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}

	if req.RecordShown && len(recs) > 0 && s.recorder != nil {
		slugs := make([]string, len(recs))
		for i, r := range recs {
			slugs[i] = r.ToolSlug
		}
		s.recorder.RecordShown(uc.UserID, slugs)
	}

	reqLogger.Debug().
		Int("candidates", len(candidates)).
		Int("recently_shown", len(shown)).
		Int("returned", len(recs)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations ranked")

	return recs, nil
}

// GetToolGuidance scores and explains a single tool for the user.
// No rotation is applied. Unknown slugs return ErrToolNotFound.
func (s *Service) GetToolGuidance(ctx context.Context, profile storage.Profile, slug string) (*ToolGuidance, error) {
	start := time.Now()
	metrics.RecommendationRequests.WithLabelValues("guidance").Inc()
	defer func() {
		metrics.RecommendationDuration.WithLabelValues("guidance").Observe(time.Since(start).Seconds())
	}()

	tool, ok := s.catalog.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, slug)
	}

	uc := s.builder.Build(ctx, profile)
	reviews, playbooks, err := s.fetchEvidence(ctx, []catalog.Tool{tool}, s.logger)
	if err != nil {
		return nil, err
	}

	score, breakdown := s.scorer.Score(tool, uc, reviews[0])
	explanation, citations := Explain(tool, uc, breakdown, reviews[0], playbooks[0], s.catalog)
	guidance := Guidance(tool, uc, playbooks[0])

	return &ToolGuidance{
		Tool:        tool,
		Score:       score,
		Breakdown:   breakdown,
		Explanation: explanation,
		Guidance:    guidance,
		Citations:   append(citations, guidance.Citations...),
	}, nil
}

// GetSuggestedForLocation returns general recommendations sized for a UI
// location. Suggestions are never recorded as shown.
func (s *Service) GetSuggestedForLocation(ctx context.Context, profile storage.Profile, loc Location) ([]ToolRecommendation, error) {
	metrics.RecommendationRequests.WithLabelValues("suggested").Inc()
	return s.GetRecommendations(ctx, profile, Request{Limit: SuggestedLimit(loc)})
}

// candidates selects tools by query, else by use case, else all, in
// catalog order.
func (s *Service) candidates(req Request) ([]catalog.Tool, error) {
	switch {
	case req.Query != "":
		tools, err := s.catalog.Search(req.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to search catalog: %w", err)
		}
		return tools, nil
	case req.UseCase != "":
		var out []catalog.Tool
		for _, t := range s.catalog.All() {
			if t.ClusterSlug == req.UseCase || t.HasUseCase(req.UseCase) {
				out = append(out, t)
			}
		}
		return out, nil
	default:
		return s.catalog.All(), nil
	}
}

// recentlyShown degrades to an empty set when the activity log fails.
func (s *Service) recentlyShown(ctx context.Context, userID string, now time.Time, logger zerolog.Logger) map[string]struct{} {
	if s.activity == nil {
		return map[string]struct{}{}
	}
	shown, err := RecentlyShown(ctx, s.activity, userID, s.cooldown, now)
	if err != nil {
		metrics.DependencyDegradations.WithLabelValues("rotation").Inc()
		logger.Warn().Err(err).Msg("rotation log unavailable, skipping recently-shown penalty")
		return map[string]struct{}{}
	}
	return shown
}

// fetchEvidence loads reviews and playbooks for every candidate with
// bounded parallelism. Results are indexed like tools. Read failures
// degrade to empty evidence; only cancellation of ctx is returned.
func (s *Service) fetchEvidence(ctx context.Context, tools []catalog.Tool, logger zerolog.Logger) ([][]storage.Review, []*storage.Playbook, error) {
	reviews := make([][]storage.Review, len(tools))
	playbooks := make([]*storage.Playbook, len(tools))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, tool := range tools {
		i, tool := i, tool
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if s.reviews != nil {
				rs, err := s.reviews.ReviewsForTool(gctx, tool.Slug)
				if err != nil {
					metrics.DependencyDegradations.WithLabelValues("reviews").Inc()
					logger.Warn().Err(err).Str("tool", tool.Slug).Msg("review store unavailable, review signal scores 0")
					rs = nil
				}
				reviews[i] = rs
			}
			if s.playbooks != nil {
				pb, err := s.playbooks.PlaybookForTool(gctx, tool.Slug)
				if err != nil {
					metrics.DependencyDegradations.WithLabelValues("playbooks").Inc()
					logger.Warn().Err(err).Str("tool", tool.Slug).Msg("playbook store unavailable")
					pb = nil
				}
				playbooks[i] = pb
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return reviews, playbooks, nil
}
