package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/editorial-toolkit/internal/metrics"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

type serviceFixture struct {
	svc       *Service
	activity  *memActivity
	reviews   *memReviews
	playbooks *memPlaybooks
}

func newServiceFixture(t *testing.T, extra int, now func() time.Time) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		activity:  &memActivity{},
		reviews:   &memReviews{byTool: map[string][]storage.Review{}, reviewed: map[string][]string{}},
		playbooks: &memPlaybooks{byTool: map[string]*storage.Playbook{}},
	}
	f.svc = NewService(newTestCatalog(t, extra), f.activity, f.reviews, f.playbooks, Options{
		Now:    now,
		Logger: zerolog.Nop(),
	})
	t.Cleanup(f.svc.Close)
	return f
}

func slugsOf(recs []ToolRecommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ToolSlug
	}
	return out
}

var testProfile = storage.Profile{
	UserID:            "u1",
	OrganisationType:  "newsroom",
	AIExperienceLevel: "intermediate",
	Budget:            "small",
	UseCases:          "fact-checking,interviews",
}

func TestGetRecommendations_LimitCapped(t *testing.T) {
	f := newServiceFixture(t, 20, fixedClock())

	recs, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, recs, MaxRecommendations)

	recs, err = f.svc.GetRecommendations(context.Background(), testProfile, Request{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, recs, MaxRecommendations)

	recs, err = f.svc.GetRecommendations(context.Background(), testProfile, Request{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestGetRecommendations_SortedDescending(t *testing.T) {
	f := newServiceFixture(t, 10, fixedClock())

	recs, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].FitScore, recs[i].FitScore)
	}
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.FitScore, 0.0)
		assert.NotEmpty(t, r.Explanation)
		assert.NotEmpty(t, r.Guidance.TrainingPlan.Steps)
	}
}

func TestGetRecommendations_ExcludesReviewed(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	f.reviews.reviewed["u1"] = []string{"alpha"}
	f.activity.add("u1", storage.ActivityToolReview, "", storage.ActivityDetails{ToolSlug: "delta"}, fixedClock()().Add(-time.Hour))

	recs, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bravo", "charlie"}, slugsOf(recs))
}

func TestGetRecommendations_IdempotentWithinBucket(t *testing.T) {
	f := newServiceFixture(t, 10, fixedClock())
	f.reviews.byTool["alpha"] = []storage.Review{{Rating: 4, Comment: "Solid", ReviewerOrgType: "newsroom"}}
	f.playbooks.byTool["charlie"] = &storage.Playbook{Status: storage.PlaybookPublished, BestUseCases: "Interviews"}

	first, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)

	later := func() time.Time { return fixedClock()().Add(2 * time.Hour) }
	f.svc.now = later
	second, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results changed within one time bucket (-first +second):\n%s", diff)
	}
}

func TestGetRecommendations_RotationPenalisesShown(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	req := Request{UseCase: "verification"}

	before, err := f.svc.GetRecommendations(context.Background(), testProfile, req)
	require.NoError(t, err)
	scores := map[string]float64{}
	for _, r := range before {
		scores[r.ToolSlug] = r.FitScore
	}

	f.activity.add("u1", storage.ActivityRecommendationShown, "",
		storage.ActivityDetails{ToolSlugs: []string{"alpha"}}, fixedClock()().Add(-time.Hour))

	penalties := testutil.ToFloat64(metrics.RotationPenalties)
	after, err := f.svc.GetRecommendations(context.Background(), testProfile, req)
	require.NoError(t, err)
	assert.Equal(t, penalties+1, testutil.ToFloat64(metrics.RotationPenalties))

	for _, r := range after {
		if r.ToolSlug == "alpha" {
			assert.Less(t, r.FitScore, scores["alpha"])
		}
	}
}

func TestGetRecommendations_RecordShown(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())

	recs, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{Limit: 2, RecordShown: true})
	require.NoError(t, err)
	f.svc.Close()

	events := f.activity.ofType(storage.ActivityRecommendationShown)
	require.Len(t, events, 1)
	assert.Equal(t, slugsOf(recs), events[0].Details.ToolSlugs)
	assert.True(t, events[0].CreatedAt.Equal(fixedClock()()))
}

func TestGetRecommendations_NotRecordedByDefault(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())

	_, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)
	f.svc.Close()

	assert.Empty(t, f.activity.ofType(storage.ActivityRecommendationShown))
}

func TestGetRecommendations_CandidateFilters(t *testing.T) {
	f := newServiceFixture(t, 3, fixedClock())
	ctx := context.Background()

	recs, err := f.svc.GetRecommendations(ctx, testProfile, Request{UseCase: "transcription"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"charlie", "delta"}, slugsOf(recs))

	recs, err = f.svc.GetRecommendations(ctx, testProfile, Request{UseCase: "fact-checking"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "bravo"}, slugsOf(recs))

	recs, err = f.svc.GetRecommendations(ctx, testProfile, Request{Query: "deepfakes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bravo"}, slugsOf(recs))

	recs, err = f.svc.GetRecommendations(ctx, testProfile, Request{Query: "no-such-thing"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestGetRecommendations_DegradesWhenStoresFail(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	f.activity.failing = true
	f.reviews.failing = true
	f.playbooks.failing = true

	degraded := testutil.ToFloat64(metrics.DependencyDegradations.WithLabelValues("reviews"))
	recs, err := f.svc.GetRecommendations(context.Background(), testProfile, Request{})
	require.NoError(t, err)
	assert.Len(t, recs, 4)
	for _, r := range recs {
		assert.Equal(t, 0.0, r.Breakdown.ReviewSignal)
	}
	assert.Greater(t, testutil.ToFloat64(metrics.DependencyDegradations.WithLabelValues("reviews")), degraded)
}

func TestGetRecommendations_CancelledContext(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.GetRecommendations(ctx, testProfile, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetRecommendations_NilStores(t *testing.T) {
	svc := NewService(newTestCatalog(t, 0), nil, nil, nil, Options{Now: fixedClock(), Logger: zerolog.Nop()})
	defer svc.Close()

	recs, err := svc.GetRecommendations(context.Background(), testProfile, Request{RecordShown: true})
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestGetToolGuidance(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	f.playbooks.byTool["delta"] = &storage.Playbook{
		Status:              storage.PlaybookPublished,
		BestUseCases:        "Long-form interviews",
		ImplementationSteps: "Start with one desk",
	}

	g, err := f.svc.GetToolGuidance(context.Background(), testProfile, "delta")
	require.NoError(t, err)

	score, breakdown := NewScorer(nil).Score(toolDelta, NewUserContext(testProfile), nil)
	assert.Equal(t, score, g.Score, "no rotation on guidance")
	assert.Equal(t, breakdown, g.Breakdown)
	assert.Equal(t, "delta", g.Tool.Slug)
	assert.Contains(t, g.Explanation, "Matches your use cases: interviews")

	// Explanation citations come first, then guidance citations.
	require.NotEmpty(t, g.Citations)
	last := g.Citations[len(g.Citations)-1]
	assert.Equal(t, "Tool Playbook - Implementation Steps", last.Source)
	assert.Equal(t, len(g.Guidance.Citations)+1, len(citationsOfType(g.Citations, CitationPlaybook)))
}

func TestGetToolGuidance_NotFound(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())

	_, err := f.svc.GetToolGuidance(context.Background(), testProfile, "nope")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestGetSuggestedForLocation(t *testing.T) {
	f := newServiceFixture(t, 10, fixedClock())

	for loc, want := range map[Location]int{
		LocationHome:        3,
		LocationToolDetail:  2,
		LocationCluster:     3,
		LocationFinder:      5,
		Location("sidebar"): 3,
	} {
		recs, err := f.svc.GetSuggestedForLocation(context.Background(), testProfile, loc)
		require.NoError(t, err)
		assert.Len(t, recs, want, "location %s", loc)
	}
	f.svc.Close()
	assert.Empty(t, f.activity.ofType(storage.ActivityRecommendationShown))
}

func TestCandidates_CatalogOrder(t *testing.T) {
	f := newServiceFixture(t, 0, fixedClock())
	tools, err := f.svc.candidates(Request{})
	require.NoError(t, err)

	var slugs []string
	for _, tool := range tools {
		slugs = append(slugs, tool.Slug)
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, slugs)
}
