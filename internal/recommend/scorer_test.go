package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

func regulatedBeginner() UserContext {
	return NewUserContext(storage.Profile{
		UserID:            "u1",
		AIExperienceLevel: "beginner",
		Budget:            "minimal",
		DataSensitivity:   "regulated",
	})
}

func TestScore_WithinAllConstraints(t *testing.T) {
	uc := regulatedBeginner()
	require.Equal(t, 2, uc.MaxCost)
	require.Equal(t, 3, uc.MaxDifficulty)
	require.Equal(t, 2, uc.MaxInvasiveness)

	tool := catalog.Tool{Slug: "t", CDI: catalog.CDI{Cost: 0, Difficulty: 2, Invasiveness: 0}}
	_, b := NewScorer(nil).Score(tool, uc, nil)
	assert.Equal(t, 30.0, b.CDIFit)
}

func TestScore_ExceedsAllConstraints(t *testing.T) {
	tool := catalog.Tool{Slug: "t", CDI: catalog.CDI{Cost: 8, Difficulty: 9, Invasiveness: 9}}
	_, b := NewScorer(nil).Score(tool, regulatedBeginner(), nil)
	assert.Equal(t, 0.0, b.CDIFit)
}

func TestScore_CDIPenaltiesCompound(t *testing.T) {
	uc := regulatedBeginner()
	// cost 3 (+1 over), difficulty 5 (+2 over), invasiveness 3 (+1 over)
	tool := catalog.Tool{Slug: "t", CDI: catalog.CDI{Cost: 3, Difficulty: 5, Invasiveness: 3}}
	_, b := NewScorer(nil).Score(tool, uc, nil)
	assert.Equal(t, 30.0-3-4-3, b.CDIFit)
}

func TestScore_CDIFitMonotonicInCost(t *testing.T) {
	uc := regulatedBeginner()
	s := NewScorer(nil)
	prev := MaxCDIFit + 1
	for cost := 0; cost <= 10; cost++ {
		tool := catalog.Tool{Slug: "t", CDI: catalog.CDI{Cost: cost, Difficulty: 2, Invasiveness: 0}}
		_, b := s.Score(tool, uc, nil)
		assert.LessOrEqual(t, b.CDIFit, prev, "cost=%d", cost)
		prev = b.CDIFit
	}
}

func TestScore_UseCaseMatch(t *testing.T) {
	uc := NewUserContext(storage.Profile{UserID: "u1", UseCases: "fact-checking,osint,interviews"})
	s := NewScorer(nil)

	_, b := s.Score(toolAlpha, uc, nil)
	assert.Equal(t, 25.0, b.UseCaseMatch, "two matches saturate")

	_, b = s.Score(toolBravo, uc, nil)
	assert.Equal(t, 12.5, b.UseCaseMatch)

	_, b = s.Score(toolDelta, NewUserContext(storage.Profile{UserID: "u1"}), nil)
	assert.Equal(t, 0.0, b.UseCaseMatch)
}

func TestScore_ReviewSignal(t *testing.T) {
	uc := NewUserContext(storage.Profile{UserID: "u1", OrganisationType: "newsroom", UseCases: "fact-checking"})
	s := NewScorer(nil)

	tests := []struct {
		name    string
		reviews []storage.Review
		want    float64
	}{
		{name: "no reviews", reviews: nil, want: 0},
		{
			name:    "plain three stars",
			reviews: []storage.Review{{Rating: 3}},
			want:    10,
		},
		{
			name:    "helpful votes add weight",
			reviews: []storage.Review{{Rating: 2, HelpfulCount: 3}},
			want:    8, // 2*1.3 = 2.6 -> (2.6-1)*5
		},
		{
			name:    "helpful bonus capped at half a point",
			reviews: []storage.Review{{Rating: 1, HelpfulCount: 50}},
			want:    2.5, // 1*1.5 -> (1.5-1)*5
		},
		{
			name:    "one star floors at zero",
			reviews: []storage.Review{{Rating: 1}},
			want:    0,
		},
		{
			name: "same org and use case tag clamp at twenty",
			reviews: []storage.Review{
				{Rating: 5, ReviewerOrgType: "newsroom", UseCaseTag: "fact-checking"},
			},
			want: 20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := s.Score(toolDelta, uc, tt.reviews)
			assert.InDelta(t, tt.want, b.ReviewSignal, 1e-9)
		})
	}
}

func TestScore_ActivityRelevance(t *testing.T) {
	cat := newTestCatalog(t, 0)
	uc := NewUserContext(storage.Profile{UserID: "u1"})
	uc.BrowsedClusters = []string{"verification"}
	uc.ViewedTools = []string{"alpha", "bravo"}
	uc.SearchedQueries = []string{"VERIF"}

	_, b := NewScorer(cat).Score(toolAlpha, uc, nil)
	// browsed 5 + viewed bravo in same cluster 2 + search hits tag 5
	assert.Equal(t, 12.0, b.ActivityRelevance)

	_, b = NewScorer(cat).Score(toolCharlie, uc, nil)
	assert.Equal(t, 0.0, b.ActivityRelevance)

	_, b = NewScorer(nil).Score(toolAlpha, uc, nil)
	assert.Equal(t, 10.0, b.ActivityRelevance, "no lookup, no viewed-similar boost")
}

func TestScore_ActivityRelevance_IgnoresSelfView(t *testing.T) {
	cat := newTestCatalog(t, 0)
	uc := NewUserContext(storage.Profile{UserID: "u1"})
	uc.ViewedTools = []string{"alpha"}

	_, b := NewScorer(cat).Score(toolAlpha, uc, nil)
	assert.Equal(t, 0.0, b.ActivityRelevance)
}

func TestScore_ProfileFit(t *testing.T) {
	s := NewScorer(nil)
	tests := []struct {
		name    string
		profile storage.Profile
		tool    catalog.Tool
		want    float64
	}{
		{"base", storage.Profile{}, toolDelta, 5},
		{"regulated with sovereign tool", storage.Profile{DataSensitivity: "regulated"}, toolAlpha, 8},
		{"pii with invasive tool", storage.Profile{DataSensitivity: "pii"}, toolBravo, 5},
		{"freelance with free tool", storage.Profile{OrganisationType: "freelance"}, toolAlpha, 7},
		{"freelance regulated capped", storage.Profile{OrganisationType: "freelance", DataSensitivity: "regulated"}, toolAlpha, 10},
		{"newsroom team tool", storage.Profile{OrganisationType: "newsroom"}, toolBravo, 6},
		{"academic team tool", storage.Profile{OrganisationType: "academic"}, toolBravo, 6},
		{"ngo team tool", storage.Profile{OrganisationType: "ngo"}, toolBravo, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := s.Score(tt.tool, NewUserContext(tt.profile), nil)
			assert.Equal(t, tt.want, b.ProfileFit)
		})
	}
}

func TestScore_FactorBounds(t *testing.T) {
	cat := newTestCatalog(t, 10)
	s := NewScorer(cat)

	profiles := []storage.Profile{
		{},
		{OrganisationType: "freelance", Budget: "minimal", AIExperienceLevel: "beginner", DataSensitivity: "regulated", UseCases: "fact-checking,osint,interviews"},
		{OrganisationType: "newsroom", Budget: "large", AIExperienceLevel: "advanced", DataSensitivity: "public", UseCases: "podcasts"},
	}
	reviewSets := [][]storage.Review{
		nil,
		{{Rating: 5, HelpfulCount: 100, ReviewerOrgType: "newsroom", UseCaseTag: "podcasts"}},
		{{Rating: 1}, {Rating: 2, HelpfulCount: 1}},
	}

	for _, p := range profiles {
		uc := NewUserContext(p)
		uc.BrowsedClusters = []string{"verification", "transcription", "misc"}
		uc.SearchedQueries = []string{"a"}
		uc.ViewedTools = []string{"alpha", "charlie", "misc-01"}

		for _, tool := range cat.All() {
			for _, rs := range reviewSets {
				total, b := s.Score(tool, uc, rs)
				assert.GreaterOrEqual(t, b.CDIFit, 0.0)
				assert.LessOrEqual(t, b.CDIFit, MaxCDIFit)
				assert.GreaterOrEqual(t, b.UseCaseMatch, 0.0)
				assert.LessOrEqual(t, b.UseCaseMatch, MaxUseCaseMatch)
				assert.GreaterOrEqual(t, b.ReviewSignal, 0.0)
				assert.LessOrEqual(t, b.ReviewSignal, MaxReviewSignal)
				assert.GreaterOrEqual(t, b.ActivityRelevance, 0.0)
				assert.LessOrEqual(t, b.ActivityRelevance, MaxActivityRelevance)
				assert.GreaterOrEqual(t, b.ProfileFit, 0.0)
				assert.LessOrEqual(t, b.ProfileFit, MaxProfileFit)
				assert.LessOrEqual(t, total, 100.0)
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	cat := newTestCatalog(t, 0)
	s := NewScorer(cat)
	uc := NewUserContext(storage.Profile{UserID: "u1", OrganisationType: "newsroom", UseCases: "fact-checking"})
	uc.ViewedTools = []string{"alpha"}
	reviews := []storage.Review{{Rating: 4, HelpfulCount: 2}, {Rating: 5, ReviewerOrgType: "newsroom"}}

	total1, b1 := s.Score(toolBravo, uc, reviews)
	total2, b2 := s.Score(toolBravo, uc, reviews)

	assert.Equal(t, total1, total2)
	if diff := cmp.Diff(b1, b2); diff != "" {
		t.Errorf("breakdown changed between calls (-first +second):\n%s", diff)
	}
}

func TestScore_BreakdownRounded(t *testing.T) {
	// 3 reviews averaging 13/3 stars -> (13/3-1)*5 = 16.666...
	reviews := []storage.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	total, b := NewScorer(nil).Score(toolDelta, NewUserContext(storage.Profile{}), reviews)

	assert.Equal(t, 16.7, b.ReviewSignal)
	assert.InDelta(t, 30+5+50.0/3, total, 1e-9, "total is unrounded")
}

func TestScore_PanicsOnInvalidContext(t *testing.T) {
	uc := NewUserContext(storage.Profile{})
	uc.MaxCost = -1
	assert.Panics(t, func() { NewScorer(nil).Score(toolAlpha, uc, nil) })
}
