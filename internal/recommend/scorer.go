package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// Factor ceilings. They sum to 100.
const (
	MaxCDIFit            = 30.0
	MaxUseCaseMatch      = 25.0
	MaxReviewSignal      = 20.0
	MaxActivityRelevance = 15.0
	MaxProfileFit        = 10.0
)

const (
	// Each CDI axis above its ceiling costs weight points per step, up to cap.
	costPenaltyWeight         = 3.0
	costPenaltyCap            = 15.0
	difficultyPenaltyWeight   = 2.0
	difficultyPenaltyCap      = 10.0
	invasivenessPenaltyWeight = 3.0
	invasivenessPenaltyCap    = 15.0

	// Two overlapping use cases saturate the factor.
	useCaseMatchStep = 12.5

	// Review weighting.
	reviewBaseWeight    = 1.0
	sameOrgBonus        = 0.5
	useCaseTagBonus     = 0.5
	helpfulVoteWeight   = 0.1
	helpfulBonusCap     = 0.5
	defaultReviewRating = 3

	// Activity relevance.
	browsedClusterBoost = 5.0
	viewedSimilarBoost  = 2.0
	searchMatchBoost    = 5.0

	// Profile fit.
	profileFitBase      = 5.0
	sensitiveDataBoost  = 3.0
	freelanceCheapBoost = 2.0
	teamFeatureBoost    = 1.0

	lowCostThreshold         = 2
	lowInvasivenessThreshold = 2
	sovereignTag             = "sovereign-alternative"
)

// ScoreBreakdown holds the five factor scores, rounded to one decimal.
type ScoreBreakdown struct {
	CDIFit            float64 `json:"cdi_fit"`
	UseCaseMatch      float64 `json:"use_case_match"`
	ReviewSignal      float64 `json:"review_signal"`
	ActivityRelevance float64 `json:"activity_relevance"`
	ProfileFit        float64 `json:"profile_fit"`
	Total             float64 `json:"total"`
}

// Scorer ranks a tool against a UserContext. It holds no mutable state and
// is safe for concurrent use.
type Scorer struct {
	lookup ToolLookup
}

// NewScorer creates a scorer. lookup resolves viewed tools to their cluster;
// with a nil lookup the viewed-similar boost never applies.
func NewScorer(lookup ToolLookup) *Scorer {
	return &Scorer{lookup: lookup}
}

// Score returns the unrounded total and the rounded per-factor breakdown.
// Identical inputs always produce identical outputs.
//
// Score panics if uc carries constraint ceilings outside [0,10], which only
// happens with a hand-built context.
func (s *Scorer) Score(tool catalog.Tool, uc UserContext, reviews []storage.Review) (float64, ScoreBreakdown) {
	mustValidContext(uc)

	cdiFit := cdiFitScore(tool.CDI, uc)
	useCase := useCaseMatchScore(tool, uc)
	review := reviewSignalScore(reviews, uc)
	activity := s.activityRelevanceScore(tool, uc)
	profile := profileFitScore(tool, uc)

	total := cdiFit + useCase + review + activity + profile
	return total, ScoreBreakdown{
		CDIFit:            round1(cdiFit),
		UseCaseMatch:      round1(useCase),
		ReviewSignal:      round1(review),
		ActivityRelevance: round1(activity),
		ProfileFit:        round1(profile),
		Total:             round1(total),
	}
}

func mustValidContext(uc UserContext) {
	for name, v := range map[string]int{
		"max_cost":         uc.MaxCost,
		"max_difficulty":   uc.MaxDifficulty,
		"max_invasiveness": uc.MaxInvasiveness,
	} {
		if v < 0 || v > unconstrained {
			panic(fmt.Sprintf("recommend: invalid user context: %s=%d outside [0,10]", name, v))
		}
	}
}

func cdiFitScore(cdi catalog.CDI, uc UserContext) float64 {
	score := MaxCDIFit
	score -= excessPenalty(cdi.Cost, uc.MaxCost, costPenaltyWeight, costPenaltyCap)
	score -= excessPenalty(cdi.Difficulty, uc.MaxDifficulty, difficultyPenaltyWeight, difficultyPenaltyCap)
	score -= excessPenalty(cdi.Invasiveness, uc.MaxInvasiveness, invasivenessPenaltyWeight, invasivenessPenaltyCap)
	return math.Max(0, score)
}

func excessPenalty(value, ceiling int, weight, limit float64) float64 {
	if value <= ceiling {
		return 0
	}
	return math.Min(limit, float64(value-ceiling)*weight)
}

func useCaseMatchScore(tool catalog.Tool, uc UserContext) float64 {
	overlap := len(matchingUseCases(tool, uc))
	return math.Min(MaxUseCaseMatch, float64(overlap)*useCaseMatchStep)
}

// matchingUseCases returns the tool's use cases the user declared,
// in the tool's order.
func matchingUseCases(tool catalog.Tool, uc UserContext) []string {
	var out []string
	for _, tag := range tool.UseCases {
		if uc.HasUseCase(tag) && !contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func reviewSignalScore(reviews []storage.Review, uc UserContext) float64 {
	if len(reviews) == 0 {
		return 0
	}

	var sum float64
	for _, r := range reviews {
		sum += float64(ratingOf(r)) * reviewWeight(r, uc)
	}
	avg := sum / float64(len(reviews))

	// Rescale 1..5 stars to 0..20.
	return clamp((avg-1)*5, 0, MaxReviewSignal)
}

func reviewWeight(r storage.Review, uc UserContext) float64 {
	w := reviewBaseWeight
	if uc.OrganisationType != "" && ParseOrganisationType(r.ReviewerOrgType) == uc.OrganisationType {
		w += sameOrgBonus
	}
	if r.UseCaseTag != "" && uc.HasUseCase(r.UseCaseTag) {
		w += useCaseTagBonus
	}
	w += math.Min(helpfulBonusCap, float64(r.HelpfulCount)*helpfulVoteWeight)
	return w
}

func ratingOf(r storage.Review) int {
	if r.Rating == 0 {
		return defaultReviewRating
	}
	return r.Rating
}

func (s *Scorer) activityRelevanceScore(tool catalog.Tool, uc UserContext) float64 {
	var score float64
	if uc.HasBrowsed(tool.ClusterSlug) {
		score += browsedClusterBoost
	}
	if _, ok := s.viewedInCluster(tool, uc.ViewedTools); ok {
		score += viewedSimilarBoost
	}
	if _, ok := matchingSearch(tool, uc.SearchedQueries); ok {
		score += searchMatchBoost
	}
	return math.Min(MaxActivityRelevance, score)
}

// viewedInCluster returns the first viewed tool, other than tool itself,
// that shares tool's cluster.
func (s *Scorer) viewedInCluster(tool catalog.Tool, viewed []string) (catalog.Tool, bool) {
	if s.lookup == nil {
		return catalog.Tool{}, false
	}
	for _, slug := range viewed {
		if slug == tool.Slug {
			continue
		}
		other, ok := s.lookup.Get(slug)
		if ok && other.ClusterSlug == tool.ClusterSlug {
			return other, true
		}
	}
	return catalog.Tool{}, false
}

// matchingSearch returns the first query that is a substring of the tool's
// name or one of its tags, case-insensitively.
func matchingSearch(tool catalog.Tool, queries []string) (string, bool) {
	name := strings.ToLower(tool.Name)
	for _, q := range queries {
		ql := strings.ToLower(q)
		if ql == "" {
			continue
		}
		if strings.Contains(name, ql) {
			return q, true
		}
		for _, tag := range tool.Tags {
			if strings.Contains(strings.ToLower(tag), ql) {
				return q, true
			}
		}
	}
	return "", false
}

func profileFitScore(tool catalog.Tool, uc UserContext) float64 {
	score := profileFitBase

	if uc.DataSensitivity.isSensitive() &&
		(tool.HasTag(sovereignTag) || tool.CDI.Invasiveness <= lowInvasivenessThreshold) {
		score += sensitiveDataBoost
	}

	switch uc.OrganisationType {
	case OrgFreelance:
		if tool.CDI.Cost <= lowCostThreshold {
			score += freelanceCheapBoost
		}
	case OrgNewsroom, OrgAcademic:
		if hasTeamFeatures(tool) {
			score += teamFeatureBoost
		}
	}

	return math.Min(MaxProfileFit, score)
}

func hasTeamFeatures(tool catalog.Tool) bool {
	return strings.Contains(strings.ToLower(tool.Name), "team") ||
		strings.Contains(strings.ToLower(tool.Description), "collaboration")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
