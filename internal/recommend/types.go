package recommend

import "github.com/khanglvm/editorial-toolkit/internal/catalog"

// MaxRecommendations caps the size of every recommendation list.
const MaxRecommendations = 8

// Request selects and bounds the candidates of a recommendation pass.
type Request struct {
	// Query restricts candidates to catalog search hits.
	Query string

	// UseCase restricts candidates to a cluster slug or declared use case.
	// Ignored when Query is set.
	UseCase string

	// Limit is capped at MaxRecommendations; zero or negative means the cap.
	Limit int

	// RecordShown appends the returned slugs to the rotation log.
	RecordShown bool
}

// ToolRecommendation is one ranked, explained recommendation.
type ToolRecommendation struct {
	ToolSlug    string           `json:"tool_slug"`
	ToolName    string           `json:"tool_name"`
	ClusterSlug string           `json:"cluster_slug"`
	ClusterName string           `json:"cluster_name"`
	Purpose     string           `json:"purpose,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	CDI         catalog.CDI      `json:"cdi_scores"`
	FitScore    float64          `json:"fit_score"`
	Breakdown   ScoreBreakdown   `json:"score_breakdown"`
	Explanation string           `json:"explanation"`
	Citations   []Citation       `json:"citations"`
	Guidance    TailoredGuidance `json:"tailored_guidance"`
}

// ToolGuidance is the personalised view of a single tool.
type ToolGuidance struct {
	Tool        catalog.Tool     `json:"tool"`
	Score       float64          `json:"score"`
	Breakdown   ScoreBreakdown   `json:"score_breakdown"`
	Explanation string           `json:"explanation"`
	Guidance    TailoredGuidance `json:"guidance"`

	// Citations holds the explanation's citations followed by the guidance's.
	Citations []Citation `json:"citations"`
}

// Location is a place in the UI that shows suggestions.
type Location string

const (
	LocationHome       Location = "home"
	LocationToolDetail Location = "tool_detail"
	LocationCluster    Location = "cluster"
	LocationFinder     Location = "finder"
)

const defaultLocationLimit = 3

var locationLimits = map[Location]int{
	LocationHome:       3,
	LocationToolDetail: 2,
	LocationCluster:    3,
	LocationFinder:     5,
}

// SuggestedLimit returns how many suggestions a location shows.
// Unknown locations get 3.
func SuggestedLimit(loc Location) int {
	if n, ok := locationLimits[loc]; ok {
		return n
	}
	return defaultLocationLimit
}
