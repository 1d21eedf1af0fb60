package storage

import "time"

// Activity types recorded in the activity log.
const (
	ActivityToolSearch          = "tool_search"
	ActivityToolFinder          = "tool_finder"
	ActivityToolView            = "tool_view"
	ActivityBrowse              = "browse"
	ActivityToolReview          = "tool_review"
	ActivityRecommendationShown = "recommendation_shown"
)

// Playbook statuses.
const (
	PlaybookDraft     = "draft"
	PlaybookPublished = "published"
)

// Profile is a user's stored profile. Enumerated fields are kept as raw
// strings here and normalised by the recommendation engine.
type Profile struct {
	UserID            string `json:"user_id"`
	OrganisationType  string `json:"organisation_type,omitempty"`
	Role              string `json:"role,omitempty"`
	Country           string `json:"country,omitempty"`
	AIExperienceLevel string `json:"ai_experience_level,omitempty"`
	Budget            string `json:"budget,omitempty"`
	RiskLevel         string `json:"risk_level,omitempty"`
	DataSensitivity   string `json:"data_sensitivity,omitempty"`
	DeploymentPref    string `json:"deployment_pref,omitempty"`

	// UseCases is a comma-delimited list of use-case tags.
	UseCases string `json:"use_cases,omitempty"`
}

// ActivityDetails is the structured payload of an activity event.
// Which fields are set depends on the event type.
type ActivityDetails struct {
	ToolSlug  string   `json:"tool_slug,omitempty"`
	Cluster   string   `json:"cluster,omitempty"`
	Need      string   `json:"need,omitempty"`
	ToolSlugs []string `json:"tool_slugs,omitempty"`
}

// ActivityEvent is one entry of the append-only activity log.
type ActivityEvent struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"activity_type"`
	Query     string          `json:"query,omitempty"`
	Details   ActivityDetails `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// Review is a user's rating of a tool, joined with reviewer context.
type Review struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ToolSlug   string `json:"tool_slug"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	UseCaseTag string `json:"use_case_tag,omitempty"`
	Hidden     bool   `json:"is_hidden"`

	// ReviewerOrgType is the reviewer's organisation type at read time.
	ReviewerOrgType string `json:"reviewer_org_type,omitempty"`

	// HelpfulCount is the number of "helpful" votes.
	HelpfulCount int `json:"helpful_count"`

	CreatedAt time.Time `json:"created_at"`
}

// Playbook is an admin-curated implementation guide for one tool.
type Playbook struct {
	ToolSlug            string    `json:"tool_slug"`
	Status              string    `json:"status"`
	BestUseCases        string    `json:"best_use_cases,omitempty"`
	ImplementationSteps string    `json:"implementation_steps,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Published reports whether the playbook is visible to users.
func (p *Playbook) Published() bool {
	return p != nil && p.Status == PlaybookPublished
}
