package recommend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// CitationType identifies what a citation is grounded on.
type CitationType string

const (
	CitationCDIData  CitationType = "cdi_data"
	CitationReview   CitationType = "review"
	CitationPlaybook CitationType = "playbook"
)

// Citation backs a recommendation with a piece of evidence.
type Citation struct {
	Type   CitationType `json:"type"`
	Text   string       `json:"text"`
	Source string       `json:"source,omitempty"`

	// Review citations only.
	Rating       int    `json:"rating,omitempty"`
	UseCase      string `json:"use_case,omitempty"`
	ReviewerType string `json:"reviewer_type,omitempty"`
	HelpfulCount int    `json:"helpful_count,omitempty"`
}

const (
	maxExplanationClauses = 3
	recentViewsExplained  = 5
	useCasesExplained     = 2

	reviewExcerptLength  = 100
	bestForLength        = 80
	playbookCitationLen  = 200
	cdiCitationSource    = "AI Editorial Toolkit CDI Scores"
	playbookSource       = "Tool Playbook"
	genericExplanation   = "Recommended based on your profile."
	freeToUseExplanation = "Free to use"
)

// Explain builds the rationale and citations for recommending tool to uc.
// It never fails; with no specific signal it falls back to a generic sentence.
// lookup may be nil, which disables the viewed-similar clause.
func Explain(tool catalog.Tool, uc UserContext, breakdown ScoreBreakdown, reviews []storage.Review, playbook *storage.Playbook, lookup ToolLookup) (string, []Citation) {
	var parts []string
	citations := []Citation{}

	// Activity first: it is the most personal signal.
	if reason, ok := activityReason(tool, uc, lookup); ok {
		parts = append(parts, reason)
	}

	if breakdown.UseCaseMatch > 0 {
		if matches := matchingUseCases(tool, uc); len(matches) > 0 {
			parts = append(parts, "Matches your use cases: "+strings.Join(head(matches, useCasesExplained), ", "))
		}
	}

	if reason, ok := cdiReason(tool.CDI, uc); ok {
		parts = append(parts, reason)
		citations = append(citations, Citation{
			Type: CitationCDIData,
			Text: fmt.Sprintf("Cost: %d/10, Difficulty: %d/10, Invasiveness: %d/10",
				tool.CDI.Cost, tool.CDI.Difficulty, tool.CDI.Invasiveness),
			Source: cdiCitationSource,
		})
	}

	switch {
	case uc.OrganisationType == OrgFreelance && tool.CDI.Cost <= lowCostThreshold:
		if len(parts) == 0 || !strings.Contains(parts[0], freeToUseExplanation) {
			parts = append(parts, "Budget-friendly for freelancers")
		}
	case uc.OrganisationType == OrgNewsroom && strings.Contains(strings.ToLower(tool.Description), "team"):
		parts = append(parts, "Supports team collaboration")
	}

	if c, ok := reviewCitation(reviews, uc); ok {
		citations = append(citations, c)
	}

	if playbook.Published() && playbook.BestUseCases != "" {
		parts = append(parts, "Best for: "+truncate(playbook.BestUseCases, bestForLength))
		citations = append(citations, Citation{
			Type:   CitationPlaybook,
			Text:   truncate(playbook.BestUseCases, playbookCitationLen),
			Source: playbookSource,
		})
	}

	if len(parts) > 0 {
		return strings.Join(head(parts, maxExplanationClauses), ". "), citations
	}
	return fallbackExplanation(uc), citations
}

// activityReason picks one activity clause: browsed cluster, then search
// match, then a similar tool among the most recent views.
func activityReason(tool catalog.Tool, uc UserContext, lookup ToolLookup) (string, bool) {
	if uc.HasBrowsed(tool.ClusterSlug) {
		name := tool.ClusterName
		if name == "" {
			name = tool.ClusterSlug
		}
		return fmt.Sprintf("You recently browsed %s tools", name), true
	}

	if q, ok := matchingSearch(tool, uc.SearchedQueries); ok {
		return fmt.Sprintf("Matches your search for %q", q), true
	}

	s := Scorer{lookup: lookup}
	if viewed, ok := s.viewedInCluster(tool, head(uc.ViewedTools, recentViewsExplained)); ok {
		name := viewed.Name
		if name == "" {
			name = viewed.Slug
		}
		return fmt.Sprintf("Similar to %s that you viewed", name), true
	}

	return "", false
}

// cdiReason returns the first constraint-fit clause that applies.
func cdiReason(cdi catalog.CDI, uc UserContext) (string, bool) {
	if cdi.Cost <= uc.MaxCost {
		switch {
		case cdi.Cost == 0:
			return freeToUseExplanation, true
		case cdi.Cost <= lowCostThreshold:
			return fmt.Sprintf("Low cost (%d/10)", cdi.Cost), true
		case uc.Budget != "":
			return fmt.Sprintf("Fits your %s budget", uc.Budget), true
		}
	}

	if cdi.Difficulty <= uc.MaxDifficulty {
		switch {
		case uc.Experience == ExperienceBeginner && cdi.Difficulty <= 3:
			return "beginner-friendly", true
		case uc.Experience == ExperienceAdvanced && cdi.Difficulty >= 5:
			return "advanced features for your experience level", true
		case uc.Experience == ExperienceIntermediate:
			return "matches your intermediate experience", true
		}
	}

	if cdi.Invasiveness <= uc.MaxInvasiveness {
		switch {
		case cdi.Invasiveness == 0:
			return "runs locally - your data stays on your machine", true
		case cdi.Invasiveness <= lowInvasivenessThreshold:
			return "minimal data exposure - good for sensitive work", true
		case uc.DataSensitivity.isSensitive():
			return fmt.Sprintf("data handling fits your %s requirements", uc.DataSensitivity), true
		}
	}

	return "", false
}

// reviewCitation quotes a commented review, preferring a reviewer from the
// user's organisation type, else the most helpful one.
func reviewCitation(reviews []storage.Review, uc UserContext) (Citation, bool) {
	var best *storage.Review
	for i := range reviews {
		r := &reviews[i]
		if r.Comment == "" {
			continue
		}
		if uc.OrganisationType != "" && ParseOrganisationType(r.ReviewerOrgType) == uc.OrganisationType {
			best = r
			break
		}
		if best == nil || r.HelpfulCount > best.HelpfulCount {
			best = r
		}
	}
	if best == nil {
		return Citation{}, false
	}

	return Citation{
		Type:         CitationReview,
		Text:         excerpt(best.Comment, reviewExcerptLength),
		Rating:       best.Rating,
		UseCase:      best.UseCaseTag,
		ReviewerType: best.ReviewerOrgType,
		HelpfulCount: best.HelpfulCount,
	}, true
}

func fallbackExplanation(uc UserContext) string {
	var parts []string
	if uc.OrganisationType != "" {
		parts = append(parts, fmt.Sprintf("Recommended for %ss", uc.OrganisationType))
	}
	if uc.Experience != "" {
		parts = append(parts, fmt.Sprintf("suitable for %s users", uc.Experience))
	}
	if len(parts) == 0 {
		return genericExplanation
	}
	return strings.Join(parts, " ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// excerpt is truncate with a trailing ellipsis when text was cut.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncate(s, n) + "..."
}
