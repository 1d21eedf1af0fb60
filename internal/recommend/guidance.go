package recommend

import (
	"slices"
	"strings"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// TrainingPlan is the onboarding plan for one tool.
type TrainingPlan struct {
	Intensity string   `json:"intensity"`
	Duration  string   `json:"duration"`
	Steps     []string `json:"steps"`
	Tips      []string `json:"tips"`
}

// RolloutPhase is one stage of a rollout.
type RolloutPhase struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// RolloutApproach is the pace, phases and advisory approval gates of a rollout.
type RolloutApproach struct {
	Pace   string         `json:"pace"`
	Phases []RolloutPhase `json:"phases"`
	Gates  []string       `json:"gates"`
}

// TailoredGuidance is the full onboarding and rollout advice for a tool.
type TailoredGuidance struct {
	TrainingPlan    TrainingPlan    `json:"training_plan"`
	RolloutApproach RolloutApproach `json:"rollout_approach"`
	WorkflowTips    []string        `json:"workflow_tips"`
	Citations       []Citation      `json:"citations"`
}

// hardDifficulty is the CDI difficulty at which training gets heavier.
const hardDifficulty = 7

const (
	implementationTipLength      = 200
	implementationCitationLength = 100
	implementationSource         = "Tool Playbook - Implementation Steps"
)

type trainingKey struct {
	experience ExperienceLevel
	hard       bool
}

var trainingTable = map[trainingKey]TrainingPlan{
	{ExperienceBeginner, true}: {
		Intensity: "extended",
		Duration:  "2-3 weeks",
		Steps: []string{
			"Watch introductory video tutorials",
			"Read getting started guide thoroughly",
			"Practice with sample data in sandbox mode",
			"Complete guided exercises (3-5 sessions)",
			"Pair with experienced colleague for first real task",
			"Schedule weekly check-ins for first month",
		},
		Tips: []string{
			"Don't rush - build confidence with small wins",
			"Keep notes on what works and what confuses you",
			"Join community forum for peer support",
		},
	},
	{ExperienceBeginner, false}: {
		Intensity: "standard",
		Duration:  "1 week",
		Steps: []string{
			"Read quick-start documentation",
			"Try 2-3 practice tasks",
			"Use on a real but low-stakes project",
		},
		Tips: []string{
			"Start with the most basic features",
			"Bookmark the help documentation",
		},
	},
	{ExperienceIntermediate, true}: {
		Intensity: "standard",
		Duration:  "1-2 weeks",
		Steps: []string{
			"Complete official tutorial",
			"Practice with sample projects",
			"Gradually integrate into workflow",
		},
		Tips: []string{
			"Take notes on advanced features for later",
			"Don't try to learn everything at once",
		},
	},
	{ExperienceIntermediate, false}: {
		Intensity: "quick",
		Duration:  "2-3 days",
		Steps: []string{
			"Review key features in documentation",
			"Try on a real project immediately",
			"Explore advanced options as needed",
		},
		Tips: []string{"Trust your existing AI experience"},
	},
	{ExperienceAdvanced, true}: {
		Intensity: "fast-track",
		Duration:  "3-5 days",
		Steps: []string{
			"Skim documentation for key differentiators",
			"Review API/integration options",
			"Run a short pilot on one real story",
			"Set up automation and shortcuts early",
			"Configure for your workflow",
		},
		Tips: []string{
			"Focus on advanced features that save time",
			"Consider building custom integrations",
		},
	},
	{ExperienceAdvanced, false}: {
		Intensity: "fast-track",
		Duration:  "1-2 days",
		Steps: []string{
			"Skim documentation for key differentiators",
			"Review API/integration options",
			"Set up automation and shortcuts early",
			"Configure for your workflow",
		},
		Tips: []string{
			"Focus on advanced features that save time",
			"Consider building custom integrations",
		},
	},
}

var (
	cautiousRollout = RolloutApproach{
		Pace: "cautious",
		Phases: []RolloutPhase{
			{Name: "Sandbox Testing", Duration: "2-4 weeks", Description: "Test with synthetic/anonymized data only"},
			{Name: "Limited Pilot", Duration: "4-6 weeks", Description: "Small team pilot with full consent and monitoring"},
			{Name: "Gradual Rollout", Duration: "Ongoing", Description: "Expand access with clear guidelines and training"},
		},
		Gates: []string{
			"Legal/compliance review before pilot",
			"Data protection impact assessment",
			"Team training certification",
			"Incident response plan documented",
		},
	}

	fastTrackRollout = RolloutApproach{
		Pace: "fast-track",
		Phases: []RolloutPhase{
			{Name: "Setup & Testing", Duration: "1 week", Description: "Configure and verify core functionality"},
			{Name: "Team Access", Duration: "1 week", Description: "Roll out to full team"},
			{Name: "Optimization", Duration: "Ongoing", Description: "Iterate based on feedback"},
		},
		Gates: []string{"Basic security review"},
	}

	standardRollout = RolloutApproach{
		Pace: "standard",
		Phases: []RolloutPhase{
			{Name: "Individual Testing", Duration: "1-2 weeks", Description: "Personal evaluation and testing"},
			{Name: "Team Pilot", Duration: "2-3 weeks", Description: "Small group trial with feedback"},
			{Name: "Full Rollout", Duration: "Ongoing", Description: "Team-wide access with guidelines"},
		},
		Gates: []string{
			"Manager approval",
			"Basic usage guidelines documented",
		},
	}
)

// Guidance builds the training plan, rollout approach and workflow tips for
// tool. Unset experience counts as intermediate, unset risk as medium and
// unset sensitivity as internal.
func Guidance(tool catalog.Tool, uc UserContext, playbook *storage.Playbook) TailoredGuidance {
	g := TailoredGuidance{
		TrainingPlan:    trainingPlan(uc.Experience, tool.CDI.Difficulty),
		RolloutApproach: rolloutApproach(uc.RiskLevel, uc.DataSensitivity),
		WorkflowTips:    []string{},
		Citations:       []Citation{},
	}

	if playbook != nil && playbook.ImplementationSteps != "" {
		g.WorkflowTips = append(g.WorkflowTips, truncate(playbook.ImplementationSteps, implementationTipLength))
		g.Citations = append(g.Citations, Citation{
			Type:   CitationPlaybook,
			Text:   truncate(playbook.ImplementationSteps, implementationCitationLength),
			Source: implementationSource,
		})
	}

	if tool.HasTag("automation") || strings.Contains(strings.ToLower(tool.Name), "workflow") {
		g.WorkflowTips = append(g.WorkflowTips, "Consider automating repetitive tasks early")
	}
	if strings.Contains(strings.ToLower(tool.Description), "api") {
		g.WorkflowTips = append(g.WorkflowTips, "Explore API options for integration with existing tools")
	}

	return g
}

func trainingPlan(experience ExperienceLevel, difficulty int) TrainingPlan {
	if experience == "" {
		experience = ExperienceIntermediate
	}
	cell := trainingTable[trainingKey{experience: experience, hard: difficulty >= hardDifficulty}]
	return TrainingPlan{
		Intensity: cell.Intensity,
		Duration:  cell.Duration,
		Steps:     slices.Clone(cell.Steps),
		Tips:      slices.Clone(cell.Tips),
	}
}

func rolloutApproach(risk RiskLevel, sensitivity DataSensitivity) RolloutApproach {
	if risk == "" {
		risk = RiskMedium
	}
	if sensitivity == "" {
		sensitivity = SensitivityInternal
	}

	var base RolloutApproach
	switch {
	case sensitivity.isSensitive() || risk == RiskLow:
		base = cautiousRollout
	case risk == RiskHigh:
		base = fastTrackRollout
	default:
		base = standardRollout
	}
	return RolloutApproach{
		Pace:   base.Pace,
		Phases: slices.Clone(base.Phases),
		Gates:  slices.Clone(base.Gates),
	}
}
