package recommend

import "strings"

// OrganisationType is the kind of organisation a user works for.
type OrganisationType string

const (
	OrgNewsroom  OrganisationType = "newsroom"
	OrgFreelance OrganisationType = "freelance"
	OrgNGO       OrganisationType = "ngo"
	OrgAcademic  OrganisationType = "academic"
	OrgOther     OrganisationType = "other"
)

// ExperienceLevel is the user's self-reported AI experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Budget is the user's tooling budget.
type Budget string

const (
	BudgetMinimal Budget = "minimal"
	BudgetSmall   Budget = "small"
	BudgetMedium  Budget = "medium"
	BudgetLarge   Budget = "large"
)

// RiskLevel is the user's risk tolerance.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DataSensitivity is the most sensitive class of data the user handles.
type DataSensitivity string

const (
	SensitivityPublic    DataSensitivity = "public"
	SensitivityInternal  DataSensitivity = "internal"
	SensitivityPII       DataSensitivity = "pii"
	SensitivityRegulated DataSensitivity = "regulated"
)

// DeploymentPref is where the user prefers tools to run.
type DeploymentPref string

const (
	DeployCloud     DeploymentPref = "cloud"
	DeployHybrid    DeploymentPref = "hybrid"
	DeploySovereign DeploymentPref = "sovereign"
)

// unconstrained is the ceiling used when a profile field is unset or unknown.
const unconstrained = 10

var (
	budgetToMaxCost = map[Budget]int{
		BudgetMinimal: 2,
		BudgetSmall:   4,
		BudgetMedium:  6,
		BudgetLarge:   10,
	}

	experienceToMaxDifficulty = map[ExperienceLevel]int{
		ExperienceBeginner:     3,
		ExperienceIntermediate: 6,
		ExperienceAdvanced:     10,
	}

	sensitivityToMaxInvasiveness = map[DataSensitivity]int{
		SensitivityRegulated: 2,
		SensitivityPII:       4,
		SensitivityInternal:  6,
		SensitivityPublic:    10,
	}
)

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseEnum returns the matching value, or "" when s is not in the vocabulary.
func parseEnum[T ~string](s string, valid ...T) T {
	v := T(normalise(s))
	for _, candidate := range valid {
		if v == candidate {
			return v
		}
	}
	return ""
}

func ParseOrganisationType(s string) OrganisationType {
	return parseEnum(s, OrgNewsroom, OrgFreelance, OrgNGO, OrgAcademic, OrgOther)
}

func ParseExperienceLevel(s string) ExperienceLevel {
	return parseEnum(s, ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced)
}

func ParseBudget(s string) Budget {
	return parseEnum(s, BudgetMinimal, BudgetSmall, BudgetMedium, BudgetLarge)
}

func ParseRiskLevel(s string) RiskLevel {
	return parseEnum(s, RiskLow, RiskMedium, RiskHigh)
}

func ParseDataSensitivity(s string) DataSensitivity {
	return parseEnum(s, SensitivityPublic, SensitivityInternal, SensitivityPII, SensitivityRegulated)
}

func ParseDeploymentPref(s string) DeploymentPref {
	return parseEnum(s, DeployCloud, DeployHybrid, DeploySovereign)
}

// MaxCost maps a budget to the highest acceptable CDI cost.
func MaxCost(b Budget) int {
	if v, ok := budgetToMaxCost[b]; ok {
		return v
	}
	return unconstrained
}

// MaxDifficulty maps an experience level to the highest acceptable CDI difficulty.
func MaxDifficulty(e ExperienceLevel) int {
	if v, ok := experienceToMaxDifficulty[e]; ok {
		return v
	}
	return unconstrained
}

// MaxInvasiveness maps a data sensitivity to the highest acceptable CDI invasiveness.
func MaxInvasiveness(d DataSensitivity) int {
	if v, ok := sensitivityToMaxInvasiveness[d]; ok {
		return v
	}
	return unconstrained
}

// isSensitive reports whether d needs compliance-grade handling.
func (d DataSensitivity) isSensitive() bool {
	return d == SensitivityRegulated || d == SensitivityPII
}

// splitUseCases parses the comma-delimited use_cases profile field,
// dropping blanks and duplicates while keeping order.
func splitUseCases(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
