/*
Package catalog holds the curated AI tool catalog.

Tools are grouped into thematic clusters and carry a CDI triple
(cost, difficulty, invasiveness) used by the recommendation engine.
The catalog is loaded from a YAML file and indexed in memory with Bleve
for free-text search.
*/
package catalog

import "strings"

// CDI is the Cost/Difficulty/Invasiveness triple attached to every tool.
// Each axis is in [0,10]; lower is friendlier.
type CDI struct {
	Cost         int `json:"cost" yaml:"cost"`
	Difficulty   int `json:"difficulty" yaml:"difficulty"`
	Invasiveness int `json:"invasiveness" yaml:"invasiveness"`
}

// Tool is a single catalog entry. Tools are read-only once loaded.
type Tool struct {
	// Slug is the unique key of the tool.
	Slug string `json:"slug"`

	// Name is the display name.
	Name string `json:"name"`

	// ClusterSlug and ClusterName identify the thematic cluster.
	ClusterSlug string `json:"cluster_slug"`
	ClusterName string `json:"cluster_name"`

	// Purpose is a one-line summary; Description is free text.
	Purpose     string `json:"purpose,omitempty"`
	Description string `json:"description,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	UseCases []string `json:"use_cases,omitempty"`
	CDI      CDI      `json:"cdi_scores"`

	// SimilarTools lists slugs of comparable tools.
	SimilarTools []string `json:"similar_tools,omitempty"`

	// SovereignAlternative is the slug of a self-hostable alternative, if any.
	SovereignAlternative string `json:"sovereign_alternative,omitempty"`
}

// HasTag reports whether the tool carries tag (case-insensitive).
func (t Tool) HasTag(tag string) bool {
	for _, tt := range t.Tags {
		if strings.EqualFold(tt, tag) {
			return true
		}
	}
	return false
}

// HasUseCase reports whether useCase is one of the tool's declared use cases.
func (t Tool) HasUseCase(useCase string) bool {
	for _, uc := range t.UseCases {
		if uc == useCase {
			return true
		}
	}
	return false
}

// Cluster is a thematic grouping of tools.
type Cluster struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ToolCount   int    `json:"tool_count"`
}
