package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultCDIValue is used for any CDI axis missing from the catalog file.
const defaultCDIValue = 5

// catalogFile is the on-disk YAML layout.
//
//	clusters:
//	  - slug: verification-investigations
//	    name: Verification & Investigations
//	    tools:
//	      - slug: invid
//	        name: InVID
//	        cdi: {cost: 0, difficulty: 3, invasiveness: 1}
type catalogFile struct {
	Clusters []clusterEntry `yaml:"clusters"`
}

type clusterEntry struct {
	Slug        string      `yaml:"slug"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Tools       []toolEntry `yaml:"tools"`
}

type toolEntry struct {
	Slug                 string   `yaml:"slug"`
	Name                 string   `yaml:"name"`
	Purpose              string   `yaml:"purpose"`
	Description          string   `yaml:"description"`
	Tags                 []string `yaml:"tags"`
	UseCases             []string `yaml:"use_cases"`
	CDI                  cdiEntry `yaml:"cdi"`
	SimilarTools         []string `yaml:"similar_tools"`
	SovereignAlternative string   `yaml:"sovereign_alternative"`
}

// cdiEntry uses pointers so absent axes can be told apart from zero.
type cdiEntry struct {
	Cost         *int `yaml:"cost"`
	Difficulty   *int `yaml:"difficulty"`
	Invasiveness *int `yaml:"invasiveness"`
}

func (c cdiEntry) resolve() CDI {
	return CDI{
		Cost:         valueOr(c.Cost, defaultCDIValue),
		Difficulty:   valueOr(c.Difficulty, defaultCDIValue),
		Invasiveness: valueOr(c.Invasiveness, defaultCDIValue),
	}
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	clusters := make([]Cluster, 0, len(file.Clusters))
	var tools []Tool

	for _, ce := range file.Clusters {
		if ce.Slug == "" {
			return nil, fmt.Errorf("cluster %q: empty slug", ce.Name)
		}
		name := ce.Name
		if name == "" {
			name = ce.Slug
		}
		clusters = append(clusters, Cluster{
			Slug:        ce.Slug,
			Name:        name,
			Description: ce.Description,
			ToolCount:   len(ce.Tools),
		})

		for _, te := range ce.Tools {
			tool := Tool{
				Slug:                 te.Slug,
				Name:                 te.Name,
				ClusterSlug:          ce.Slug,
				ClusterName:          name,
				Purpose:              te.Purpose,
				Description:          te.Description,
				Tags:                 te.Tags,
				UseCases:             te.UseCases,
				CDI:                  te.CDI.resolve(),
				SimilarTools:         te.SimilarTools,
				SovereignAlternative: te.SovereignAlternative,
			}
			if err := validateTool(tool); err != nil {
				return nil, err
			}
			tools = append(tools, tool)
		}
	}

	return New(clusters, tools)
}

// validateTool checks the fields the recommendation engine relies on.
func validateTool(t Tool) error {
	if t.Slug == "" {
		return fmt.Errorf("tool %q: empty slug", t.Name)
	}
	for axis, v := range map[string]int{
		"cost":         t.CDI.Cost,
		"difficulty":   t.CDI.Difficulty,
		"invasiveness": t.CDI.Invasiveness,
	} {
		if v < 0 || v > 10 {
			return fmt.Errorf("tool %q: %s %d out of range [0,10]", t.Slug, axis, v)
		}
	}
	return nil
}
