package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoadFile(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, 4, c.Len())
	require.Len(t, c.Clusters(), 2)
	assert.Equal(t, 2, c.Clusters()[0].ToolCount)

	tool, ok := c.Get("invid")
	require.True(t, ok)
	assert.Equal(t, "verification-investigations", tool.ClusterSlug)
	assert.Equal(t, "Verification & Investigations", tool.ClusterName)
	assert.Equal(t, CDI{Cost: 0, Difficulty: 3, Invasiveness: 1}, tool.CDI)
}

func TestLoadFile_MissingCDIDefaults(t *testing.T) {
	c := loadTestCatalog(t)

	tool, ok := c.Get("trint")
	require.True(t, ok)
	assert.Equal(t, CDI{Cost: 6, Difficulty: defaultCDIValue, Invasiveness: defaultCDIValue}, tool.CDI)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty cluster slug", "clusters:\n  - name: x\n"},
		{"empty tool slug", "clusters:\n  - slug: c\n    tools:\n      - name: t\n"},
		{"cdi out of range", "clusters:\n  - slug: c\n    tools:\n      - slug: t\n        cdi: {cost: 11}\n"},
		{"duplicate slug", "clusters:\n  - slug: c\n    tools:\n      - slug: t\n      - slug: t\n"},
		{"malformed", "clusters: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestAll_SortedBySlug(t *testing.T) {
	c := loadTestCatalog(t)

	var slugs []string
	for _, tool := range c.All() {
		slugs = append(slugs, tool.Slug)
	}
	assert.Equal(t, []string{"invid", "sensity", "trint", "whisper"}, slugs)
}

func TestByCluster(t *testing.T) {
	c := loadTestCatalog(t)

	tools := c.ByCluster("transcription-translation")
	require.Len(t, tools, 2)
	assert.Equal(t, "trint", tools[0].Slug)
	assert.Equal(t, "whisper", tools[1].Slug)

	assert.Empty(t, c.ByCluster("unknown"))
}

func TestSearch(t *testing.T) {
	c := loadTestCatalog(t)

	tools, err := c.Search("transcription")
	require.NoError(t, err)
	require.NotEmpty(t, tools)

	slugs := map[string]bool{}
	for _, tool := range tools {
		slugs[tool.Slug] = true
	}
	assert.True(t, slugs["whisper"])
	assert.True(t, slugs["trint"])
	assert.False(t, slugs["sensity"])
}

func TestSearch_Prefix(t *testing.T) {
	c := loadTestCatalog(t)

	tools, err := c.Search("deepfa")
	require.NoError(t, err)
	require.NotEmpty(t, tools)
	assert.Equal(t, "sensity", tools[0].Slug)
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	c := loadTestCatalog(t)

	tools, err := c.Search("  ")
	require.NoError(t, err)
	assert.Len(t, tools, c.Len())
}

func TestSearch_Stable(t *testing.T) {
	c := loadTestCatalog(t)

	first, err := c.Search("verification")
	require.NoError(t, err)
	second, err := c.Search("verification")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestToolHelpers(t *testing.T) {
	tool := Tool{Tags: []string{"Automation"}, UseCases: []string{"osint"}}

	assert.True(t, tool.HasTag("automation"))
	assert.False(t, tool.HasTag("api"))
	assert.True(t, tool.HasUseCase("osint"))
	assert.False(t, tool.HasUseCase("OSINT"))
}
