package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is the read-only, in-memory tool catalog.
// All methods are safe for concurrent use once New returns.
type Catalog struct {
	tools    []Tool
	bySlug   map[string]Tool
	clusters []Cluster
	index    *Index
}

// New builds a catalog and its search index. Tools are kept sorted by slug
// so every listing has a stable order.
func New(clusters []Cluster, tools []Tool) (*Catalog, error) {
	bySlug := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if _, dup := bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("duplicate tool slug: %s", t.Slug)
		}
		bySlug[t.Slug] = t
	}

	sorted := make([]Tool, len(tools))
	copy(sorted, tools)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slug < sorted[j].Slug })

	index, err := NewIndex()
	if err != nil {
		return nil, err
	}
	if err := index.IndexTools(sorted); err != nil {
		index.Close()
		return nil, err
	}

	return &Catalog{
		tools:    sorted,
		bySlug:   bySlug,
		clusters: clusters,
		index:    index,
	}, nil
}

// All returns every tool, ordered by slug.
func (c *Catalog) All() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// ByCluster returns the tools of one cluster, ordered by slug.
func (c *Catalog) ByCluster(cluster string) []Tool {
	var out []Tool
	for _, t := range c.tools {
		if t.ClusterSlug == cluster {
			out = append(out, t)
		}
	}
	return out
}

// Search returns tools matching a free-text query, best match first.
// An empty query returns the whole catalog.
func (c *Catalog) Search(q string) ([]Tool, error) {
	if strings.TrimSpace(q) == "" {
		return c.All(), nil
	}

	slugs, err := c.index.Search(q, len(c.tools))
	if err != nil {
		return nil, err
	}

	out := make([]Tool, 0, len(slugs))
	for _, slug := range slugs {
		if t, ok := c.bySlug[slug]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get looks a tool up by slug.
func (c *Catalog) Get(slug string) (Tool, bool) {
	t, ok := c.bySlug[slug]
	return t, ok
}

// Clusters returns the clusters in file order.
func (c *Catalog) Clusters() []Cluster {
	out := make([]Cluster, len(c.clusters))
	copy(out, c.clusters)
	return out
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// Close releases the search index.
func (c *Catalog) Close() error {
	return c.index.Close()
}
