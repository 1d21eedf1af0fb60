package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Index is an in-memory Bleve full-text index over catalog tools.
type Index struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve index mapping for tool documents.
func buildIndexMapping() mapping.IndexMapping {
	toolMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "purpose", "description", "tags", "use_cases"} {
		toolMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	// Cluster is matched exactly, never analysed.
	clusterMapping := bleve.NewKeywordFieldMapping()
	clusterMapping.IncludeInAll = false
	toolMapping.AddFieldMappingsAt("cluster", clusterMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", toolMapping)

	return indexMapping
}

// IndexTools indexes tools keyed by slug.
func (i *Index) IndexTools(tools []Tool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, tool := range tools {
		doc := map[string]interface{}{
			"name":        tool.Name,
			"purpose":     tool.Purpose,
			"description": tool.Description,
			"tags":        strings.Join(tool.Tags, " "),
			"use_cases":   strings.Join(tool.UseCases, " "),
			"cluster":     tool.ClusterSlug,
		}
		if err := batch.Index(tool.Slug, doc); err != nil {
			return fmt.Errorf("failed to index tool %s: %w", tool.Slug, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index tools: %w", err)
	}
	return nil
}

// Search runs a match query and returns matching slugs, best first.
// Ties are broken by slug so results are stable across calls.
func (i *Index) Search(text string, limit int) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(buildMatchQuery(text), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	results, err := i.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	slugs := make([]string, 0, len(results.Hits))
	for _, hit := range results.Hits {
		slugs = append(slugs, hit.ID)
	}
	return slugs, nil
}

// Count returns the number of indexed tools.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return n, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}

// buildMatchQuery matches the full text, or any word as a prefix so that
// partial queries like "transcri" still find "transcription".
func buildMatchQuery(text string) query.Query {
	match := bleve.NewMatchQuery(text)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return match
	}

	queries := []query.Query{match}
	for _, w := range words {
		queries = append(queries, bleve.NewPrefixQuery(w))
	}
	return bleve.NewDisjunctionQuery(queries...)
}
