package opra

import (
	"context"
	"strings"
)

// Similarity thresholds used by retrieval. They were picked empirically and
// have not been calibrated against a labeled corpus.
const (
	// DefaultSimilarityThreshold applies to general similarity search.
	DefaultSimilarityThreshold = 0.7

	// CategorySimilarityThreshold applies to category keyword searches.
	CategorySimilarityThreshold = 0.6

	// SupplementalSimilarityThreshold is the bar a keyword battery hit must
	// clear before its category is added to an analysis.
	SupplementalSimilarityThreshold = 0.75
)

// DefaultSearchLimit caps similarity search results when no limit is given.
const DefaultSearchLimit = 10

// Chunk is a bounded, embeddable segment of an ordinance.
type Chunk struct {
	ID            string    `json:"id"`
	OrdinanceID   string    `json:"ordinanceId"`
	Index         int       `json:"chunkIndex"`
	SectionNumber string    `json:"sectionNumber,omitempty"`
	SectionTitle  string    `json:"sectionTitle,omitempty"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"embedding,omitempty"`
	StartChar     int       `json:"startChar"`
	EndChar       int       `json:"endChar"`
	TokenCount    int       `json:"tokenCount,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.OrdinanceID == "" {
		return Errorf(EINVALID, "chunk ordinance ID required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if c.Index < 0 {
		return Errorf(EINVALID, "chunk index must not be negative")
	}
	return nil
}

// ChunkService represents a service for managing ordinance chunks.
type ChunkService interface {
	// CreateChunks stores all chunks of one ordinance atomically.
	// Either every chunk is stored or none is.
	CreateChunks(ctx context.Context, chunks []*Chunk) error

	// FindChunks retrieves chunks matching the filter ordered by chunk index.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// CountChunks returns the number of chunks stored for an ordinance.
	CountChunks(ctx context.Context, ordinanceID string) (int, error)

	// DeleteChunksByOrdinance removes all chunks for an ordinance.
	DeleteChunksByOrdinance(ctx context.Context, ordinanceID string) error
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	OrdinanceID *string `json:"ordinanceId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Retriever performs nearest-neighbor similarity search over indexed chunks.
type Retriever interface {
	// Search embeds the query and returns chunks whose cosine similarity is
	// strictly above opts.Threshold, most similar first. An empty result is
	// not an error.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// SearchOptions configures similarity search.
type SearchOptions struct {
	// Restrict results to one ordinance. Empty searches every ordinance.
	OrdinanceID string `json:"ordinanceId,omitempty"`

	// Maximum number of results to return.
	Limit int `json:"limit,omitempty"`

	// Results must score strictly above this similarity. The zero value
	// keeps every positive match; use SearchSimilar for the default bar.
	Threshold float64 `json:"threshold"`
}

// SearchResult represents a similarity match.
type SearchResult struct {
	ChunkID       string  `json:"id"`
	OrdinanceID   string  `json:"ordinanceId"`
	Content       string  `json:"content"`
	SectionNumber string  `json:"sectionNumber,omitempty"`
	SectionTitle  string  `json:"sectionTitle,omitempty"`
	Similarity    float64 `json:"similarity"`
}

// QueryText wraps a search query with the retrieval instruction used to
// bias query embeddings toward ordinance sections.
func QueryText(query string) string {
	return "Search query: " + query + ". Find relevant sections about: " + query
}

// SearchSimilar runs a general similarity search at the default threshold.
// An empty ordinanceID searches every ordinance; a limit of zero uses
// DefaultSearchLimit.
func SearchSimilar(ctx context.Context, r Retriever, query, ordinanceID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return r.Search(ctx, query, SearchOptions{
		OrdinanceID: ordinanceID,
		Limit:       limit,
		Threshold:   DefaultSimilarityThreshold,
	})
}

// FindByCategoryKeywords joins the keywords into a single query and searches
// one ordinance at the category threshold.
func FindByCategoryKeywords(ctx context.Context, r Retriever, ordinanceID string, keywords []string, limit int) ([]SearchResult, error) {
	return r.Search(ctx, strings.Join(keywords, " "), SearchOptions{
		OrdinanceID: ordinanceID,
		Limit:       limit,
		Threshold:   CategorySimilarityThreshold,
	})
}

// ProcessResult reports the outcome of indexing one ordinance.
type ProcessResult struct {
	OrdinanceID      string `json:"ordinanceId"`
	ChunksCreated    int    `json:"chunksCreated"`
	Tokens           int    `json:"tokens"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

// OrdinanceProcessor chunks, embeds and stores an ordinance.
type OrdinanceProcessor interface {
	// Process indexes the ordinance. An ordinance that already has chunks is
	// left untouched and reported as AlreadyProcessed. Returns ENOTFOUND if
	// the ordinance does not exist and ECONFLICT if it is already being
	// processed.
	Process(ctx context.Context, ordinanceID string) (*ProcessResult, error)
}
