package opra

import (
	"context"
	"strings"
)

// Category is one entry of the records category taxonomy.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Required categories are requested regardless of analysis.
	Required bool `json:"required" yaml:"required"`

	// Keywords drive the supplemental similarity search for categories that
	// section classification tends to miss. Empty means no supplemental search.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// DefaultRecords are requested when no ordinance text supports the category.
	DefaultRecords []string `json:"defaultRecords,omitempty" yaml:"default_records,omitempty"`
}

// FallbackRecord is the generic bullet used when a category has no records.
func (c *Category) FallbackRecord() string {
	return "All records related to " + strings.ToLower(c.Name)
}

// Taxonomy is the fixed, ordered list of record categories. It is loaded once
// at startup and must not be modified afterwards.
type Taxonomy struct {
	categories []Category
	index      map[string]int
}

// NewTaxonomy builds a taxonomy, rejecting empty or duplicate IDs.
func NewTaxonomy(categories []Category) (*Taxonomy, error) {
	t := &Taxonomy{
		categories: make([]Category, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if c.ID == "" {
			return nil, Errorf(EINVALID, "category %d: id required", i)
		}
		if c.Name == "" {
			return nil, Errorf(EINVALID, "category %q: name required", c.ID)
		}
		if _, dup := t.index[c.ID]; dup {
			return nil, Errorf(EINVALID, "duplicate category %q", c.ID)
		}
		c.Keywords = append([]string(nil), c.Keywords...)
		c.DefaultRecords = append([]string(nil), c.DefaultRecords...)
		t.categories[i] = c
		t.index[c.ID] = i
	}
	return t, nil
}

// Categories returns a copy of every category in taxonomy order.
func (t *Taxonomy) Categories() []Category {
	return append([]Category(nil), t.categories...)
}

// Find returns the category with the given ID.
func (t *Taxonomy) Find(id string) (Category, bool) {
	i, ok := t.index[id]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// Required returns the IDs of all required categories in taxonomy order.
func (t *Taxonomy) Required() []string {
	var ids []string
	for _, c := range t.categories {
		if c.Required {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Supplemental returns the categories that carry a keyword battery.
func (t *Taxonomy) Supplemental() []Category {
	var out []Category
	for _, c := range t.categories {
		if len(c.Keywords) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.categories)
}

// Relevance grades how strongly a section relates to a category.
type Relevance string

// Relevance values.
const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// CategoryRelevance is one category judgment for a section.
type CategoryRelevance struct {
	CategoryID string    `json:"categoryId"`
	Relevance  Relevance `json:"relevance"`
	Reason     string    `json:"reason"`
}

// SectionAnalysis is the classification of one ordinance section.
type SectionAnalysis struct {
	RelevantCategories      []CategoryRelevance `json:"relevantCategories"`
	KeyProvisions           []string            `json:"keyProvisions"`
	HasRentControlBoard     bool                `json:"hasRentControlBoard"`
	HasComplaintProcess     bool                `json:"hasComplaintProcess"`
	HasEnforcementMechanism bool                `json:"hasEnforcementMechanism"`
}

// Analysis aggregates section analyses into a document-level view.
type Analysis struct {
	TotalSections           int                         `json:"totalSections"`
	HasRentControlBoard     bool                        `json:"hasRentControlBoard"`
	HasComplaintProcess     bool                        `json:"hasComplaintProcess"`
	HasEnforcementMechanism bool                        `json:"hasEnforcementMechanism"`
	KeyProvisions           []string                    `json:"keyProvisions"`
	SectionAnalyses         map[string]*SectionAnalysis `json:"sectionAnalyses"`
	FailedSections          []string                    `json:"failedSections,omitempty"`
	SupplementalCategories  []string                    `json:"supplementalCategories,omitempty"`
	TotalRelevantCategories int                         `json:"totalRelevantCategories"`
}

// AnalysisResult is the outcome of analyzing one ordinance.
type AnalysisResult struct {
	OrdinanceID        string    `json:"ordinanceId"`
	RelevantCategories []string  `json:"relevantCategories"`
	Analysis           *Analysis `json:"analysis"`
}

// RecordsSummary maps category IDs to the record bullets requested under them.
type RecordsSummary map[string][]string

// SectionClassifier assigns taxonomy relevance to ordinance sections.
type SectionClassifier interface {
	// ClassifySection classifies one section against the given categories.
	ClassifySection(ctx context.Context, content string, categories []Category) (*SectionAnalysis, error)
}

// RecordsWriter drafts concrete record types to request for a category.
type RecordsWriter interface {
	// WriteRecords returns 3-5 record descriptions grounded in the excerpts.
	WriteRecords(ctx context.Context, category Category, excerpts []string) ([]string, error)
}

// OrdinanceAnalyzer maps an indexed ordinance onto the category taxonomy.
type OrdinanceAnalyzer interface {
	// AnalyzeOrdinance determines the relevant categories for an ordinance.
	// Returns ENOTFOUND if the ordinance does not exist and ECONFLICT if it
	// has not been processed.
	AnalyzeOrdinance(ctx context.Context, ordinanceID string) (*AnalysisResult, error)

	// GenerateRecordsSummary drafts record bullets for each category.
	GenerateRecordsSummary(ctx context.Context, ordinanceID string, categoryIDs []string) (RecordsSummary, error)
}
