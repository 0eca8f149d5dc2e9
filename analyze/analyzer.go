// Package analyze maps indexed ordinances onto the records category
// taxonomy and drafts the records to request under each category.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/opra"
	"golang.org/x/sync/errgroup"
)

// Defaults for analysis.
const (
	DefaultConcurrency = 4

	// RecordsExcerptLimit caps the chunks handed to the records writer.
	RecordsExcerptLimit = 3
)

var _ opra.OrdinanceAnalyzer = (*Analyzer)(nil)

// Analyzer classifies ordinance sections against the taxonomy and
// aggregates the results.
type Analyzer struct {
	Ordinances opra.OrdinanceService
	Chunks     opra.ChunkService
	Retriever  opra.Retriever
	Classifier opra.SectionClassifier
	Records    opra.RecordsWriter // optional
	Taxonomy   *opra.Taxonomy

	Concurrency int
	Logger      *slog.Logger
}

// AnalyzeOrdinance implements opra.OrdinanceAnalyzer.
func (a *Analyzer) AnalyzeOrdinance(ctx context.Context, ordinanceID string) (result *opra.AnalysisResult, err error) {
	logger := a.logger()
	begin := time.Now()
	defer func() {
		categories := 0
		if result != nil {
			categories = len(result.RelevantCategories)
		}
		logger.Info("analyze ordinance",
			"ordinance", ordinanceID,
			"categories", categories,
			"duration", time.Since(begin),
			"err", err,
		)
	}()

	o, err := a.Ordinances.FindOrdinanceByID(ctx, ordinanceID)
	if err != nil {
		return nil, err
	}

	chunks, err := a.Chunks.FindChunks(ctx, opra.ChunkFilter{OrdinanceID: &o.ID})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, opra.Errorf(opra.ECONFLICT, "ordinance must be processed before analysis")
	}

	sections := sectionChunks(chunks)
	analyses, err := a.classify(ctx, sections)
	if err != nil {
		return nil, err
	}

	analysis, relevant := a.aggregate(sections, analyses)

	for _, id := range a.Taxonomy.Required() {
		relevant[id] = true
	}

	for _, id := range a.supplemental(ctx, o.ID, relevant) {
		relevant[id] = true
		analysis.SupplementalCategories = append(analysis.SupplementalCategories, id)
	}

	ids := a.ordered(relevant)
	analysis.TotalRelevantCategories = len(ids)

	return &opra.AnalysisResult{
		OrdinanceID:        o.ID,
		RelevantCategories: ids,
		Analysis:           analysis,
	}, nil
}

// classify runs the section classifier with bounded concurrency. A failed
// section leaves a nil entry; only cancellation aborts the run.
func (a *Analyzer) classify(ctx context.Context, sections []*opra.Chunk) ([]*opra.SectionAnalysis, error) {
	categories := a.Taxonomy.Categories()
	out := make([]*opra.SectionAnalysis, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i, c := range sections {
		g.Go(func() error {
			sa, err := a.Classifier.ClassifySection(gctx, c.Content, categories)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.logger().Warn("classify section failed",
					"ordinance", c.OrdinanceID,
					"section", c.SectionNumber,
					"chunk", c.Index,
					"err", err,
				)
				return nil
			}
			out[i] = sa
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// aggregate unions high and medium categories, ORs the flags and joins key
// provisions in chunk order.
func (a *Analyzer) aggregate(sections []*opra.Chunk, analyses []*opra.SectionAnalysis) (*opra.Analysis, map[string]bool) {
	analysis := &opra.Analysis{
		TotalSections:   len(sections),
		KeyProvisions:   []string{},
		SectionAnalyses: make(map[string]*opra.SectionAnalysis, len(sections)),
	}
	relevant := make(map[string]bool)
	keys := make(map[string]int)

	for i, c := range sections {
		key := sectionKey(c, keys)
		sa := analyses[i]
		if sa == nil {
			analysis.FailedSections = append(analysis.FailedSections, key)
			continue
		}
		analysis.SectionAnalyses[key] = sa

		for _, cr := range sa.RelevantCategories {
			if cr.Relevance != opra.RelevanceHigh && cr.Relevance != opra.RelevanceMedium {
				continue
			}
			if _, ok := a.Taxonomy.Find(cr.CategoryID); ok {
				relevant[cr.CategoryID] = true
			}
		}
		analysis.HasRentControlBoard = analysis.HasRentControlBoard || sa.HasRentControlBoard
		analysis.HasComplaintProcess = analysis.HasComplaintProcess || sa.HasComplaintProcess
		analysis.HasEnforcementMechanism = analysis.HasEnforcementMechanism || sa.HasEnforcementMechanism
		analysis.KeyProvisions = append(analysis.KeyProvisions, sa.KeyProvisions...)
	}
	return analysis, relevant
}

// supplemental runs the keyword battery for categories classification
// missed and returns those whose best hit clears the supplemental bar.
// Retrieval failures skip the category.
func (a *Analyzer) supplemental(ctx context.Context, ordinanceID string, present map[string]bool) []string {
	if a.Retriever == nil {
		return nil
	}
	var added []string
	for _, c := range a.Taxonomy.Supplemental() {
		if present[c.ID] {
			continue
		}
		hits, err := opra.FindByCategoryKeywords(ctx, a.Retriever, ordinanceID, c.Keywords, 1)
		if err != nil {
			a.logger().Warn("supplemental search failed", "ordinance", ordinanceID, "category", c.ID, "err", err)
			continue
		}
		if len(hits) > 0 && hits[0].Similarity > opra.SupplementalSimilarityThreshold {
			added = append(added, c.ID)
		}
	}
	return added
}

// GenerateRecordsSummary implements opra.OrdinanceAnalyzer. Unknown
// category IDs are skipped. Categories without supporting text, or whose
// drafting fails, get the taxonomy defaults.
func (a *Analyzer) GenerateRecordsSummary(ctx context.Context, ordinanceID string, categoryIDs []string) (opra.RecordsSummary, error) {
	if _, err := a.Ordinances.FindOrdinanceByID(ctx, ordinanceID); err != nil {
		return nil, err
	}

	summary := make(opra.RecordsSummary, len(categoryIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for _, id := range categoryIDs {
		c, ok := a.Taxonomy.Find(id)
		if !ok {
			a.logger().Debug("skip unknown category", "category", id)
			continue
		}
		g.Go(func() error {
			records, err := a.records(gctx, ordinanceID, c)
			if err != nil {
				return err
			}
			mu.Lock()
			summary[c.ID] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (a *Analyzer) records(ctx context.Context, ordinanceID string, c opra.Category) ([]string, error) {
	if a.Retriever == nil || a.Records == nil {
		return defaultRecords(c), nil
	}

	hits, err := a.Retriever.Search(ctx, c.Name+" "+c.Description, opra.SearchOptions{
		OrdinanceID: ordinanceID,
		Limit:       RecordsExcerptLimit,
		Threshold:   opra.CategorySimilarityThreshold,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger().Warn("records search failed", "ordinance", ordinanceID, "category", c.ID, "err", err)
		return defaultRecords(c), nil
	}
	if len(hits) == 0 {
		return defaultRecords(c), nil
	}

	excerpts := make([]string, len(hits))
	for i, h := range hits {
		excerpts[i] = h.Content
	}

	records, err := a.Records.WriteRecords(ctx, c, excerpts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger().Warn("write records failed", "ordinance", ordinanceID, "category", c.ID, "err", err)
		return defaultRecords(c), nil
	}
	if len(records) == 0 {
		return defaultRecords(c), nil
	}
	return records, nil
}

func defaultRecords(c opra.Category) []string {
	if len(c.DefaultRecords) > 0 {
		return append([]string(nil), c.DefaultRecords...)
	}
	return []string{c.FallbackRecord()}
}

// ordered returns the IDs in taxonomy order.
func (a *Analyzer) ordered(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for _, c := range a.Taxonomy.Categories() {
		if set[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (a *Analyzer) concurrency() int {
	if a.Concurrency > 0 {
		return a.Concurrency
	}
	return DefaultConcurrency
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// sectionChunks returns the chunks produced from labeled sections.
func sectionChunks(chunks []*opra.Chunk) []*opra.Chunk {
	var out []*opra.Chunk
	for _, c := range chunks {
		if strings.TrimSpace(c.SectionNumber) != "" {
			out = append(out, c)
		}
	}
	return out
}

// sectionKey names a section in the analysis. Continuation chunks of one
// section get numbered suffixes.
func sectionKey(c *opra.Chunk, seen map[string]int) string {
	n := seen[c.SectionNumber]
	seen[c.SectionNumber] = n + 1
	if n == 0 {
		return c.SectionNumber
	}
	return fmt.Sprintf("%s (continued %d)", c.SectionNumber, n)
}
