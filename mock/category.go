package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.SectionClassifier = (*SectionClassifier)(nil)

// SectionClassifier is a mock implementation of opra.SectionClassifier.
type SectionClassifier struct {
	ClassifySectionFn func(ctx context.Context, content string, categories []opra.Category) (*opra.SectionAnalysis, error)
}

func (c *SectionClassifier) ClassifySection(ctx context.Context, content string, categories []opra.Category) (*opra.SectionAnalysis, error) {
	return c.ClassifySectionFn(ctx, content, categories)
}

var _ opra.RecordsWriter = (*RecordsWriter)(nil)

// RecordsWriter is a mock implementation of opra.RecordsWriter.
type RecordsWriter struct {
	WriteRecordsFn func(ctx context.Context, category opra.Category, excerpts []string) ([]string, error)
}

func (w *RecordsWriter) WriteRecords(ctx context.Context, category opra.Category, excerpts []string) ([]string, error) {
	return w.WriteRecordsFn(ctx, category, excerpts)
}

var _ opra.OrdinanceAnalyzer = (*OrdinanceAnalyzer)(nil)

// OrdinanceAnalyzer is a mock implementation of opra.OrdinanceAnalyzer.
type OrdinanceAnalyzer struct {
	AnalyzeOrdinanceFn       func(ctx context.Context, ordinanceID string) (*opra.AnalysisResult, error)
	GenerateRecordsSummaryFn func(ctx context.Context, ordinanceID string, categoryIDs []string) (opra.RecordsSummary, error)
}

func (a *OrdinanceAnalyzer) AnalyzeOrdinance(ctx context.Context, ordinanceID string) (*opra.AnalysisResult, error) {
	return a.AnalyzeOrdinanceFn(ctx, ordinanceID)
}

func (a *OrdinanceAnalyzer) GenerateRecordsSummary(ctx context.Context, ordinanceID string, categoryIDs []string) (opra.RecordsSummary, error) {
	return a.GenerateRecordsSummaryFn(ctx, ordinanceID, categoryIDs)
}
