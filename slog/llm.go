package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   opra.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next opra.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed logs a single embedding call.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Info("embed",
			"chars", len(text),
			"dims", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text)
}

// EmbedBatch logs a batch embedding call.
func (e *LoggingEmbedder) EmbedBatch(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Info("embed batch",
			"texts", len(texts),
			"vectors", len(vecs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedBatch(ctx, texts)
}

// Dimensions delegates to the wrapped embedder.
func (e *LoggingEmbedder) Dimensions() int {
	return e.next.Dimensions()
}

var _ opra.SectionClassifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a SectionClassifier with logging.
type LoggingClassifier struct {
	next   opra.SectionClassifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next opra.SectionClassifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// ClassifySection logs how many categories the section matched.
func (c *LoggingClassifier) ClassifySection(ctx context.Context, content string, categories []opra.Category) (sa *opra.SectionAnalysis, err error) {
	defer func(begin time.Time) {
		var matched int
		if sa != nil {
			matched = len(sa.RelevantCategories)
		}
		c.logger.Info("classify section",
			"chars", len(content),
			"categories", len(categories),
			"matched", matched,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.ClassifySection(ctx, content, categories)
}

var _ opra.RecordsWriter = (*LoggingRecordsWriter)(nil)

// LoggingRecordsWriter wraps a RecordsWriter with logging.
type LoggingRecordsWriter struct {
	next   opra.RecordsWriter
	logger *slog.Logger
}

// NewLoggingRecordsWriter creates a new LoggingRecordsWriter.
func NewLoggingRecordsWriter(next opra.RecordsWriter, logger *slog.Logger) *LoggingRecordsWriter {
	return &LoggingRecordsWriter{next: next, logger: logger}
}

// WriteRecords logs the number of records produced.
func (w *LoggingRecordsWriter) WriteRecords(ctx context.Context, category opra.Category, excerpts []string) (records []string, err error) {
	defer func(begin time.Time) {
		w.logger.Info("write records",
			"category", category.ID,
			"excerpts", len(excerpts),
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteRecords(ctx, category, excerpts)
}
