package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   opra.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next opra.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

var _ opra.DocumentFetcher = (*LoggingDocumentFetcher)(nil)

// LoggingDocumentFetcher wraps a DocumentFetcher with logging.
type LoggingDocumentFetcher struct {
	next   opra.DocumentFetcher
	logger *slog.Logger
}

// NewLoggingDocumentFetcher creates a new LoggingDocumentFetcher.
func NewLoggingDocumentFetcher(next opra.DocumentFetcher, logger *slog.Logger) *LoggingDocumentFetcher {
	return &LoggingDocumentFetcher{next: next, logger: logger}
}

// FetchDocument logs the download and delegates.
func (f *LoggingDocumentFetcher) FetchDocument(ctx context.Context, url string) (doc *opra.Document, err error) {
	defer func(begin time.Time) {
		var contentType string
		var size int
		if doc != nil {
			contentType, size = doc.ContentType, len(doc.Body)
		}
		f.logger.Info("fetch document",
			"url", url,
			"content_type", contentType,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchDocument(ctx, url)
}
