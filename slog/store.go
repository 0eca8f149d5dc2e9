package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   opra.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next opra.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Search logs the query, threshold and best similarity.
func (r *LoggingRetriever) Search(ctx context.Context, query string, opts opra.SearchOptions) (results []opra.SearchResult, err error) {
	defer func(begin time.Time) {
		var best float64
		if len(results) > 0 {
			best = results[0].Similarity
		}
		r.logger.Info("vector search",
			"query", query,
			"ordinance_id", opts.OrdinanceID,
			"threshold", opts.Threshold,
			"results", len(results),
			"best", best,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Search(ctx, query, opts)
}

var _ opra.BlobStore = (*LoggingBlobStore)(nil)

// LoggingBlobStore wraps a BlobStore with logging.
type LoggingBlobStore struct {
	next   opra.BlobStore
	logger *slog.Logger
}

// NewLoggingBlobStore creates a new LoggingBlobStore.
func NewLoggingBlobStore(next opra.BlobStore, logger *slog.Logger) *LoggingBlobStore {
	return &LoggingBlobStore{next: next, logger: logger}
}

// Store logs the upload.
func (s *LoggingBlobStore) Store(ctx context.Context, key string, body []byte, contentType string) (url string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("blob store",
			"key", key,
			"bytes", len(body),
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Store(ctx, key, body, contentType)
}

// Delete logs the removal.
func (s *LoggingBlobStore) Delete(ctx context.Context, key string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("blob delete",
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Delete(ctx, key)
}
