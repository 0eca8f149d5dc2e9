package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.WebSearcher = (*LoggingWebSearcher)(nil)

// LoggingWebSearcher wraps a WebSearcher with logging.
type LoggingWebSearcher struct {
	next   opra.WebSearcher
	logger *slog.Logger
}

// NewLoggingWebSearcher creates a new LoggingWebSearcher.
func NewLoggingWebSearcher(next opra.WebSearcher, logger *slog.Logger) *LoggingWebSearcher {
	return &LoggingWebSearcher{next: next, logger: logger}
}

// Search logs the query and the number of results.
func (s *LoggingWebSearcher) Search(ctx context.Context, query string, opts opra.SearchQueryOptions) (results []opra.WebResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("web search",
			"query", query,
			"max_results", opts.MaxResults,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}

var _ opra.AnswerEngine = (*LoggingAnswerEngine)(nil)

// LoggingAnswerEngine wraps an AnswerEngine with logging.
type LoggingAnswerEngine struct {
	next   opra.AnswerEngine
	logger *slog.Logger
}

// NewLoggingAnswerEngine creates a new LoggingAnswerEngine.
func NewLoggingAnswerEngine(next opra.AnswerEngine, logger *slog.Logger) *LoggingAnswerEngine {
	return &LoggingAnswerEngine{next: next, logger: logger}
}

// Ask logs the answer size and citation count.
func (a *LoggingAnswerEngine) Ask(ctx context.Context, question string) (answer *opra.Answer, err error) {
	defer func(begin time.Time) {
		var chars, citations int
		if answer != nil {
			chars, citations = len(answer.Content), len(answer.Citations)
		}
		a.logger.Info("answer engine",
			"chars", chars,
			"citations", citations,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, question)
}

var _ opra.OrdinanceJudge = (*LoggingJudge)(nil)

// LoggingJudge wraps an OrdinanceJudge with logging.
type LoggingJudge struct {
	next   opra.OrdinanceJudge
	logger *slog.Logger
}

// NewLoggingJudge creates a new LoggingJudge.
func NewLoggingJudge(next opra.OrdinanceJudge, logger *slog.Logger) *LoggingJudge {
	return &LoggingJudge{next: next, logger: logger}
}

// JudgeOrdinance logs the verdict.
func (j *LoggingJudge) JudgeOrdinance(ctx context.Context, content, sourceURL, municipality, county string) (verdict *opra.Judgement, err error) {
	defer func(begin time.Time) {
		valid := verdict != nil && verdict.Valid
		j.logger.Info("judge ordinance",
			"url", sourceURL,
			"municipality", municipality,
			"chars", len(content),
			"valid", valid,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return j.next.JudgeOrdinance(ctx, content, sourceURL, municipality, county)
}
