package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.AnswerEngine = (*AnswerEngine)(nil)

// AnswerEngine is a mock implementation of opra.AnswerEngine.
type AnswerEngine struct {
	AskFn func(ctx context.Context, question string) (*opra.Answer, error)
}

func (a *AnswerEngine) Ask(ctx context.Context, question string) (*opra.Answer, error) {
	return a.AskFn(ctx, question)
}

var _ opra.OrdinanceJudge = (*OrdinanceJudge)(nil)

// OrdinanceJudge is a mock implementation of opra.OrdinanceJudge.
type OrdinanceJudge struct {
	JudgeOrdinanceFn func(ctx context.Context, content, sourceURL, municipality, county string) (*opra.Judgement, error)
}

func (j *OrdinanceJudge) JudgeOrdinance(ctx context.Context, content, sourceURL, municipality, county string) (*opra.Judgement, error) {
	return j.JudgeOrdinanceFn(ctx, content, sourceURL, municipality, county)
}

var _ opra.WebSearcher = (*WebSearcher)(nil)

// WebSearcher is a mock implementation of opra.WebSearcher.
type WebSearcher struct {
	SearchFn func(ctx context.Context, query string, opts opra.SearchQueryOptions) ([]opra.WebResult, error)
}

func (s *WebSearcher) Search(ctx context.Context, query string, opts opra.SearchQueryOptions) ([]opra.WebResult, error) {
	return s.SearchFn(ctx, query, opts)
}

var _ opra.Discoverer = (*Discoverer)(nil)

// Discoverer is a mock implementation of opra.Discoverer.
type Discoverer struct {
	DiscoverFn func(ctx context.Context, name, county string) (*opra.DiscoveryResult, error)
}

func (d *Discoverer) Discover(ctx context.Context, name, county string) (*opra.DiscoveryResult, error) {
	return d.DiscoverFn(ctx, name, county)
}

var _ opra.CustodianFinder = (*CustodianFinder)(nil)

// CustodianFinder is a mock implementation of opra.CustodianFinder.
type CustodianFinder struct {
	FindCustodianFn func(ctx context.Context, m *opra.Municipality) (*opra.Custodian, error)
}

func (f *CustodianFinder) FindCustodian(ctx context.Context, m *opra.Municipality) (*opra.Custodian, error) {
	return f.FindCustodianFn(ctx, m)
}

var _ opra.DiscoveryService = (*DiscoveryService)(nil)

// DiscoveryService is a mock implementation of opra.DiscoveryService.
type DiscoveryService struct {
	DiscoverAndStoreFn func(ctx context.Context, req opra.DiscoverRequest) (*opra.DiscoveryOutcome, error)
}

func (s *DiscoveryService) DiscoverAndStore(ctx context.Context, req opra.DiscoverRequest) (*opra.DiscoveryOutcome, error) {
	return s.DiscoverAndStoreFn(ctx, req)
}
