package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of opra.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ opra.DocumentFetcher = (*DocumentFetcher)(nil)

// DocumentFetcher is a mock implementation of opra.DocumentFetcher.
type DocumentFetcher struct {
	FetchDocumentFn func(ctx context.Context, url string) (*opra.Document, error)
}

func (f *DocumentFetcher) FetchDocument(ctx context.Context, url string) (*opra.Document, error) {
	return f.FetchDocumentFn(ctx, url)
}
