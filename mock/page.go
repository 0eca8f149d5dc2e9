package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.PageLoader = (*PageLoader)(nil)

// PageLoader is a mock implementation of opra.PageLoader.
type PageLoader struct {
	LoadFn func(ctx context.Context, url string) (*opra.Page, error)
}

func (l *PageLoader) Load(ctx context.Context, url string) (*opra.Page, error) {
	return l.LoadFn(ctx, url)
}

var _ opra.LinkFinder = (*LinkFinder)(nil)

// LinkFinder is a mock implementation of opra.LinkFinder.
type LinkFinder struct {
	FindOrdinanceLinksFn func(html, baseURL, municipality string) ([]opra.Link, error)
}

func (f *LinkFinder) FindOrdinanceLinks(html, baseURL, municipality string) ([]opra.Link, error) {
	return f.FindOrdinanceLinksFn(html, baseURL, municipality)
}
