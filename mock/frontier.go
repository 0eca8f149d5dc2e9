package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.URLSet = (*URLSet)(nil)

// URLSet is a mock implementation of opra.URLSet.
type URLSet struct {
	AddFn  func(url string) bool
	SeenFn func(url string) bool
}

func (s *URLSet) Add(url string) bool {
	return s.AddFn(url)
}

func (s *URLSet) Seen(url string) bool {
	return s.SeenFn(url)
}

var _ opra.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of opra.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
