package opra

import "context"

// URLSet remembers candidate URLs already examined during one discovery run
// so later strategies do not fetch or judge them again.
type URLSet interface {
	// Add records the URL. Returns false if it was already present.
	Add(url string) bool

	// Seen returns true if the URL has been recorded.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
