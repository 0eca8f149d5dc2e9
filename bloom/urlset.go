// Package bloom provides URL deduplication using Bloom filters.
package bloom

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/opra"
)

var _ opra.URLSet = (*URLSet)(nil)

// Defaults sized for one discovery run across all strategies.
const (
	DefaultCapacity          = 10000
	DefaultFalsePositiveRate = 0.001
)

// URLSet records URLs already examined during discovery.
// False positives are possible, so a URL may rarely be skipped unseen.
type URLSet struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewURLSet creates a set sized for n expected URLs with the given false
// positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records the URL. Returns false if it was already present.
func (s *URLSet) Add(rawURL string) bool {
	key := Normalize(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.f.TestOrAddString(key)
}

// Seen returns true if the URL has been recorded.
func (s *URLSet) Seen(rawURL string) bool {
	key := Normalize(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestString(key)
}

// EstimatedCount returns the approximate number of URLs in the set.
func (s *URLSet) EstimatedCount() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}

// Normalize reduces equivalent spellings of a URL to one key: the scheme
// and host are lowercased, the fragment and a trailing slash are dropped.
// Unparseable input is returned trimmed.
func Normalize(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	} else {
		u.Path = ""
	}
	return u.String()
}
