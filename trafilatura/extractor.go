// Package trafilatura removes navigation and other boilerplate from
// municipal pages, keeping the ordinance body.
package trafilatura

import (
	"bytes"
	nurl "net/url"
	"strings"

	"github.com/fwojciec/opra"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ opra.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. When trafilatura yields no content the
// optional fallback extractor is tried.
type Extractor struct {
	pageURL  *nurl.URL
	fallback opra.Extractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageURL sets the URL the HTML was fetched from.
func WithPageURL(u string) Option {
	return func(e *Extractor) {
		if parsed, err := nurl.Parse(u); err == nil && parsed.Host != "" {
			e.pageURL = parsed
		}
	}
}

// WithFallback sets the extractor used when trafilatura finds nothing.
func WithFallback(fallback opra.Extractor) Option {
	return func(e *Extractor) {
		e.fallback = fallback
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the main content of rawHTML. Tables are kept since rent
// schedules are often tabular.
func (e *Extractor) Extract(rawHTML string) (*opra.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, opra.Errorf(opra.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		OriginalURL:     e.pageURL,
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeLinks:    true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil || result.ContentNode == nil || strings.TrimSpace(result.ContentText) == "" {
		if e.fallback != nil {
			return e.fallback.Extract(rawHTML)
		}
		if err != nil {
			return nil, opra.Errorf(opra.EINVALID, "trafilatura: %v", err)
		}
		return nil, opra.Errorf(opra.EINVALID, "no main content")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	return &opra.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
