// Package readability is the fallback boilerplate remover for pages where
// trafilatura finds no main content.
package readability

import (
	nurl "net/url"
	"strings"

	"github.com/fwojciec/opra"
	"github.com/go-shiori/go-readability"
)

var _ opra.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct {
	pageURL *nurl.URL
}

// NewExtractor creates a new Extractor. pageURL, when parseable, is used to
// resolve relative links in the article.
func NewExtractor(pageURL string) *Extractor {
	u, err := nurl.Parse(pageURL)
	if err != nil || u.Host == "" {
		u = nil
	}
	return &Extractor{pageURL: u}
}

// Extract returns the readable article. Returns EINVALID for empty input or
// when readability finds no article text.
func (e *Extractor) Extract(rawHTML string) (*opra.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, opra.Errorf(opra.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, opra.Errorf(opra.EINVALID, "readability: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, opra.Errorf(opra.EINVALID, "no readable content")
	}

	title := article.Title
	if title == "" {
		title = article.SiteName
	}
	return &opra.ExtractResult{
		Title:       strings.TrimSpace(title),
		ContentHTML: article.Content,
	}, nil
}
