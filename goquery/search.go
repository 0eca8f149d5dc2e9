package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/opra"
)

var _ opra.WebSearcher = (*Searcher)(nil)

// DefaultSearchURL is the DuckDuckGo HTML endpoint.
const DefaultSearchURL = "https://html.duckduckgo.com/html/"

// DefaultMaxResults caps results when the caller sets no limit.
const DefaultMaxResults = 5

// Searcher runs keyword searches by scraping the DuckDuckGo HTML results
// page. It needs no API key and serves as the fallback when Tavily is not
// configured.
type Searcher struct {
	fetcher   opra.Fetcher
	searchURL string
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSearchURL overrides the results page endpoint.
func WithSearchURL(u string) SearcherOption {
	return func(s *Searcher) {
		s.searchURL = u
	}
}

// NewSearcher creates a Searcher that downloads result pages with fetcher.
func NewSearcher(fetcher opra.Fetcher, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		fetcher:   fetcher,
		searchURL: DefaultSearchURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search implements opra.WebSearcher. Scores are rank based: the first hit
// scores 1 and each following hit scores less.
func (s *Searcher) Search(ctx context.Context, query string, opts opra.SearchQueryOptions) ([]opra.WebResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, opra.Errorf(opra.EINVALID, "search query required")
	}

	html, err := s.fetcher.Fetch(ctx, s.resultsURL(query, opts))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, opra.Errorf(opra.EUNAVAILABLE, "duckduckgo: %v", err)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	return ParseResults(html, limit)
}

func (s *Searcher) resultsURL(query string, opts opra.SearchQueryOptions) string {
	terms := []string{query}
	for _, d := range opts.IncludeDomains {
		terms = append(terms, "site:"+d)
	}
	for _, d := range opts.ExcludeDomains {
		terms = append(terms, "-site:"+d)
	}
	return s.searchURL + "?q=" + url.QueryEscape(strings.Join(terms, " "))
}

// ParseResults extracts up to limit results from a DuckDuckGo HTML page.
// Redirect links are unwrapped to their target URL.
func ParseResults(html string, limit int) ([]opra.WebResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "failed to parse results page: %v", err)
	}

	var results []opra.WebResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}
		a := sel.Find("a.result__a").First()
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		target := unwrapRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, opra.WebResult{
			Title:   strings.TrimSpace(a.Text()),
			URL:     target,
			Content: strings.Join(strings.Fields(sel.Find(".result__snippet").Text()), " "),
		})
		return len(results) < limit
	})

	for i := range results {
		results[i].Score = 1 / float64(i+1)
	}
	return results, nil
}

// unwrapRedirect turns "//duckduckgo.com/l/?uddg=<target>" into the target.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
