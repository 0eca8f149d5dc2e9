// Package tavily implements opra.WebSearcher on the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/opra"
)

// DefaultBaseURL is the Tavily API endpoint.
const DefaultBaseURL = "https://api.tavily.com"

// DefaultTimeout bounds one search call.
const DefaultTimeout = 30 * time.Second

// DefaultMaxResults applies when the caller sets no limit.
const DefaultMaxResults = 5

var _ opra.WebSearcher = (*Searcher)(nil)

// Searcher queries Tavily.
type Searcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL points the searcher at another endpoint.
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) { s.client = c }
}

// NewSearcher creates a new Searcher.
func NewSearcher(apiKey string, opts ...Option) *Searcher {
	s := &Searcher{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeAnswer  bool     `json:"include_answer"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs a keyword search. Provider failures return EUNAVAILABLE.
func (s *Searcher) Search(ctx context.Context, query string, opts opra.SearchQueryOptions) ([]opra.WebResult, error) {
	if query == "" {
		return nil, opra.Errorf(opra.EINVALID, "search query required")
	}
	if s.apiKey == "" {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "tavily: API key not configured")
	}

	body := searchRequest{
		Query:          query,
		SearchDepth:    "basic",
		MaxResults:     opts.MaxResults,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
	}
	if opts.Advanced {
		body.SearchDepth = "advanced"
	}
	if body.MaxResults <= 0 {
		body.MaxResults = DefaultMaxResults
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, opra.Errorf(opra.EUNAVAILABLE, "tavily: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, opra.Errorf(opra.EUNAVAILABLE, "tavily: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "tavily: decode response: %v", err)
	}

	results := make([]opra.WebResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, opra.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}

// String identifies the backend in logs.
func (s *Searcher) String() string {
	return fmt.Sprintf("tavily(%s)", s.baseURL)
}
