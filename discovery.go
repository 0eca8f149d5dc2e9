package opra

import (
	"context"
	"fmt"
)

// WebResult is one hit from a keyword search backend.
type WebResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchQueryOptions tunes a keyword search.
type SearchQueryOptions struct {
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
	Advanced       bool
}

// WebSearcher runs keyword searches against a general search backend.
type WebSearcher interface {
	// Search returns results for query. Returns EUNAVAILABLE on provider
	// failures such as network or authentication errors.
	Search(ctx context.Context, query string, opts SearchQueryOptions) ([]WebResult, error)
}

// Strategy names a discovery approach.
type Strategy string

// Discovery strategies in the order they are attempted.
const (
	StrategyFast   Strategy = "fast"
	StrategyAgent  Strategy = "agent"
	StrategyAnswer Strategy = "answer"
)

// DiscoveryResult is the outcome of one discovery strategy or of a whole
// discovery run.
type DiscoveryResult struct {
	Success    bool       `json:"success"`
	Content    string     `json:"content,omitempty"`
	URL        string     `json:"url,omitempty"`
	Title      string     `json:"title,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	Strategy   Strategy   `json:"strategy,omitempty"`
	Reasoning  []string   `json:"reasoning"`
	Citations  []Citation `json:"citations,omitempty"`
}

// Acceptable reports whether the result may be surfaced as an ordinance.
func (r *DiscoveryResult) Acceptable() bool {
	return r.Success && r.Content != "" && r.Confidence.AtLeast(ConfidenceMedium)
}

// Reasonf appends a formatted reasoning entry.
func (r *DiscoveryResult) Reasonf(format string, args ...any) {
	r.Reasoning = append(r.Reasoning, fmt.Sprintf(format, args...))
}

// DiscoverRequest identifies the municipality whose ordinance is wanted.
type DiscoverRequest struct {
	MunicipalityName string `json:"municipalityName" validate:"required,max=200"`
	County           string `json:"county,omitempty" validate:"max=100"`
	MunicipalityID   string `json:"municipalityId,omitempty"`
}

// Discoverer locates ordinance text on the web.
type Discoverer interface {
	// Discover runs the discovery strategies in order. When nothing reaches
	// medium confidence it returns ENOTFOUND; the partial result carrying
	// the collected reasoning is still returned alongside the error.
	Discover(ctx context.Context, name, county string) (*DiscoveryResult, error)
}

// DiscoveryOutcome is the result of discovering and storing an ordinance.
type DiscoveryOutcome struct {
	Municipality *Municipality    `json:"municipality"`
	Ordinance    *Ordinance       `json:"ordinance"`
	Custodian    *Custodian       `json:"custodian,omitempty"`
	Result       *DiscoveryResult `json:"result"`
}

// DiscoveryService discovers an ordinance and persists it together with
// its municipality and, when found, a records custodian.
type DiscoveryService interface {
	// DiscoverAndStore resolves or creates the municipality, runs discovery
	// and stores the result. Stored municipality values win over request
	// values. Returns ENOTFOUND with the outcome when nothing was found.
	DiscoverAndStore(ctx context.Context, req DiscoverRequest) (*DiscoveryOutcome, error)
}
