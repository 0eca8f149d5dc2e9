// Package http provides plain HTTP implementations of opra.Fetcher and
// opra.DocumentFetcher for municipal sites that render without JavaScript.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/opra"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps downloaded bodies. Codified ordinances published
// as scanned PDFs can be large.
const DefaultMaxBodySize = 32 << 20

// DefaultUserAgent identifies requests to municipal sites. Some code
// publishers refuse the Go default agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; opra/1.0; +https://github.com/fwojciec/opra)"

var (
	_ opra.Fetcher         = (*Fetcher)(nil)
	_ opra.DocumentFetcher = (*Fetcher)(nil)
)

// Fetcher retrieves pages and documents using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	doc, err := f.FetchDocument(ctx, url)
	if err != nil {
		return "", err
	}
	return string(doc.Body), nil
}

// FetchDocument downloads url and reports its media type without
// parameters. A missing Content-Type is sniffed from the body.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*opra.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("body of %s exceeds %d bytes", url, f.maxBody)
	}

	return &opra.Document{
		URL:         resp.Request.URL.String(),
		ContentType: mediaType(resp.Header.Get("Content-Type"), body),
		Body:        body,
	}, nil
}

// statusError classifies a non-200 response so callers can tell missing
// pages from transient failures worth retrying.
func statusError(status int, url string) error {
	code := opra.EINVALID
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		code = opra.ENOTFOUND
	case status == http.StatusTooManyRequests || status >= 500:
		code = opra.EUNAVAILABLE
	}
	return opra.Errorf(code, "HTTP %d for %s", status, url)
}

func mediaType(header string, body []byte) string {
	if header == "" {
		header = http.DetectContentType(body)
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	}
	return mt
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
