package opra

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// municipal code sites.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Document is a raw downloaded file.
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}

// DocumentFetcher downloads raw documents such as PDFs.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*Document, error)
}
