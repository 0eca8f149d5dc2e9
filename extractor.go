package opra

import (
	"context"
	"io"
)

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content with site navigation, footers and
	// sidebars removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// TextExtractor pulls plain text out of binary documents.
type TextExtractor interface {
	// ExtractText reads a document of the given MIME type and returns its text.
	// Returns EINVALID for unsupported types.
	ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error)
}
