package mock

import (
	"context"
	"io"

	"github.com/fwojciec/opra"
)

var _ opra.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of opra.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*opra.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*opra.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ opra.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of opra.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(ctx context.Context, r io.Reader, contentType string) (string, error)
}

func (e *TextExtractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error) {
	return e.ExtractTextFn(ctx, r, contentType)
}
