// Package docconv extracts text from ordinances published as PDF or office
// documents. PDF support needs poppler's pdftotext on PATH.
package docconv

import (
	"context"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/fwojciec/opra"
)

var _ opra.TextExtractor = (*Extractor)(nil)

// Supported media types.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOC  = "application/msword"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeRTF  = "application/rtf"
	MediaTypeODT  = "application/vnd.oasis.opendocument.text"
	MediaTypeText = "text/plain"
)

var convertible = map[string]bool{
	MediaTypePDF:  true,
	MediaTypeDOC:  true,
	MediaTypeDOCX: true,
	MediaTypeRTF:  true,
	"text/rtf":    true,
	MediaTypeODT:  true,
}

// Extractor converts documents to plain text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supports reports whether contentType can be converted.
func Supports(contentType string) bool {
	ct := normalize(contentType)
	return convertible[ct] || ct == MediaTypeText
}

// ExtractText implements opra.TextExtractor.
func (e *Extractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ct := normalize(contentType)
	if ct == MediaTypeText {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	if !convertible[ct] {
		return "", opra.Errorf(opra.EINVALID, "unsupported document type %q", contentType)
	}

	resp, err := docconv.Convert(r, ct, true)
	if err != nil {
		return "", opra.Errorf(opra.EUNAVAILABLE, "converting %s: %v", ct, err)
	}
	text := strings.TrimSpace(resp.Body)
	if text == "" {
		return "", opra.Errorf(opra.EINVALID, "document has no extractable text")
	}
	return text, nil
}

func normalize(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
