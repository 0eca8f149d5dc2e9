package opra

import (
	"context"
	"io"
)

// BlobStore stores generated files and returns their public location.
type BlobStore interface {
	// Store writes the object and returns its URL.
	Store(ctx context.Context, key string, body []byte, contentType string) (url string, err error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Renderer renders a request letter into a printable document.
type Renderer interface {
	// Render writes the request as a PDF to w.
	Render(w io.Writer, req *Request, m *Municipality) error
}

// RequestPDFKey returns the storage key for a request's PDF.
func RequestPDFKey(m *Municipality, requestID string) string {
	return "opra-requests/" + Slugify(m.Name) + "-" + requestID + ".pdf"
}
