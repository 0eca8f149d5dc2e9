package mock

import (
	"context"
	"io"

	"github.com/fwojciec/opra"
)

var _ opra.BlobStore = (*BlobStore)(nil)

// BlobStore is a mock implementation of opra.BlobStore.
type BlobStore struct {
	StoreFn  func(ctx context.Context, key string, body []byte, contentType string) (string, error)
	DeleteFn func(ctx context.Context, key string) error
}

func (s *BlobStore) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	return s.StoreFn(ctx, key, body, contentType)
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	return s.DeleteFn(ctx, key)
}

var _ opra.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of opra.Renderer.
type Renderer struct {
	RenderFn func(w io.Writer, req *opra.Request, m *opra.Municipality) error
}

func (r *Renderer) Render(w io.Writer, req *opra.Request, m *opra.Municipality) error {
	return r.RenderFn(w, req, m)
}
