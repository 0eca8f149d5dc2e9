package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newTestStore(t *testing.T, status int) (*s3.BlobStore, <-chan capturedRequest) {
	t.Helper()

	reqs := make(chan capturedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs <- capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	store, err := s3.NewBlobStore(context.Background(), s3.Config{
		Bucket:          "opra-files",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		PublicBaseURL:   "https://files.example.com",
	})
	require.NoError(t, err)
	return store, reqs
}

func TestBlobStore_Store(t *testing.T) {
	t.Parallel()

	t.Run("uploads and returns public URL", func(t *testing.T) {
		t.Parallel()

		store, reqs := newTestStore(t, http.StatusOK)

		url, err := store.Store(context.Background(), "opra-requests/hoboken-r1.pdf", []byte("%PDF-1.3 test"), "application/pdf")

		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/opra-requests/hoboken-r1.pdf", url)
		got := <-reqs
		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "/opra-files/opra-requests/hoboken-r1.pdf", got.path)
		assert.Equal(t, "application/pdf", got.contentType)
		assert.Contains(t, got.body, "%PDF-1.3 test")
	})

	t.Run("maps failures to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t, http.StatusForbidden)

		_, err := store.Store(context.Background(), "k.pdf", []byte("x"), "application/pdf")

		assert.Equal(t, opra.EUNAVAILABLE, opra.ErrorCode(err))
	})

	t.Run("requires key", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t, http.StatusOK)

		_, err := store.Store(context.Background(), "", []byte("x"), "application/pdf")

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})
}

func TestBlobStore_Delete(t *testing.T) {
	t.Parallel()

	store, reqs := newTestStore(t, http.StatusOK)

	err := store.Delete(context.Background(), "opra-requests/hoboken-r1.pdf")

	require.NoError(t, err)
	got := <-reqs
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/opra-files/opra-requests/hoboken-r1.pdf", got.path)
}

func TestNewBlobStore(t *testing.T) {
	t.Parallel()

	t.Run("requires bucket", func(t *testing.T) {
		t.Parallel()

		_, err := s3.NewBlobStore(context.Background(), s3.Config{Region: "us-east-1"})

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})

	t.Run("requires region", func(t *testing.T) {
		t.Parallel()

		_, err := s3.NewBlobStore(context.Background(), s3.Config{Bucket: "b"})

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})
}
