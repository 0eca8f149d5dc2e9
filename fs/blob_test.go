package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStore_KeyToPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := fs.NewBlobStore(dir)

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{
			name: "nested key",
			key:  "opra-requests/hoboken-req-1.pdf",
			want: filepath.Join(dir, "opra-requests", "hoboken-req-1.pdf"),
		},
		{
			name: "leading slash",
			key:  "/a.pdf",
			want: filepath.Join(dir, "a.pdf"),
		},
		{
			name:    "empty",
			key:     "",
			wantErr: true,
		},
		{
			name:    "escapes the directory",
			key:     "../secrets.pdf",
			wantErr: true,
		},
		{
			name:    "escapes after cleaning",
			key:     "a/../../b.pdf",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.KeyToPath(tt.key)
			if tt.wantErr {
				assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobStore_Store(t *testing.T) {
	t.Parallel()

	t.Run("writes the object and returns a file url", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s := fs.NewBlobStore(dir)

		url, err := s.Store(context.Background(), "opra-requests/hoboken-req-1.pdf", []byte("%PDF-1.3"), "application/pdf")

		require.NoError(t, err)
		assert.Contains(t, url, "file://")
		assert.Contains(t, url, "opra-requests/hoboken-req-1.pdf")

		data, err := os.ReadFile(filepath.Join(dir, "opra-requests", "hoboken-req-1.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.3", string(data))
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s := fs.NewBlobStore(dir)

		_, err := s.Store(context.Background(), "r.pdf", []byte("old"), "application/pdf")
		require.NoError(t, err)
		_, err = s.Store(context.Background(), "r.pdf", []byte("new"), "application/pdf")
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		data, err := os.ReadFile(filepath.Join(dir, "r.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewBlobStore(t.TempDir()).Store(ctx, "r.pdf", []byte("x"), "application/pdf")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBlobStore_Delete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := fs.NewBlobStore(dir)
	_, err := s.Store(context.Background(), "r.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "r.pdf"))
	_, err = os.Stat(filepath.Join(dir, "r.pdf"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(context.Background(), "r.pdf"))
}
