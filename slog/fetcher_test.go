package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/mock"
	oprslog "github.com/fwojciec/opra/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		html, err := oprslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://ecode360.com/NJ/bayonne")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=https://ecode360.com/NJ/bayonne")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("network error")
			},
		}

		_, err := oprslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://example.com")

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="network error"`)
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	logger, _ := newLogger()
	closeCalled := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closeCalled = true
			return nil
		},
	}

	err := oprslog.NewLoggingFetcher(inner, logger).Close()

	require.NoError(t, err)
	assert.True(t, closeCalled)
}

func TestLoggingDocumentFetcher_FetchDocument(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()
	inner := &mock.DocumentFetcher{
		FetchDocumentFn: func(ctx context.Context, url string) (*opra.Document, error) {
			return &opra.Document{URL: url, ContentType: "application/pdf", Body: []byte("%PDF")}, nil
		},
	}

	doc, err := oprslog.NewLoggingDocumentFetcher(inner, logger).FetchDocument(context.Background(), "https://example.gov/rent.pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Contains(t, buf.String(), "content_type=application/pdf")
	assert.Contains(t, buf.String(), "bytes=4")
}
