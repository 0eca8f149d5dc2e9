package slog_test

import (
	"context"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/mock"
	oprslog "github.com/fwojciec/opra/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingEmbedder(t *testing.T) {
	t.Parallel()

	inner := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		},
		DimensionsFn: func() int { return 3 },
	}

	t.Run("logs batch sizes", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		e := oprslog.NewLoggingEmbedder(inner, logger)

		vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})

		require.NoError(t, err)
		assert.Len(t, vecs, 2)
		assert.Contains(t, buf.String(), "texts=2")
		assert.Contains(t, buf.String(), "vectors=2")
	})

	t.Run("logs single embedding", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		e := oprslog.NewLoggingEmbedder(inner, logger)

		_, err := e.Embed(context.Background(), "abc")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "dims=3")
		assert.Equal(t, 3, e.Dimensions())
	})
}

func TestLoggingClassifier_ClassifySection(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()
	inner := &mock.SectionClassifier{
		ClassifySectionFn: func(ctx context.Context, content string, categories []opra.Category) (*opra.SectionAnalysis, error) {
			return &opra.SectionAnalysis{RelevantCategories: []opra.CategoryRelevance{{CategoryID: "board-admin"}}}, nil
		},
	}

	_, err := oprslog.NewLoggingClassifier(inner, logger).ClassifySection(context.Background(), "section", []opra.Category{{ID: "board-admin"}, {ID: "fees"}})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "categories=2")
	assert.Contains(t, buf.String(), "matched=1")
}

func TestLoggingRecordsWriter_WriteRecords(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()
	inner := &mock.RecordsWriter{
		WriteRecordsFn: func(ctx context.Context, c opra.Category, excerpts []string) ([]string, error) {
			return []string{"a", "b", "c"}, nil
		},
	}

	_, err := oprslog.NewLoggingRecordsWriter(inner, logger).WriteRecords(context.Background(), opra.Category{ID: "board-admin"}, []string{"x"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "category=board-admin")
	assert.Contains(t, buf.String(), "records=3")
}
