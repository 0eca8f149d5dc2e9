package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/mock"
	"github.com/fwojciec/opra/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkService_CreateChunks(t *testing.T) {
	t.Parallel()

	t.Run("stores chunks with embeddings", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		m := createTestMunicipality(t, db, "Hoboken")
		o := createTestOrdinance(t, db, m.ID)
		svc := sqlite.NewChunkService(db)

		chunks := []*opra.Chunk{
			{OrdinanceID: o.ID, Index: 0, SectionNumber: "155-1", SectionTitle: "Definitions",
				Content: "§ 155-1 - Definitions\n\nText", Embedding: []float32{0.5, -0.25, 1}, StartChar: 0, EndChar: 30, TokenCount: 8},
			{OrdinanceID: o.ID, Index: 1, Content: "more", Embedding: []float32{1, 0, 0}, StartChar: 30, EndChar: 34},
		}
		require.NoError(t, svc.CreateChunks(ctx, chunks))
		assert.NotEmpty(t, chunks[0].ID)
		assert.NotEmpty(t, chunks[1].ID)

		got, err := svc.FindChunks(ctx, opra.ChunkFilter{OrdinanceID: &o.ID})
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, 0, got[0].Index)
		assert.Equal(t, "155-1", got[0].SectionNumber)
		assert.Equal(t, "Definitions", got[0].SectionTitle)
		assert.Equal(t, []float32{0.5, -0.25, 1}, got[0].Embedding)
		assert.Equal(t, 30, got[0].EndChar)
		assert.Equal(t, 8, got[0].TokenCount)
		assert.Equal(t, 1, got[1].Index)
	})

	t.Run("stores nothing when any chunk is invalid", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		m := createTestMunicipality(t, db, "Hoboken")
		o := createTestOrdinance(t, db, m.ID)
		svc := sqlite.NewChunkService(db)

		err := svc.CreateChunks(ctx, []*opra.Chunk{
			{OrdinanceID: o.ID, Index: 0, Content: "ok"},
			{OrdinanceID: o.ID, Index: 1},
		})
		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))

		n, err := svc.CountChunks(ctx, o.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("rolls back on duplicate index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		m := createTestMunicipality(t, db, "Hoboken")
		o := createTestOrdinance(t, db, m.ID)
		svc := sqlite.NewChunkService(db)

		err := svc.CreateChunks(ctx, []*opra.Chunk{
			{OrdinanceID: o.ID, Index: 0, Content: "a"},
			{OrdinanceID: o.ID, Index: 0, Content: "b"},
		})
		assert.Equal(t, opra.ECONFLICT, opra.ErrorCode(err))

		n, err := svc.CountChunks(ctx, o.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestChunkService_DeleteChunksByOrdinance(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	m := createTestMunicipality(t, db, "Hoboken")
	a := createTestOrdinance(t, db, m.ID)
	b := createTestOrdinance(t, db, m.ID)
	svc := sqlite.NewChunkService(db)
	require.NoError(t, svc.CreateChunks(ctx, []*opra.Chunk{{OrdinanceID: a.ID, Index: 0, Content: "a"}}))
	require.NoError(t, svc.CreateChunks(ctx, []*opra.Chunk{{OrdinanceID: b.ID, Index: 0, Content: "b"}}))

	require.NoError(t, svc.DeleteChunksByOrdinance(ctx, a.ID))

	n, err := svc.CountChunks(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = svc.CountChunks(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRetriever_Search(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, db *sqlite.DB) *opra.Ordinance {
		t.Helper()
		m := createTestMunicipality(t, db, "Hoboken")
		o := createTestOrdinance(t, db, m.ID)
		require.NoError(t, sqlite.NewChunkService(db).CreateChunks(context.Background(), []*opra.Chunk{
			{OrdinanceID: o.ID, Index: 0, Content: "orthogonal", Embedding: []float32{0, 1}},
			{OrdinanceID: o.ID, Index: 1, Content: "exact", Embedding: []float32{1, 0}},
			{OrdinanceID: o.ID, Index: 2, Content: "close", Embedding: []float32{1, 1}},
			{OrdinanceID: o.ID, Index: 3, Content: "opposite", Embedding: []float32{-1, 0}},
		}))
		return o
	}

	embedder := func(vec []float32) *mock.Embedder {
		return &mock.Embedder{
			EmbedFn: func(_ context.Context, text string) ([]float32, error) {
				return vec, nil
			},
		}
	}

	t.Run("returns results above threshold most similar first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		got, err := r.Search(context.Background(), "rent board", opra.SearchOptions{
			OrdinanceID: o.ID,
			Threshold:   0.5,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "exact", got[0].Content)
		assert.InDelta(t, 1.0, got[0].Similarity, 1e-6)
		assert.Equal(t, "close", got[1].Content)
		assert.InDelta(t, 0.7071, got[1].Similarity, 1e-3)
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		got, err := r.Search(context.Background(), "q", opra.SearchOptions{OrdinanceID: o.ID, Threshold: 0})
		require.NoError(t, err)
		for _, res := range got {
			assert.Greater(t, res.Similarity, 0.0)
		}
		assert.Len(t, got, 2)
	})

	t.Run("threshold above one yields empty result", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		got, err := r.Search(context.Background(), "q", opra.SearchOptions{OrdinanceID: o.ID, Threshold: 1.1})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("limit truncates sorted results", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		got, err := r.Search(context.Background(), "q", opra.SearchOptions{OrdinanceID: o.ID, Threshold: -2, Limit: 3})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
		}
	})

	t.Run("embeds the prefixed query", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		var seen string
		r := sqlite.NewRetriever(db, &mock.Embedder{
			EmbedFn: func(_ context.Context, text string) ([]float32, error) {
				seen = text
				return []float32{1, 0}, nil
			},
		})

		_, err := r.Search(context.Background(), "rent board", opra.SearchOptions{OrdinanceID: o.ID})
		require.NoError(t, err)
		assert.Equal(t, "Search query: rent board. Find relevant sections about: rent board", seen)
	})

	t.Run("restricts to one ordinance", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		o := seed(t, db)
		other := createTestOrdinance(t, db, o.MunicipalityID)
		require.NoError(t, sqlite.NewChunkService(db).CreateChunks(context.Background(), []*opra.Chunk{
			{OrdinanceID: other.ID, Index: 0, Content: "elsewhere", Embedding: []float32{1, 0}},
		}))
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		got, err := r.Search(context.Background(), "q", opra.SearchOptions{OrdinanceID: other.ID, Threshold: 0.5})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "elsewhere", got[0].Content)

		all, err := r.Search(context.Background(), "q", opra.SearchOptions{Threshold: 0.5})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("rejects blank query", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		r := sqlite.NewRetriever(db, embedder([]float32{1, 0}))

		_, err := r.Search(context.Background(), strings.Repeat(" ", 3), opra.SearchOptions{})
		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})

	t.Run("propagates embedder failure", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		r := sqlite.NewRetriever(db, &mock.Embedder{
			EmbedFn: func(context.Context, string) ([]float32, error) {
				return nil, opra.Errorf(opra.EUNAVAILABLE, "quota exceeded")
			},
		})

		_, err := r.Search(context.Background(), "q", opra.SearchOptions{})
		require.Error(t, err)
		assert.Equal(t, opra.EUNAVAILABLE, opra.ErrorCode(err))
	})
}
