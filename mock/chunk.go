package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of opra.ChunkService.
type ChunkService struct {
	CreateChunksFn            func(ctx context.Context, chunks []*opra.Chunk) error
	FindChunksFn              func(ctx context.Context, filter opra.ChunkFilter) ([]*opra.Chunk, error)
	CountChunksFn             func(ctx context.Context, ordinanceID string) (int, error)
	DeleteChunksByOrdinanceFn func(ctx context.Context, ordinanceID string) error
}

func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*opra.Chunk) error {
	return s.CreateChunksFn(ctx, chunks)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter opra.ChunkFilter) ([]*opra.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) CountChunks(ctx context.Context, ordinanceID string) (int, error) {
	return s.CountChunksFn(ctx, ordinanceID)
}

func (s *ChunkService) DeleteChunksByOrdinance(ctx context.Context, ordinanceID string) error {
	return s.DeleteChunksByOrdinanceFn(ctx, ordinanceID)
}

var _ opra.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of opra.Retriever.
type Retriever struct {
	SearchFn func(ctx context.Context, query string, opts opra.SearchOptions) ([]opra.SearchResult, error)
}

func (r *Retriever) Search(ctx context.Context, query string, opts opra.SearchOptions) ([]opra.SearchResult, error) {
	return r.SearchFn(ctx, query, opts)
}

var _ opra.OrdinanceProcessor = (*OrdinanceProcessor)(nil)

// OrdinanceProcessor is a mock implementation of opra.OrdinanceProcessor.
type OrdinanceProcessor struct {
	ProcessFn func(ctx context.Context, ordinanceID string) (*opra.ProcessResult, error)
}

func (p *OrdinanceProcessor) Process(ctx context.Context, ordinanceID string) (*opra.ProcessResult, error) {
	return p.ProcessFn(ctx, ordinanceID)
}
