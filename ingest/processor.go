// Package ingest turns stored ordinances into embedded, searchable chunks.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/opra"
	"golang.org/x/sync/errgroup"
)

// Defaults for embedding batches.
const (
	DefaultBatchSize   = 20
	DefaultConcurrency = 3
)

var _ opra.OrdinanceProcessor = (*Processor)(nil)

// Processor chunks an ordinance, embeds the chunks in batches and stores
// them in one transaction.
type Processor struct {
	Ordinances   opra.OrdinanceService
	Chunks       opra.ChunkService
	Chunker      *opra.Chunker
	Embedder     opra.Embedder
	TokenCounter opra.TokenCounter // optional

	BatchSize   int
	Concurrency int
	Logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Process implements opra.OrdinanceProcessor.
func (p *Processor) Process(ctx context.Context, ordinanceID string) (result *opra.ProcessResult, err error) {
	logger := p.logger()
	begin := time.Now()
	defer func() {
		chunks := 0
		if result != nil {
			chunks = result.ChunksCreated
		}
		logger.Info("process ordinance",
			"ordinance", ordinanceID,
			"chunks", chunks,
			"duration", time.Since(begin),
			"err", err,
		)
	}()

	if !p.acquire(ordinanceID) {
		return nil, opra.Errorf(opra.ECONFLICT, "ordinance %s is already being processed", ordinanceID)
	}
	defer p.release(ordinanceID)

	o, err := p.Ordinances.FindOrdinanceByID(ctx, ordinanceID)
	if err != nil {
		return nil, err
	}

	n, err := p.Chunks.CountChunks(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return &opra.ProcessResult{OrdinanceID: o.ID, ChunksCreated: n, AlreadyProcessed: true}, nil
	}

	chunks := p.chunker().Chunk(o.FullText)
	if len(chunks) == 0 {
		return nil, opra.Errorf(opra.EINVALID, "ordinance %s has no text to index", o.ID)
	}
	for _, c := range chunks {
		c.OrdinanceID = o.ID
	}

	if err := p.embed(ctx, chunks); err != nil {
		return nil, err
	}

	tokens := p.countTokens(ctx, chunks)

	if err := p.Chunks.CreateChunks(ctx, chunks); err != nil {
		return nil, err
	}

	return &opra.ProcessResult{OrdinanceID: o.ID, ChunksCreated: len(chunks), Tokens: tokens}, nil
}

// embed fills in every chunk's embedding. Batches run concurrently; each
// writes only its own slice positions so order is preserved. Any failure
// aborts the whole ordinance.
func (p *Processor) embed(ctx context.Context, chunks []*opra.Chunk) error {
	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())

	for start := 0; start < len(chunks); start += size {
		batch := chunks[start:min(start+size, len(chunks))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			vectors, err := p.Embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			if len(vectors) != len(batch) {
				return opra.Errorf(opra.EUNAVAILABLE, "embedder returned %d vectors for %d texts", len(vectors), len(batch))
			}
			for i, c := range batch {
				c.Embedding = vectors[i]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	return nil
}

// countTokens records per-chunk token counts. Counting is best effort.
func (p *Processor) countTokens(ctx context.Context, chunks []*opra.Chunk) int {
	if p.TokenCounter == nil {
		return 0
	}
	total := 0
	for _, c := range chunks {
		n, err := p.TokenCounter.CountTokens(ctx, c.Content)
		if err != nil {
			p.logger().Debug("count tokens failed", "ordinance", c.OrdinanceID, "chunk", c.Index, "err", err)
			continue
		}
		c.TokenCount = n
		total += n
	}
	return total
}

func (p *Processor) acquire(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight == nil {
		p.inFlight = make(map[string]struct{})
	}
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Processor) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, id)
}

func (p *Processor) chunker() *opra.Chunker {
	if p.Chunker != nil {
		return p.Chunker
	}
	return opra.NewChunker()
}

func (p *Processor) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return DefaultConcurrency
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
