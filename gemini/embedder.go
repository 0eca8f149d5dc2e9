package gemini

import (
	"context"
	"time"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

var _ opra.Embedder = (*Embedder)(nil)

// embedBatchSize is the most texts sent in one EmbedContent call.
const embedBatchSize = 50

// Embedder implements opra.Embedder using Gemini embedding models.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
	delays     []time.Duration
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbeddingModel overrides the embedding model name.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *Embedder) { e.model = model }
}

// WithDimensions sets the output dimensionality.
func WithDimensions(n int) EmbedderOption {
	return func(e *Embedder) { e.dimensions = n }
}

// WithEmbedRetryDelays overrides the rate limit backoff.
func WithEmbedRetryDelays(delays ...time.Duration) EmbedderOption {
	return func(e *Embedder) { e.delays = delays }
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:     client,
		model:      DefaultEmbeddingModel,
		dimensions: DefaultDimensions,
		delays:     DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimensions returns the length of every produced vector.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Embed returns the vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	dim := int32(e.dimensions)
	config := &genai.EmbedContentConfig{OutputDimensionality: &dim}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		res, err := withRetry(ctx, e.delays, func() (*genai.EmbedContentResponse, error) {
			return e.client.Models.EmbedContent(ctx, e.model, contents, config)
		})
		if err != nil {
			return nil, unavailable("embed", err)
		}
		if res == nil || len(res.Embeddings) != end-start {
			got := 0
			if res != nil {
				got = len(res.Embeddings)
			}
			return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini embed: got %d embeddings for %d texts", got, end-start)
		}
		for _, emb := range res.Embeddings {
			if len(emb.Values) != e.dimensions {
				return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini embed: got %d dimensions, want %d", len(emb.Values), e.dimensions)
			}
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
