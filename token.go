package opra

import "context"

// TokenCounter counts tokens in text for the embedding model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Embedder converts text into fixed-length vectors.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of every produced vector.
	Dimensions() int
}
