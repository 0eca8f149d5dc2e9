package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ opra.TokenCounter = (*TokenCounter)(nil)

// TokenizerModel is the model whose vocabulary sizes chunk token counts.
// The local tokenizer supports a fixed set of model names.
const TokenizerModel = "gemini-2.0-flash"

// TokenCounter counts tokens with the local Gemini tokenizer, so chunk
// token counts cost no API calls. Safe for concurrent use.
type TokenCounter struct {
	mu  sync.Mutex
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
// An empty model selects TokenizerModel.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = TokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini tokenizer %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the tokens of one ordinance chunk.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tc.mu.Lock()
	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	tc.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
