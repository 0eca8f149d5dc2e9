// Package gemini implements the opra language-model capabilities on Google
// Gemini: section classification, records drafting, ordinance judging,
// grounded answers, embeddings and local token counting.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultDimensions     = 768
)

// DefaultRetryDelays returns the backoff used when Gemini rate limits a call.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
}

// IsRateLimit reports whether err is a Gemini quota or rate limit error.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "RESOURCE_EXHAUSTED")
}

// withRetry calls fn, retrying rate limit failures after each delay.
func withRetry[T any](ctx context.Context, delays []time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !IsRateLimit(err) || attempt >= len(delays) {
			return zero, err
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}

// unavailable wraps a provider failure. Context errors pass through.
func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return opra.Errorf(opra.EUNAVAILABLE, "gemini %s: %v", op, err)
}

// generator is the slice of the genai client the text capabilities use.
type generator struct {
	client *genai.Client
	model  string
	delays []time.Duration
}

func (g *generator) generate(ctx context.Context, op, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	result, err := withRetry(ctx, g.delays, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: prompt}},
			}},
			config,
		)
	})
	if err != nil {
		return nil, unavailable(op, err)
	}
	if result == nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "gemini %s: nil result", op)
	}
	return result, nil
}

// Option configures a Gemini-backed capability.
type Option func(*generator)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(g *generator) { g.model = model }
}

// WithRetryDelays overrides the rate limit backoff.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(g *generator) { g.delays = delays }
}

func newGenerator(client *genai.Client, defaultModel string, opts []Option) generator {
	g := generator{client: client, model: defaultModel, delays: DefaultRetryDelays()}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// StripCodeFence removes a surrounding ```json fence that models sometimes
// add despite a JSON response type.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func float32Ptr(f float32) *float32 { return &f }
