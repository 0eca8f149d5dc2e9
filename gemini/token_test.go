package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("")
	require.NoError(t, err)

	var _ opra.TokenCounter = tc

	t.Run("counts tokens in chunk text", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "§ 155-3 - Rent Control Board\n\nThe Board shall consist of five members.")
		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		shortCount, err := tc.CountTokens(ctx, "Rent")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(ctx, "No landlord shall increase the rent of any dwelling by more than the percentage allowed under this chapter.")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})

	t.Run("canceled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "text")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
