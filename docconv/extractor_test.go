package docconv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/docconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("passes plain text through", func(t *testing.T) {
		t.Parallel()

		text, err := docconv.NewExtractor().ExtractText(context.Background(),
			strings.NewReader("  § 155-1 Definitions\n"), "text/plain; charset=utf-8")

		require.NoError(t, err)
		assert.Equal(t, "§ 155-1 Definitions", text)
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		t.Parallel()

		_, err := docconv.NewExtractor().ExtractText(context.Background(),
			strings.NewReader("GIF89a"), "image/gif")

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := docconv.NewExtractor().ExtractText(ctx, strings.NewReader("x"), docconv.MediaTypePDF)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSupports(t *testing.T) {
	t.Parallel()

	assert.True(t, docconv.Supports("application/PDF"))
	assert.True(t, docconv.Supports(docconv.MediaTypeDOCX))
	assert.True(t, docconv.Supports("text/plain"))
	assert.False(t, docconv.Supports("text/html"))
}
