package opra_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/stretchr/testify/assert"
)

func TestValidateSource(t *testing.T) {
	t.Parallel()

	t.Run("empty text is low confidence with issues", func(t *testing.T) {
		t.Parallel()

		v := opra.ValidateSource("")

		assert.False(t, v.Valid)
		assert.Equal(t, opra.ConfidenceLow, v.Confidence)
		assert.NotEmpty(t, v.Issues)
	})

	t.Run("long structured rent control text is high confidence", func(t *testing.T) {
		t.Parallel()

		text := "The rent control board established under section 5 shall meet monthly. " +
			strings.Repeat("a", 2500)

		v := opra.ValidateSource(text)

		assert.True(t, v.Valid)
		assert.Equal(t, opra.ConfidenceHigh, v.Confidence)
		assert.Equal(t, 100, v.Score)
		assert.Empty(t, v.Issues)
	})

	t.Run("mid-length text tops out at medium", func(t *testing.T) {
		t.Parallel()

		text := "Rent stabilization. Section 12 applies. " + strings.Repeat("b", 1500)

		v := opra.ValidateSource(text)

		assert.True(t, v.Valid)
		assert.Equal(t, 80, v.Score)
		assert.Equal(t, opra.ConfidenceMedium, v.Confidence)
	})

	t.Run("search results page is rejected", func(t *testing.T) {
		t.Parallel()

		v := opra.ValidateSource("search results — no results found")

		assert.False(t, v.Valid)
		assert.Equal(t, opra.ConfidenceLow, v.Confidence)
		assert.Contains(t, v.Issues, "Contains search results text")
		assert.Contains(t, v.Issues, `Contains "no results found"`)
	})

	t.Run("suspicious marker removes the clean bonus", func(t *testing.T) {
		t.Parallel()

		text := "Rent control chapter 4. Cookie policy. " + strings.Repeat("c", 2500)

		v := opra.ValidateSource(text)

		assert.Equal(t, 90, v.Score)
		assert.Equal(t, opra.ConfidenceHigh, v.Confidence)
		assert.Len(t, v.Issues, 1)
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		t.Parallel()

		v := opra.ValidateSource("RENT REGULATION ARTICLE 3")

		assert.NotContains(t, v.Issues, "No rent control keywords found")
		assert.NotContains(t, v.Issues, "No legal document structure found")
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		text := "rent control section 1 " + strings.Repeat("d", 900)

		assert.Equal(t, opra.ValidateSource(text), opra.ValidateSource(text))
	})
}

func TestConfidenceForScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, opra.ConfidenceLow, opra.ConfidenceForScore(50))
	assert.Equal(t, opra.ConfidenceMedium, opra.ConfidenceForScore(51))
	assert.Equal(t, opra.ConfidenceMedium, opra.ConfidenceForScore(80))
	assert.Equal(t, opra.ConfidenceHigh, opra.ConfidenceForScore(81))
}

func TestLooksLikeSearchStub(t *testing.T) {
	t.Parallel()

	assert.True(t, opra.LooksLikeSearchStub("Search Results for rent control"))
	assert.False(t, opra.LooksLikeSearchStub("§ 1 - Definitions"))
}
