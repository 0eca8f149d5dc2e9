package readability_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordinancePage() string {
	body := strings.Repeat("<p>No landlord shall charge rents in excess of the base rent plus the permitted annual increase established by the Rent Leveling Board under this chapter.</p>\n", 8)
	return `<!DOCTYPE html>
<html>
<head><title>Chapter 155 Rent Control</title></head>
<body>
<nav><a href="/">Home</a> <a href="/parks">Parks</a></nav>
<article>
<h1>Chapter 155 Rent Control</h1>
` + body + `
</article>
<footer>Copyright Township of Example</footer>
</body>
</html>`
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts article title and body", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor("https://example.gov/code/155").Extract(ordinancePage())

		require.NoError(t, err)
		assert.Equal(t, "Chapter 155 Rent Control", result.Title)
		assert.Contains(t, result.ContentHTML, "permitted annual increase")
		assert.NotContains(t, result.ContentHTML, "Parks")
	})

	t.Run("tolerates unparseable page URL", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor("::").Extract(ordinancePage())

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Rent Leveling Board")
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor("").Extract("")

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})
}
