package goquery_test

import (
	"testing"

	"github.com/fwojciec/opra/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkFinder_FindOrdinanceLinks(t *testing.T) {
	t.Parallel()

	t.Run("ranks code publisher links above local links", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
<nav>
	<a href="/departments/clerk">Municipal Clerk</a>
	<a href="/rent-leveling">Rent Leveling Board</a>
</nav>
<main>
	<a href="https://ecode360.com/NJ/bayonne">Code of the City of Bayonne</a>
</main>
</body>
</html>`

		links, err := goquery.NewLinkFinder().FindOrdinanceLinks(html, "https://www.bayonnenj.org/", "Bayonne")

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "https://ecode360.com/NJ/bayonne", links[0].URL)
		assert.Equal(t, "Code of the City of Bayonne", links[0].Text)
		assert.Equal(t, "https://www.bayonnenj.org/rent-leveling", links[1].URL)
		assert.Greater(t, links[0].Score, links[1].Score)
	})

	t.Run("skips non-http and self links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
	<a href="mailto:clerk@example.gov">rent control questions</a>
	<a href="javascript:void(0)">Rent Control</a>
	<a href="#top">Rent Control</a>
	<a href="ftp://example.gov/rent-control.pdf">Rent Control</a>
</body></html>`

		links, err := goquery.NewLinkFinder().FindOrdinanceLinks(html, "https://example.gov/page", "Example")

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("drops unrelated links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
	<a href="/parks">Parks and Recreation</a>
	<a href="https://facebook.com/town">Follow us</a>
</body></html>`

		links, err := goquery.NewLinkFinder().FindOrdinanceLinks(html, "https://example.gov/", "Example")

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("deduplicates keeping the best anchor text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
	<a href="/docs/rent.pdf#page=2">Download</a>
	<a href="/docs/rent.pdf">Rent Control Ordinance</a>
</body></html>`

		links, err := goquery.NewLinkFinder().FindOrdinanceLinks(html, "https://example.gov/", "Example")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.gov/docs/rent.pdf", links[0].URL)
		assert.Equal(t, "Rent Control Ordinance", links[0].Text)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewLinkFinder().FindOrdinanceLinks("<html></html>", "://bad", "Example")

		require.Error(t, err)
	})
}
