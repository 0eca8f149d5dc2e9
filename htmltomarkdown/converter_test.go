package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("puts section headings at line start", func(t *testing.T) {
		t.Parallel()

		html := `<h2>§ 155-1. Definitions</h2><p>As used in this chapter, the following terms shall have the meanings indicated.</p><h2>§ 155-2. Rent Leveling Board</h2><p>There is hereby created a Rent Leveling Board.</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "§ 155-1. Definitions\n")
		assert.Contains(t, md, "\n§ 155-2. Rent Leveling Board\n")
		assert.NotContains(t, md, "#")
	})

	t.Run("keeps numbered sections unescaped", func(t *testing.T) {
		t.Parallel()

		html := `<p>1. Purpose</p><p>The purpose of this ordinance is to regulate rents.</p>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "1. Purpose")
		assert.NotContains(t, md, `\`)
	})

	t.Run("keeps tables", func(t *testing.T) {
		t.Parallel()

		html := `<table><tr><th>Year</th><th>Increase</th></tr><tr><td>2024</td><td>2.5%</td></tr></table>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Year")
		assert.Contains(t, md, "2.5%")
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("  \n ")

		assert.Equal(t, opra.EINVALID, opra.ErrorCode(err))
	})
}

func TestClean(t *testing.T) {
	t.Parallel()

	t.Run("collapses blank lines", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "a\n\nb", htmltomarkdown.Clean("a\n\n\n\n\nb\n"))
	})

	t.Run("removes escapes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Section 3. Fees - *annual*", htmltomarkdown.Clean(`Section 3\. Fees \- \*annual\*`))
	})

	t.Run("replaces non-breaking spaces", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "§ 12 Rent", htmltomarkdown.Clean("§ 12 Rent"))
	})
}
