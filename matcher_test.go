package opra_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/stretchr/testify/assert"
)

func TestMatchMunicipality(t *testing.T) {
	t.Parallel()

	t.Run("matches New Jersey text naming the municipality", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Newark, New Jersey adopts a rent control ordinance.", "Newark", "")

		assert.True(t, m.IsMatch)
		assert.Positive(t, m.Confidence)
		assert.Empty(t, m.Issues)
	})

	t.Run("rejects same-named town in another state", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Newark, Delaware rent control", "Newark", "")

		assert.False(t, m.IsMatch)
		assert.LessOrEqual(t, m.Score, 0)
		assert.Zero(t, m.Confidence)
		assert.Contains(t, m.Issues, "Content appears to be for delaware, not New Jersey")
	})

	t.Run("other state mention is fine alongside New Jersey", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Hoboken, New Jersey, across the river from New York", "Hoboken", "")

		assert.True(t, m.IsMatch)
		assert.Equal(t, 50, m.Score)
	})

	t.Run("rewards county and municipality type", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Township of Mount Laurel, Burlington County, New Jersey", "Mount Laurel", "Burlington")

		assert.True(t, m.IsMatch)
		assert.Equal(t, 30+20+25+15, m.Score)
		assert.Equal(t, 90, m.Confidence)
	})

	t.Run("penalizes missing county", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Newark, NJ rent control", "Newark", "Essex")

		assert.Equal(t, 30+20-10, m.Score)
		assert.Contains(t, m.Issues, `County "Essex" not found`)
	})

	t.Run("penalizes missing name and state", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("a page about something else", "Newark", "")

		assert.False(t, m.IsMatch)
		assert.Equal(t, -80, m.Score)
		assert.Len(t, m.Issues, 2)
	})

	t.Run("resolves aliases before matching", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("Mount Laurel, New Jersey", "mt laurel", "")

		assert.True(t, m.IsMatch)
	})

	t.Run("confidence is clamped to 100", func(t *testing.T) {
		t.Parallel()

		m := opra.MatchMunicipality("City of Newark, Essex County, New Jersey", "Newark", "Essex")

		assert.LessOrEqual(t, m.Confidence, 100)
	})
}

func TestScoreURL(t *testing.T) {
	t.Parallel()

	t.Run("ecode360 page for the municipality scores highest", func(t *testing.T) {
		t.Parallel()

		got := opra.ScoreURL("https://ecode360.com/NJ/mount-laurel/chapter-5", "Mount Laurel")

		assert.Equal(t, 30+40+30+15, got)
	})

	t.Run("other state path is penalized", func(t *testing.T) {
		t.Parallel()

		got := opra.ScoreURL("https://library.municode.com/ny/newark/codes", "Newark")

		assert.Equal(t, 30+40-50, got)
	})

	t.Run("government pdf", func(t *testing.T) {
		t.Parallel()

		got := opra.ScoreURL("https://www.hobokennj.gov/docs/rent-leveling.pdf", "Hoboken")

		assert.Equal(t, 30+25+10, got)
	})

	t.Run("official nj.us site", func(t *testing.T) {
		t.Parallel()

		got := opra.ScoreURL("https://www.gov.example/clinton.nj.us/code", "Clinton")

		assert.Equal(t, 30+25+40, got)
	})

	t.Run("unrelated site scores zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, opra.ScoreURL("https://example.com/blog", "Newark"))
	})

	t.Run("code publisher outranks news site", func(t *testing.T) {
		t.Parallel()

		publisher := opra.ScoreURL("https://ecode360.com/12345", "Union")
		news := opra.ScoreURL("https://news.example.com/union-rent", "Union")

		assert.Greater(t, publisher, news)
	})
}

func TestIsLikelyOrdinanceURL(t *testing.T) {
	t.Parallel()

	assert.True(t, opra.IsLikelyOrdinanceURL("https://ecode360.com/NJ1234"))
	assert.True(t, opra.IsLikelyOrdinanceURL("https://codelibrary.codepublishing.com/NJ/Town"))
	assert.True(t, opra.IsLikelyOrdinanceURL("https://town.gov/chapter-12"))
	assert.True(t, opra.IsLikelyOrdinanceURL("https://example.org/files/rent-ordinance.pdf"))
	assert.False(t, opra.IsLikelyOrdinanceURL("https://town.gov/news"))
	assert.False(t, opra.IsLikelyOrdinanceURL("https://example.org/brochure.pdf"))
}

func TestNormalizeMunicipalityName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mount Laurel", opra.NormalizeMunicipalityName("Mt Laurel"))
	assert.Equal(t, "Summit", opra.NormalizeMunicipalityName(" summitt "))
	assert.Equal(t, "Jersey City", opra.NormalizeMunicipalityName("Jersey  City"))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mount-laurel", opra.Slugify("Mount  Laurel"))
}

func TestBuildSearchQueries(t *testing.T) {
	t.Parallel()

	t.Run("with county", func(t *testing.T) {
		t.Parallel()

		queries := opra.BuildSearchQueries("mt laurel", "Burlington")

		assert.Len(t, queries, 11)
		assert.Contains(t, queries[0], `"Mount Laurel"`)
		assert.Contains(t, queries[1], `"Burlington County"`)
		assert.True(t, strings.HasSuffix(queries[len(queries)-1], "filetype:pdf"))
		assert.True(t, containsPrefix(queries, "site:ecode360.com"))
	})

	t.Run("without county", func(t *testing.T) {
		t.Parallel()

		queries := opra.BuildSearchQueries("Newark", "")

		assert.Len(t, queries, 10)
		for _, q := range queries {
			assert.NotContains(t, q, "County")
		}
	})
}

func containsPrefix(ss []string, prefix string) bool {
	for _, s := range ss {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
