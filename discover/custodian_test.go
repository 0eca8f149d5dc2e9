package discover_test

import (
	"context"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/fwojciec/opra/discover"
	"github.com/fwojciec/opra/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCustodian(t *testing.T) {
	t.Parallel()

	t.Run("extracts name email and phone", func(t *testing.T) {
		t.Parallel()

		c := discover.ExtractCustodian("Office of the Clerk: James Farina, RMC. Email: clerk@hobokennj.gov Phone: (201) 420-2074")

		require.NotNil(t, c)
		assert.Equal(t, "James Farina", c.Name)
		assert.Equal(t, discover.CustodianTitle, c.Title)
		assert.Equal(t, "clerk@hobokennj.gov", c.Email)
		assert.Equal(t, "(201) 420-2074", c.Phone)
		assert.True(t, c.Active)
	})

	t.Run("falls back to a generic name", func(t *testing.T) {
		t.Parallel()

		c := discover.ExtractCustodian("Municipal Clerk Office, phone 201.420.2074")

		require.NotNil(t, c)
		assert.Equal(t, opra.DefaultCustodianName, c.Name)
		assert.Equal(t, "201.420.2074", c.Phone)
		assert.Empty(t, c.Email)
	})

	t.Run("returns nil without contact details", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, discover.ExtractCustodian("The Municipal Clerk is the records custodian."))
	})
}

func TestCustodianFinder_FindCustodian(t *testing.T) {
	t.Parallel()

	t.Run("searches for the clerk and extracts contact details", func(t *testing.T) {
		t.Parallel()

		f := &discover.CustodianFinder{
			Searcher: &mock.WebSearcher{
				SearchFn: func(_ context.Context, query string, opts opra.SearchQueryOptions) ([]opra.WebResult, error) {
					assert.Contains(t, query, "Hoboken New Jersey municipal clerk")
					assert.Equal(t, 3, opts.MaxResults)
					return []opra.WebResult{
						{Title: "City Clerk | Hoboken", Content: "Contact the clerk at clerk@hobokennj.gov"},
					}, nil
				},
			},
		}

		c, err := f.FindCustodian(context.Background(), &opra.Municipality{ID: "m1", Name: "Hoboken"})

		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "m1", c.MunicipalityID)
		assert.Equal(t, "clerk@hobokennj.gov", c.Email)
	})

	t.Run("returns nil when nothing is found", func(t *testing.T) {
		t.Parallel()

		f := &discover.CustodianFinder{Searcher: staticSearcher()}

		c, err := f.FindCustodian(context.Background(), &opra.Municipality{ID: "m1", Name: "Hoboken"})

		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("returns search errors", func(t *testing.T) {
		t.Parallel()

		f := &discover.CustodianFinder{
			Searcher: &mock.WebSearcher{
				SearchFn: func(_ context.Context, _ string, _ opra.SearchQueryOptions) ([]opra.WebResult, error) {
					return nil, opra.Errorf(opra.EUNAVAILABLE, "down")
				},
			},
		}

		_, err := f.FindCustodian(context.Background(), &opra.Municipality{Name: "Hoboken"})

		assert.Equal(t, opra.EUNAVAILABLE, opra.ErrorCode(err))
	})
}
