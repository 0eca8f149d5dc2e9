package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/opra"
	main "github.com/fwojciec/opra/cmd/opra"
	"github.com/fwojciec/opra/mock"
	"github.com/fwojciec/opra/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCmd_Run(t *testing.T) {
	t.Parallel()

	taxonomy, err := yaml.DefaultTaxonomy()
	require.NoError(t, err)
	first := taxonomy.Categories()[0]

	newAnalyzer := func(summaryCalls *int) *mock.OrdinanceAnalyzer {
		return &mock.OrdinanceAnalyzer{
			AnalyzeOrdinanceFn: func(_ context.Context, id string) (*opra.AnalysisResult, error) {
				return &opra.AnalysisResult{
					OrdinanceID:        id,
					RelevantCategories: []string{first.ID},
					Analysis: &opra.Analysis{
						TotalSections:       9,
						HasRentControlBoard: true,
						FailedSections:      []string{"155-4"},
					},
				}, nil
			},
			GenerateRecordsSummaryFn: func(_ context.Context, _ string, ids []string) (opra.RecordsSummary, error) {
				*summaryCalls++
				return opra.RecordsSummary{ids[0]: {"Board meeting minutes"}}, nil
			},
		}
	}

	t.Run("prints flags, categories and records", func(t *testing.T) {
		t.Parallel()

		calls := 0
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Taxonomy: taxonomy,
			Analyzer: newAnalyzer(&calls),
		}

		err := (&main.AnalyzeCmd{OrdinanceID: "ord-1", Records: true}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Analyzed 9 sections")
		assert.Contains(t, out, "Rent control board:    yes")
		assert.Contains(t, out, "Complaint process:     no")
		assert.Contains(t, out, "Unclassified sections: 155-4")
		assert.Contains(t, out, first.Name)
		assert.Contains(t, out, "- Board meeting minutes")
		assert.Equal(t, 1, calls)
	})

	t.Run("skips records when disabled", func(t *testing.T) {
		t.Parallel()

		calls := 0
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
			Taxonomy: taxonomy,
			Analyzer: newAnalyzer(&calls),
		}

		err := (&main.AnalyzeCmd{OrdinanceID: "ord-1"}).Run(deps)

		require.NoError(t, err)
		assert.Zero(t, calls)
	})

	t.Run("unprocessed ordinance", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Analyzer: &mock.OrdinanceAnalyzer{
				AnalyzeOrdinanceFn: func(_ context.Context, _ string) (*opra.AnalysisResult, error) {
					return nil, opra.Errorf(opra.ECONFLICT, "ordinance must be processed before analysis")
				},
			},
		}

		err := (&main.AnalyzeCmd{OrdinanceID: "ord-1"}).Run(deps)

		assert.Equal(t, opra.ECONFLICT, opra.ErrorCode(err))
		assert.Contains(t, stderr.String(), "processed before analysis")
	})
}
