package chi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fwojciec/opra"
	oprachi "github.com/fwojciec/opra/chi"
	"github.com/fwojciec/opra/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_OrdinanceDiscover(t *testing.T) {
	t.Parallel()

	t.Run("stores the discovered ordinance", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Discovery = &mock.DiscoveryService{
			DiscoverAndStoreFn: func(ctx context.Context, req opra.DiscoverRequest) (*opra.DiscoveryOutcome, error) {
				assert.Equal(t, "Hoboken", req.MunicipalityName)
				assert.Equal(t, "Hudson", req.County)
				return &opra.DiscoveryOutcome{
					Municipality: &opra.Municipality{ID: "m1", Name: "Hoboken"},
					Ordinance:    &opra.Ordinance{ID: "o1", Title: "Rent Control"},
					Result:       &opra.DiscoveryResult{Success: true, Strategy: opra.StrategyFast},
				}, nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/discover", `{"municipalityName":"Hoboken","county":"Hudson"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var out opra.DiscoveryOutcome
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "o1", out.Ordinance.ID)
	})

	t.Run("not found includes reasoning", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Discovery = &mock.DiscoveryService{
			DiscoverAndStoreFn: func(ctx context.Context, req opra.DiscoverRequest) (*opra.DiscoveryOutcome, error) {
				return &opra.DiscoveryOutcome{
					Result: &opra.DiscoveryResult{Reasoning: []string{"[fast] no results", "[agent] no valid ordinance among 0 candidates"}},
				}, opra.Errorf(opra.ENOTFOUND, "no rent control ordinance found")
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/discover", `{"municipalityName":"Nowhere"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		out := decodeError(t, rec)
		assert.Equal(t, "no rent control ordinance found", out.Error)
		assert.Len(t, out.Reasoning, 2)
	})

	t.Run("validates before discovering", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{}`, `{"municipalityName":""}`, `not json`, `{"municipalityName":"x","extra":1}`} {
			s := oprachi.NewServer()
			s.Discovery = &mock.DiscoveryService{
				DiscoverAndStoreFn: func(ctx context.Context, req opra.DiscoverRequest) (*opra.DiscoveryOutcome, error) {
					t.Error("unexpected discovery")
					return nil, nil
				},
			}

			rec := do(t, s, http.MethodPost, "/api/ordinances/discover", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Discovery = &mock.DiscoveryService{}

		rec := do(t, s, http.MethodPost, "/api/ordinances/discover", `{"county":"Hudson"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Error, "municipalityName is required")
	})
}

func TestServer_OrdinanceProcess(t *testing.T) {
	t.Parallel()

	t.Run("returns the process result", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Processor = &mock.OrdinanceProcessor{
			ProcessFn: func(ctx context.Context, id string) (*opra.ProcessResult, error) {
				assert.Equal(t, "o1", id)
				return &opra.ProcessResult{OrdinanceID: id, ChunksCreated: 7}, nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/o1/process", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var out opra.ProcessResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, 7, out.ChunksCreated)
	})

	t.Run("in flight", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Processor = &mock.OrdinanceProcessor{
			ProcessFn: func(ctx context.Context, id string) (*opra.ProcessResult, error) {
				return nil, opra.Errorf(opra.ECONFLICT, "ordinance is already being processed")
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/o1/process", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("embedding provider down", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Processor = &mock.OrdinanceProcessor{
			ProcessFn: func(ctx context.Context, id string) (*opra.ProcessResult, error) {
				return nil, opra.Errorf(opra.EUNAVAILABLE, "embedding failed")
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/o1/process", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestServer_OrdinanceAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("returns categories with records summary", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Analyzer = &mock.OrdinanceAnalyzer{
			AnalyzeOrdinanceFn: func(ctx context.Context, id string) (*opra.AnalysisResult, error) {
				return &opra.AnalysisResult{
					OrdinanceID:        id,
					RelevantCategories: []string{"rent-increases"},
					Analysis:           &opra.Analysis{},
				}, nil
			},
			GenerateRecordsSummaryFn: func(ctx context.Context, id string, categoryIDs []string) (opra.RecordsSummary, error) {
				assert.Equal(t, []string{"rent-increases"}, categoryIDs)
				return opra.RecordsSummary{"rent-increases": {"Rent increase applications"}}, nil
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/o1/analyze", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			RelevantCategories []string            `json:"relevantCategories"`
			RecordsSummary     opra.RecordsSummary `json:"recordsSummary"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, []string{"rent-increases"}, out.RelevantCategories)
		assert.Equal(t, []string{"Rent increase applications"}, out.RecordsSummary["rent-increases"])
	})

	t.Run("unprocessed ordinance", func(t *testing.T) {
		t.Parallel()

		s := oprachi.NewServer()
		s.Analyzer = &mock.OrdinanceAnalyzer{
			AnalyzeOrdinanceFn: func(ctx context.Context, id string) (*opra.AnalysisResult, error) {
				return nil, opra.Errorf(opra.ECONFLICT, "ordinance must be processed before analysis")
			},
		}

		rec := do(t, s, http.MethodPost, "/api/ordinances/o1/analyze", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
