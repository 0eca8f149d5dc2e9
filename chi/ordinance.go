package chi

import (
	"net/http"

	"github.com/fwojciec/opra"
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerOrdinanceRoutes(r chi.Router) {
	r.Route("/ordinances", func(r chi.Router) {
		r.Post("/discover", s.handleOrdinanceDiscover)
		r.Get("/{id}", s.handleOrdinanceView)
		r.Post("/{id}/process", s.handleOrdinanceProcess)
		r.Post("/{id}/analyze", s.handleOrdinanceAnalyze)
	})
}

func (s *Server) handleOrdinanceDiscover(w http.ResponseWriter, r *http.Request) {
	var req opra.DiscoverRequest
	if err := s.decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	out, err := s.Discovery.DiscoverAndStore(r.Context(), req)
	if err != nil {
		var reasoning []string
		if out != nil && out.Result != nil {
			reasoning = out.Result.Reasoning
		}
		writeError(w, r, err, reasoning)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrdinanceView(w http.ResponseWriter, r *http.Request) {
	o, err := s.Ordinances.FindOrdinanceByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOrdinanceProcess(w http.ResponseWriter, r *http.Request) {
	res, err := s.Processor.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type analyzeResponse struct {
	RelevantCategories []string            `json:"relevantCategories"`
	Analysis           *opra.Analysis      `json:"analysis"`
	RecordsSummary     opra.RecordsSummary `json:"recordsSummary"`
}

func (s *Server) handleOrdinanceAnalyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.Analyzer.AnalyzeOrdinance(r.Context(), id)
	if err != nil {
		Error(w, r, err)
		return
	}
	summary, err := s.Analyzer.GenerateRecordsSummary(r.Context(), id, res.RelevantCategories)
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &analyzeResponse{
		RelevantCategories: res.RelevantCategories,
		Analysis:           res.Analysis,
		RecordsSummary:     summary,
	})
}
