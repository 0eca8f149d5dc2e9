package chi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fwojciec/opra"
	"github.com/go-chi/chi/v5"
)

// DefaultMunicipalityLimit caps list responses when no limit is given.
const DefaultMunicipalityLimit = 100

func (s *Server) registerMunicipalityRoutes(r chi.Router) {
	r.Route("/municipalities", func(r chi.Router) {
		r.Get("/", s.handleMunicipalityIndex)
		r.Get("/{id}", s.handleMunicipalityView)
		r.Delete("/{id}/reset", s.handleMunicipalityReset)
	})
}

type municipalityQuery struct {
	Search string `json:"search" validate:"max=200"`
	County string `json:"county" validate:"max=100"`
	Status string `json:"status" validate:"omitempty,oneof=has_ordinance no_ordinance not_scraped"`
	Sort   string `json:"sort" validate:"omitempty,oneof=name county updated_at"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}

func (s *Server) handleMunicipalityIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := municipalityQuery{
		Search: strings.TrimSpace(q.Get("search")),
		County: strings.TrimSpace(q.Get("county")),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
		Order:  strings.ToLower(q.Get("order")),
	}
	var err error
	if params.Limit, err = intParam(q.Get("limit")); err != nil {
		Error(w, r, err)
		return
	}
	if params.Offset, err = intParam(q.Get("offset")); err != nil {
		Error(w, r, err)
		return
	}
	if err := s.check(&params); err != nil {
		Error(w, r, err)
		return
	}

	filter := opra.MunicipalityFilter{
		SortBy:    opra.SortByName,
		Ascending: params.Order != "desc",
		Offset:    params.Offset,
		Limit:     params.Limit,
	}
	if params.Search != "" {
		filter.Search = &params.Search
	}
	if params.County != "" {
		filter.County = &params.County
	}
	if params.Status != "" {
		status := opra.OrdinanceStatus(params.Status)
		filter.Status = &status
	}
	if params.Sort != "" {
		filter.SortBy = opra.MunicipalitySort(params.Sort)
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultMunicipalityLimit
	}

	ms, err := s.Municipalities.FindMunicipalities(r.Context(), filter)
	if err != nil {
		Error(w, r, err)
		return
	}
	if ms == nil {
		ms = []*opra.MunicipalitySummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"municipalities": ms})
}

func (s *Server) handleMunicipalityView(w http.ResponseWriter, r *http.Request) {
	m, err := s.Municipalities.FindMunicipalityByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMunicipalityReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.Municipalities.ResetMunicipality(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, opra.Errorf(opra.EINVALID, "invalid integer %q", v)
	}
	return n, nil
}
