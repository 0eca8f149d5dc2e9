package chi

import (
	"net/http"

	"github.com/fwojciec/opra"
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRequestRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", s.handleRequestIndex)
		r.Post("/preview", s.handleRequestPreview)
		r.Post("/generate", s.handleRequestGenerate)
		r.Post("/draft", s.handleRequestDraft)
		r.Get("/{id}", s.handleRequestView)
		r.Patch("/{id}", s.handleRequestUpdate)
		r.Delete("/{id}", s.handleRequestDelete)
		r.Post("/{id}/finalize", s.handleRequestFinalize)
		r.Post("/{id}/status", s.handleRequestStatus)
	})
}

func (s *Server) handleRequestIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter opra.RequestFilter
	if v := q.Get("municipalityId"); v != "" {
		filter.MunicipalityID = &v
	}
	if v := q.Get("ordinanceId"); v != "" {
		filter.OrdinanceID = &v
	}
	if v := q.Get("status"); v != "" {
		status := opra.RequestStatus(v)
		if !status.Valid() {
			Error(w, r, opra.Errorf(opra.EINVALID, "invalid request status %q", v))
			return
		}
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		Error(w, r, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		Error(w, r, err)
		return
	}

	rs, err := s.Requests.FindRequests(r.Context(), filter)
	if err != nil {
		Error(w, r, err)
		return
	}
	if rs == nil {
		rs = []*opra.Request{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": rs})
}

func (s *Server) handleRequestPreview(w http.ResponseWriter, r *http.Request) {
	var req opra.ComposeRequest
	if err := s.decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	out, err := s.Drafter.Preview(r.Context(), req)
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRequestGenerate(w http.ResponseWriter, r *http.Request) {
	var req opra.ComposeRequest
	if err := s.decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	out, err := s.Drafter.Generate(r.Context(), req)
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleRequestDraft(w http.ResponseWriter, r *http.Request) {
	var req opra.DraftRequest
	if err := s.decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	out, err := s.Drafter.SaveDraft(r.Context(), req)
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleRequestView(w http.ResponseWriter, r *http.Request) {
	req, err := s.Requests.FindRequestByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// requestPatch is the editable subset of a request. Status moves through
// the dedicated status route.
type requestPatch struct {
	Categories *[]string              `json:"categories"`
	Sections   *[]opra.RequestSection `json:"sections"`
	Text       *string                `json:"requestText"`
}

func (s *Server) handleRequestUpdate(w http.ResponseWriter, r *http.Request) {
	var patch requestPatch
	if err := s.decode(r, &patch); err != nil {
		Error(w, r, err)
		return
	}
	req, err := s.Requests.UpdateRequest(r.Context(), chi.URLParam(r, "id"), opra.RequestUpdate{
		Categories: patch.Categories,
		Sections:   patch.Sections,
		Text:       patch.Text,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Requests.DeleteRequest(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestFinalize(w http.ResponseWriter, r *http.Request) {
	req, err := s.Drafter.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type statusPayload struct {
	Status opra.RequestStatus `json:"status" validate:"required,oneof=DRAFT READY SUBMITTED ACKNOWLEDGED FULFILLED DENIED APPEALED"`
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusPayload
	if err := s.decode(r, &payload); err != nil {
		Error(w, r, err)
		return
	}
	req, err := s.Requests.UpdateRequest(r.Context(), chi.URLParam(r, "id"), opra.RequestUpdate{
		Status: &payload.Status,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
