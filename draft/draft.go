// Package draft composes records request letters, saves them as drafts and
// finalizes them into stored PDFs.
package draft

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.RequestDrafter = (*Service)(nil)

// Service implements opra.RequestDrafter.
type Service struct {
	Municipalities opra.MunicipalityService
	Ordinances     opra.OrdinanceService
	Custodians     opra.CustodianService
	Requests       opra.RequestService
	Analyzer       opra.OrdinanceAnalyzer
	Taxonomy       *opra.Taxonomy
	Renderer       opra.Renderer  // optional for Preview
	Blobs          opra.BlobStore // required by Finalize

	// Now returns the letter date. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Preview implements opra.RequestDrafter.
func (s *Service) Preview(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error) {
	out, err := s.compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.Renderer == nil {
		return out, nil
	}

	preview := &opra.Request{
		MunicipalityID: out.Municipality.ID,
		OrdinanceID:    req.OrdinanceID,
		Number:         opra.NewRequestNumber(s.now()),
		Status:         opra.RequestDraft,
		Categories:     out.Categories,
		Text:           out.Text,
		CreatedAt:      s.now(),
	}
	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, preview, out.Municipality); err != nil {
		return nil, err
	}
	out.PDF = buf.Bytes()
	return out, nil
}

// Generate implements opra.RequestDrafter.
func (s *Service) Generate(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error) {
	out, err := s.compose(ctx, req)
	if err != nil {
		return nil, err
	}

	r := &opra.Request{
		MunicipalityID: out.Municipality.ID,
		OrdinanceID:    req.OrdinanceID,
		Categories:     out.Categories,
		Sections:       out.Sections,
		Text:           out.Text,
	}
	if out.Custodian != nil {
		r.CustodianID = out.Custodian.ID
	}
	if err := s.Requests.CreateRequest(ctx, r); err != nil {
		return nil, err
	}
	s.logger().Info("request generated", "request", r.ID, "number", r.Number, "categories", len(r.Categories))

	out.Request = r
	return out, nil
}

// SaveDraft implements opra.RequestDrafter.
func (s *Service) SaveDraft(ctx context.Context, req opra.DraftRequest) (*opra.Request, error) {
	for i := range req.Sections {
		if err := req.Sections[i].Validate(); err != nil {
			return nil, err
		}
	}

	o, err := s.Ordinances.FindOrdinanceByID(ctx, req.OrdinanceID)
	if err != nil {
		return nil, err
	}
	if o.MunicipalityID != req.MunicipalityID {
		return nil, opra.Errorf(opra.EINVALID, "ordinance %s does not belong to municipality %s", o.ID, req.MunicipalityID)
	}

	text := req.RequestText
	if text == "" {
		text = opra.RenderSections(req.Sections)
	}

	r := &opra.Request{
		MunicipalityID: req.MunicipalityID,
		OrdinanceID:    req.OrdinanceID,
		CustodianID:    req.CustodianID,
		Categories:     req.SelectedCategories,
		Sections:       req.Sections,
		Text:           text,
	}
	if err := s.Requests.CreateRequest(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Finalize implements opra.RequestDrafter. A stored PDF is removed again
// when the request cannot be updated.
func (s *Service) Finalize(ctx context.Context, id string) (r *opra.Request, err error) {
	logger := s.logger()
	begin := time.Now()
	defer func() {
		logger.Info("finalize request", "request", id, "duration", time.Since(begin), "err", err)
	}()

	r, err = s.Requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != opra.RequestDraft {
		return nil, opra.Errorf(opra.ECONFLICT, "only draft requests can be finalized")
	}
	if s.Renderer == nil || s.Blobs == nil {
		return nil, opra.Errorf(opra.EUNAVAILABLE, "pdf storage is not configured")
	}

	m, err := s.Municipalities.FindMunicipalityByID(ctx, r.MunicipalityID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, r, m); err != nil {
		return nil, err
	}

	key := opra.RequestPDFKey(m, r.ID)
	url, err := s.Blobs.Store(ctx, key, buf.Bytes(), "application/pdf")
	if err != nil {
		return nil, err
	}

	ready := opra.RequestReady
	updated, err := s.Requests.UpdateRequest(ctx, r.ID, opra.RequestUpdate{Status: &ready, PDFURL: &url})
	if err != nil {
		if delErr := s.Blobs.Delete(ctx, key); delErr != nil {
			logger.Warn("remove orphaned pdf", "key", key, "err", delErr)
		}
		return nil, err
	}
	return updated, nil
}

// compose gathers the letter inputs and composes the text.
func (s *Service) compose(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error) {
	if req.OrdinanceID == "" {
		return nil, opra.Errorf(opra.EINVALID, "ordinance ID required")
	}

	o, err := s.Ordinances.FindOrdinanceByID(ctx, req.OrdinanceID)
	if err != nil {
		return nil, err
	}
	m, err := s.Municipalities.FindMunicipalityByID(ctx, o.MunicipalityID)
	if err != nil {
		return nil, err
	}
	c, err := s.activeCustodian(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	var analysis *opra.AnalysisResult
	categories := req.SelectedCategories
	if len(categories) == 0 || req.IncludeAllCategories || req.IncludeProvisions {
		analysis, err = s.Analyzer.AnalyzeOrdinance(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if len(categories) == 0 || req.IncludeAllCategories {
			categories = analysis.RelevantCategories
		}
	}

	summary, err := s.Analyzer.GenerateRecordsSummary(ctx, o.ID, categories)
	if err != nil {
		return nil, err
	}

	data := opra.RequestData{
		Date:               s.now(),
		Municipality:       m,
		Ordinance:          o,
		Custodian:          c,
		SelectedCategories: categories,
		RecordsSummary:     summary,
	}
	sections := opra.BuildSections(s.Taxonomy, data)
	text := opra.RenderSections(sections)
	if req.IncludeProvisions && analysis != nil && analysis.Analysis != nil {
		text = opra.ComposeCustomized(s.Taxonomy, data, uniqueProvisions(analysis.Analysis.KeyProvisions))
	}

	return &opra.ComposedRequest{
		Text:           text,
		Sections:       sections,
		Categories:     categories,
		RecordsSummary: summary,
		Municipality:   m,
		Custodian:      c,
	}, nil
}

// uniqueProvisions drops blank and repeated provisions, keeping order.
func uniqueProvisions(ps []string) []string {
	seen := make(map[string]bool, len(ps))
	var out []string
	for _, p := range ps {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func (s *Service) activeCustodian(ctx context.Context, municipalityID string) (*opra.Custodian, error) {
	active := true
	cs, err := s.Custodians.FindCustodians(ctx, opra.CustodianFilter{MunicipalityID: &municipalityID, Active: &active, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, nil
	}
	return cs[0], nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
