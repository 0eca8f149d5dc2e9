package discover

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/opra"
)

var _ opra.DiscoveryService = (*Service)(nil)

// Service discovers an ordinance and stores it with its municipality and
// records custodian.
type Service struct {
	Discoverer     opra.Discoverer
	Municipalities opra.MunicipalityService
	Ordinances     opra.OrdinanceService
	Custodians     opra.CustodianService
	Finder         opra.CustodianFinder // optional
	Logger         *slog.Logger
}

// DiscoverAndStore implements opra.DiscoveryService.
func (s *Service) DiscoverAndStore(ctx context.Context, req opra.DiscoverRequest) (out *opra.DiscoveryOutcome, err error) {
	logger := loggerOrDiscard(s.Logger)
	begin := time.Now()
	defer func() {
		logger.Info("discover and store",
			"municipality", req.MunicipalityName,
			"county", req.County,
			"duration", time.Since(begin),
			"err", err,
		)
	}()

	m, err := s.resolveMunicipality(ctx, req)
	if err != nil {
		return nil, err
	}
	out = &opra.DiscoveryOutcome{Municipality: m}

	res, err := s.Discoverer.Discover(ctx, m.Name, m.County)
	out.Result = res
	if err != nil {
		return out, err
	}

	o, err := s.storeOrdinance(ctx, m, res)
	if err != nil {
		return out, err
	}
	out.Ordinance = o
	out.Custodian = s.custodian(ctx, m)

	return out, nil
}

// resolveMunicipality loads the municipality by ID or name, creating it
// when unknown. Stored values win over request values.
func (s *Service) resolveMunicipality(ctx context.Context, req opra.DiscoverRequest) (*opra.Municipality, error) {
	if req.MunicipalityID != "" {
		return s.Municipalities.FindMunicipalityByID(ctx, req.MunicipalityID)
	}

	name := strings.TrimSpace(req.MunicipalityName)
	if name == "" {
		return nil, opra.Errorf(opra.EINVALID, "municipality name required")
	}

	found, err := s.Municipalities.FindMunicipalities(ctx, opra.MunicipalityFilter{Name: &name, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		m := found[0].Municipality
		return &m, nil
	}

	m := &opra.Municipality{Name: name, County: strings.TrimSpace(req.County), State: opra.DefaultState}
	if err := s.Municipalities.CreateMunicipality(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// storeOrdinance persists the discovered text unless the municipality
// already has an ordinance with identical text.
func (s *Service) storeOrdinance(ctx context.Context, m *opra.Municipality, res *opra.DiscoveryResult) (*opra.Ordinance, error) {
	existing, err := s.Ordinances.FindOrdinances(ctx, opra.OrdinanceFilter{MunicipalityID: &m.ID})
	if err != nil {
		return nil, err
	}
	for _, o := range existing {
		if o.FullText == res.Content {
			return o, nil
		}
	}

	o := &opra.Ordinance{
		MunicipalityID: m.ID,
		Title:          ordinanceTitle(res.Title, res.Content, m.Name),
		Code:           ordinanceCode(res.Content),
		FullText:       res.Content,
		SourceURL:      res.URL,
		Confidence:     res.Confidence,
	}
	if err := s.Ordinances.CreateOrdinance(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// custodian returns the active custodian, scraping one when none is
// stored. Failures are logged and yield nil.
func (s *Service) custodian(ctx context.Context, m *opra.Municipality) *opra.Custodian {
	logger := loggerOrDiscard(s.Logger)
	active := true

	cs, err := s.Custodians.FindCustodians(ctx, opra.CustodianFilter{MunicipalityID: &m.ID, Active: &active, Limit: 1})
	if err != nil {
		logger.Warn("find custodian failed", "municipality", m.Name, "err", err)
		return nil
	}
	if len(cs) > 0 {
		return cs[0]
	}
	if s.Finder == nil {
		return nil
	}

	c, err := s.Finder.FindCustodian(ctx, m)
	if err != nil {
		logger.Warn("custodian lookup failed", "municipality", m.Name, "err", err)
		return nil
	}
	if c == nil {
		return nil
	}
	c.MunicipalityID = m.ID
	if err := s.Custodians.CreateCustodian(ctx, c); err != nil {
		logger.Warn("store custodian failed", "municipality", m.Name, "err", err)
		return nil
	}
	return c
}
