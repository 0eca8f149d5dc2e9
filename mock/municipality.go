package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.MunicipalityService = (*MunicipalityService)(nil)

// MunicipalityService is a mock implementation of opra.MunicipalityService.
type MunicipalityService struct {
	CreateMunicipalityFn   func(ctx context.Context, m *opra.Municipality) error
	FindMunicipalityByIDFn func(ctx context.Context, id string) (*opra.Municipality, error)
	FindMunicipalitiesFn   func(ctx context.Context, filter opra.MunicipalityFilter) ([]*opra.MunicipalitySummary, error)
	ResetMunicipalityFn    func(ctx context.Context, id string) (*opra.ResetResult, error)
}

func (s *MunicipalityService) CreateMunicipality(ctx context.Context, m *opra.Municipality) error {
	return s.CreateMunicipalityFn(ctx, m)
}

func (s *MunicipalityService) FindMunicipalityByID(ctx context.Context, id string) (*opra.Municipality, error) {
	return s.FindMunicipalityByIDFn(ctx, id)
}

func (s *MunicipalityService) FindMunicipalities(ctx context.Context, filter opra.MunicipalityFilter) ([]*opra.MunicipalitySummary, error) {
	return s.FindMunicipalitiesFn(ctx, filter)
}

func (s *MunicipalityService) ResetMunicipality(ctx context.Context, id string) (*opra.ResetResult, error) {
	return s.ResetMunicipalityFn(ctx, id)
}
