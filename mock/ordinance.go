package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.OrdinanceService = (*OrdinanceService)(nil)

// OrdinanceService is a mock implementation of opra.OrdinanceService.
type OrdinanceService struct {
	CreateOrdinanceFn   func(ctx context.Context, o *opra.Ordinance) error
	FindOrdinanceByIDFn func(ctx context.Context, id string) (*opra.Ordinance, error)
	FindOrdinancesFn    func(ctx context.Context, filter opra.OrdinanceFilter) ([]*opra.Ordinance, error)
	DeleteOrdinanceFn   func(ctx context.Context, id string) error
}

func (s *OrdinanceService) CreateOrdinance(ctx context.Context, o *opra.Ordinance) error {
	return s.CreateOrdinanceFn(ctx, o)
}

func (s *OrdinanceService) FindOrdinanceByID(ctx context.Context, id string) (*opra.Ordinance, error) {
	return s.FindOrdinanceByIDFn(ctx, id)
}

func (s *OrdinanceService) FindOrdinances(ctx context.Context, filter opra.OrdinanceFilter) ([]*opra.Ordinance, error) {
	return s.FindOrdinancesFn(ctx, filter)
}

func (s *OrdinanceService) DeleteOrdinance(ctx context.Context, id string) error {
	return s.DeleteOrdinanceFn(ctx, id)
}
