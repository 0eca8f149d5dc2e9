package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.CustodianService = (*CustodianService)(nil)

// CustodianService is a mock implementation of opra.CustodianService.
type CustodianService struct {
	CreateCustodianFn   func(ctx context.Context, c *opra.Custodian) error
	FindCustodianByIDFn func(ctx context.Context, id string) (*opra.Custodian, error)
	FindCustodiansFn    func(ctx context.Context, filter opra.CustodianFilter) ([]*opra.Custodian, error)
}

func (s *CustodianService) CreateCustodian(ctx context.Context, c *opra.Custodian) error {
	return s.CreateCustodianFn(ctx, c)
}

func (s *CustodianService) FindCustodianByID(ctx context.Context, id string) (*opra.Custodian, error) {
	return s.FindCustodianByIDFn(ctx, id)
}

func (s *CustodianService) FindCustodians(ctx context.Context, filter opra.CustodianFilter) ([]*opra.Custodian, error) {
	return s.FindCustodiansFn(ctx, filter)
}
