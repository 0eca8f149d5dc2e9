package mock

import (
	"context"

	"github.com/fwojciec/opra"
)

var _ opra.RequestService = (*RequestService)(nil)

// RequestService is a mock implementation of opra.RequestService.
type RequestService struct {
	CreateRequestFn   func(ctx context.Context, r *opra.Request) error
	FindRequestByIDFn func(ctx context.Context, id string) (*opra.Request, error)
	FindRequestsFn    func(ctx context.Context, filter opra.RequestFilter) ([]*opra.Request, error)
	UpdateRequestFn   func(ctx context.Context, id string, upd opra.RequestUpdate) (*opra.Request, error)
	DeleteRequestFn   func(ctx context.Context, id string) error
}

func (s *RequestService) CreateRequest(ctx context.Context, r *opra.Request) error {
	return s.CreateRequestFn(ctx, r)
}

func (s *RequestService) FindRequestByID(ctx context.Context, id string) (*opra.Request, error) {
	return s.FindRequestByIDFn(ctx, id)
}

func (s *RequestService) FindRequests(ctx context.Context, filter opra.RequestFilter) ([]*opra.Request, error) {
	return s.FindRequestsFn(ctx, filter)
}

func (s *RequestService) UpdateRequest(ctx context.Context, id string, upd opra.RequestUpdate) (*opra.Request, error) {
	return s.UpdateRequestFn(ctx, id, upd)
}

func (s *RequestService) DeleteRequest(ctx context.Context, id string) error {
	return s.DeleteRequestFn(ctx, id)
}

var _ opra.RequestDrafter = (*RequestDrafter)(nil)

// RequestDrafter is a mock implementation of opra.RequestDrafter.
type RequestDrafter struct {
	PreviewFn   func(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error)
	GenerateFn  func(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error)
	SaveDraftFn func(ctx context.Context, req opra.DraftRequest) (*opra.Request, error)
	FinalizeFn  func(ctx context.Context, id string) (*opra.Request, error)
}

func (d *RequestDrafter) Preview(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error) {
	return d.PreviewFn(ctx, req)
}

func (d *RequestDrafter) Generate(ctx context.Context, req opra.ComposeRequest) (*opra.ComposedRequest, error) {
	return d.GenerateFn(ctx, req)
}

func (d *RequestDrafter) SaveDraft(ctx context.Context, req opra.DraftRequest) (*opra.Request, error) {
	return d.SaveDraftFn(ctx, req)
}

func (d *RequestDrafter) Finalize(ctx context.Context, id string) (*opra.Request, error) {
	return d.FinalizeFn(ctx, id)
}
