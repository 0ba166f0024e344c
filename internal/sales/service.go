package sales

import (
	"context"

	"github.com/dentaldesk/dentaldesk/internal/backend"
)

// API is the subset of backend.Client the sales pages need.
type API interface {
	Get(ctx context.Context, path string) (*backend.Envelope, error)
}

// Service wraps the order and customer endpoints.
type Service struct {
	api API
}

// NewService constructs the sales service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// ListOrders fetches every customer order.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	env, err := s.api.Get(ctx, "/customerorders")
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[Order](env)
}

// ListCustomers fetches every customer.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	env, err := s.api.Get(ctx, "/customers")
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[Customer](env)
}
