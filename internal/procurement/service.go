package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// API is the subset of backend.Client procurement needs.
type API interface {
	Get(ctx context.Context, path string) (*backend.Envelope, error)
	Post(ctx context.Context, path string, body any) (*backend.Envelope, error)
}

// Service wraps the supplier, purchase order and invoice endpoints.
type Service struct {
	api    API
	logger *slog.Logger
}

// NewService constructs procurement service.
func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger}
}

// ListSuppliers fetches every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	env, err := s.api.Get(ctx, "/suppliers")
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[Supplier](env)
}

// GetSupplier fetches one supplier.
func (s *Service) GetSupplier(ctx context.Context, id string) (Supplier, error) {
	env, err := s.api.Get(ctx, "/supplier/"+url.PathEscape(id))
	if err != nil {
		return Supplier{}, notFound(err, "supplier", id)
	}
	return backend.DecodeObject[Supplier](env)
}

// CreateSupplier posts a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, draft SupplierDraft) error {
	_, err := s.api.Post(ctx, "/createsupplier", draft)
	return err
}

// UpdateSupplier posts the edited supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id string, draft SupplierDraft) error {
	_, err := s.api.Post(ctx, "/updatesupplier/"+url.PathEscape(id), draft)
	return err
}

// ListPOs fetches every purchase order.
func (s *Service) ListPOs(ctx context.Context) ([]PurchaseOrder, error) {
	env, err := s.api.Get(ctx, "/supplierorders")
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[PurchaseOrder](env)
}

// GetPO fetches one purchase order with its items.
func (s *Service) GetPO(ctx context.Context, id string) (PurchaseOrder, error) {
	env, err := s.api.Get(ctx, "/supplierorder/"+url.PathEscape(id))
	if err != nil {
		return PurchaseOrder{}, notFound(err, "purchase order", id)
	}
	return backend.DecodeObject[PurchaseOrder](env)
}

// UpdatePO posts the edited purchase order.
func (s *Service) UpdatePO(ctx context.Context, id string, draft PODraft) error {
	_, err := s.api.Post(ctx, "/updatesupplierorder/"+url.PathEscape(id), draft.payload())
	return err
}

// ListInvoices fetches the supplier invoices and fills in supplier names.
// Name lookup is best effort: when the supplier list cannot be loaded the
// invoices keep a "Supplier #<id>" placeholder.
func (s *Service) ListInvoices(ctx context.Context) ([]SupplierInvoice, error) {
	env, err := s.api.Get(ctx, "/supplierinvoices")
	if err != nil {
		return nil, err
	}
	invoices, err := backend.DecodeList[SupplierInvoice](env)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if needsNames(invoices) {
		suppliers, err := s.ListSuppliers(ctx)
		if err != nil {
			s.logger.Warn("resolve invoice suppliers", slog.Any("error", err))
		}
		for _, sup := range suppliers {
			names[sup.ID.String()] = sup.Name
		}
	}
	for i, inv := range invoices {
		if inv.SupplierName != "" {
			continue
		}
		if name, ok := names[inv.SupplierID.String()]; ok && name != "" {
			invoices[i].SupplierName = name
			continue
		}
		invoices[i].SupplierName = SupplierLabel(inv.SupplierID)
	}
	return invoices, nil
}

// DeleteInvoice removes a supplier invoice.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	_, err := s.api.Post(ctx, "/deletesupplierinvoice/"+url.PathEscape(id), nil)
	return err
}

func needsNames(invoices []SupplierInvoice) bool {
	for _, inv := range invoices {
		if inv.SupplierName == "" {
			return true
		}
	}
	return false
}

func notFound(err error, what, id string) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return fmt.Errorf("%s %s: %w", what, id, shared.ErrNotFound)
	}
	return err
}
