// Package dashboard aggregates the landing page cards and charts.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
)

// Sources are the list endpoints the dashboard reads.
type Sources struct {
	Products  func(context.Context) ([]catalog.Product, error)
	Customers func(context.Context) ([]sales.Customer, error)
	Orders    func(context.Context) ([]sales.Order, error)
	POs       func(context.Context) ([]procurement.PurchaseOrder, error)
}

// Snapshot is one dashboard load. A failed source leaves its records nil and
// sets its error; the other sources are unaffected.
type Snapshot struct {
	Products     []catalog.Product
	Customers    []sales.Customer
	Orders       []sales.Order
	POs          []procurement.PurchaseOrder
	ProductsErr  error
	CustomersErr error
	OrdersErr    error
	POsErr       error
	LoadedAt     time.Time
}

// Service fans out to the sources.
type Service struct {
	sources Sources
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs the dashboard service.
func NewService(sources Sources, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sources: sources, logger: logger, now: time.Now}
}

// Load runs the four fetches concurrently. Each failure is logged and kept on
// its own card, so one broken endpoint never blanks the page.
func (s *Service) Load(ctx context.Context) Snapshot {
	snap := Snapshot{LoadedAt: s.now()}
	var g errgroup.Group
	g.Go(func() error {
		snap.Products, snap.ProductsErr = fetch(ctx, s, "products", s.sources.Products)
		return nil
	})
	g.Go(func() error {
		snap.Customers, snap.CustomersErr = fetch(ctx, s, "customers", s.sources.Customers)
		return nil
	})
	g.Go(func() error {
		snap.Orders, snap.OrdersErr = fetch(ctx, s, "orders", s.sources.Orders)
		return nil
	})
	g.Go(func() error {
		snap.POs, snap.POsErr = fetch(ctx, s, "purchase orders", s.sources.POs)
		return nil
	})
	_ = g.Wait()
	return snap
}

func fetch[T any](ctx context.Context, s *Service, name string, load func(context.Context) ([]T, error)) ([]T, error) {
	if load == nil {
		return nil, nil
	}
	records, err := load(ctx)
	if err != nil {
		s.logger.Warn("dashboard source failed", slog.String("source", name), slog.Any("error", err))
		return nil, err
	}
	return records, nil
}
