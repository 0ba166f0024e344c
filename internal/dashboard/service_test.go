package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
)

func at(year int, month time.Month, day int) backend.Time {
	return backend.Time{Time: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

func TestLoadIsolatesFailures(t *testing.T) {
	var calls atomic.Int32
	svc := NewService(Sources{
		Products: func(context.Context) ([]catalog.Product, error) {
			calls.Add(1)
			return []catalog.Product{{ID: "1"}}, nil
		},
		Customers: func(context.Context) ([]sales.Customer, error) {
			calls.Add(1)
			return nil, errors.New("customers down")
		},
		Orders: func(context.Context) ([]sales.Order, error) {
			calls.Add(1)
			return []sales.Order{{ID: "7"}}, nil
		},
		POs: func(context.Context) ([]procurement.PurchaseOrder, error) {
			calls.Add(1)
			return nil, nil
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	fixed := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	snap := svc.Load(context.Background())
	require.EqualValues(t, 4, calls.Load())
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Orders, 1)
	assert.Nil(t, snap.Customers)
	assert.EqualError(t, snap.CustomersErr, "customers down")
	assert.NoError(t, snap.ProductsErr)
	assert.NoError(t, snap.POsErr)
	assert.Equal(t, fixed, snap.LoadedAt)
}

func TestLoadSkipsMissingSources(t *testing.T) {
	snap := NewService(Sources{}, nil).Load(context.Background())
	assert.Nil(t, snap.Products)
	assert.NoError(t, snap.OrdersErr)
}

func TestRevenueByMonth(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	orders := []sales.Order{
		{Status: "confirmed", Total: decimal.NewFromInt(100), CreatedAt: at(2026, 3, 1)},
		{Status: "pending", Total: decimal.NewFromInt(50), CreatedAt: at(2026, 3, 2)},
		{Status: "cancelled", Total: decimal.NewFromInt(999), CreatedAt: at(2026, 3, 3)},
		{Status: "confirmed", Total: decimal.NewFromInt(30), CreatedAt: at(2026, 1, 20)},
		{Status: "confirmed", Total: decimal.NewFromInt(70), CreatedAt: at(2025, 6, 1)},
		{Status: "confirmed", Total: decimal.NewFromInt(5)},
	}
	s := RevenueByMonth(orders, now, 3)
	assert.Equal(t, []string{"2026-01", "2026-02", "2026-03"}, s.Labels)
	assert.Equal(t, []float64{30, 0, 150}, s.Values)
}

func TestPurchasesByMonthUsesLineTotals(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pos := []procurement.PurchaseOrder{
		{Status: "ordered", OrderDate: at(2026, 2, 1), TotalAmount: decimal.NewFromInt(200)},
		{Status: "received", OrderDate: at(2026, 1, 1), Items: []procurement.POItem{
			{ProductName: "Burs", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10)},
		}},
		{Status: "canceled", OrderDate: at(2026, 2, 1), TotalAmount: decimal.NewFromInt(1000)},
	}
	s := PurchasesByMonth(pos, now, 2)
	assert.Equal(t, []string{"2026-01", "2026-02"}, s.Labels)
	assert.Equal(t, []float64{20, 200}, s.Values)
}

func TestOrdersByStatus(t *testing.T) {
	orders := []sales.Order{{Status: "confirmed"}, {Status: "confirmed"}, {Status: ""}, {Status: "pending"}}
	slices := OrdersByStatus(orders, func(key string) string { return "<" + key + ">" })
	require.Len(t, slices, 4)
	assert.Equal(t, "<confirmed>", slices[0].Label)
	assert.Equal(t, 2.0, slices[0].Value)
	assert.Equal(t, 1.0, slices[1].Value)
	assert.Equal(t, 0.0, slices[2].Value)
	assert.Equal(t, 1.0, slices[3].Value)
}
