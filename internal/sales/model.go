// Package sales shows customer orders and customers.
package sales

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/backend"
)

// Order statuses used by the filter.
const (
	OrderConfirmed = "confirmed"
	OrderPending   = "pending"
	OrderCanceled  = "canceled"
	OrderUnchecked = "unchecked"
)

// OrderStatuses lists the filter selectors of the orders page.
var OrderStatuses = []string{"all", OrderConfirmed, OrderPending, OrderCanceled, OrderUnchecked}

// Order is a customer order.
type Order struct {
	ID            backend.ID      `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerID    backend.ID      `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Status        string          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     backend.Time    `json:"createdAt"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one ordered product.
type OrderItem struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// LineTotal is quantity × unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// StatusKey implements listview.Statused. Orders nobody has looked at yet
// arrive without a status and count as unchecked.
func (o Order) StatusKey() string {
	status := strings.ToLower(strings.TrimSpace(o.Status))
	switch status {
	case "":
		return OrderUnchecked
	case "cancelled":
		return OrderCanceled
	default:
		return status
	}
}

// RecordID implements listview.Identified.
func (o Order) RecordID() string { return o.ID.String() }

// Number is the display number, falling back to the id.
func (o Order) Number() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return "#" + o.ID.String()
}

// Customer is a shop customer.
type Customer struct {
	ID          backend.ID      `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	OrdersCount int             `json:"ordersCount"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	CreatedAt   backend.Time    `json:"createdAt"`
}

// Customer buckets.
const (
	CustomerWithOrders = "with-orders"
	CustomerNoOrders   = "no-orders"
)

// StatusKey implements listview.Statused.
func (c Customer) StatusKey() string {
	if c.OrdersCount > 0 {
		return CustomerWithOrders
	}
	return CustomerNoOrders
}

// RecordID implements listview.Identified.
func (c Customer) RecordID() string { return c.ID.String() }
