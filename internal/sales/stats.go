package sales

import (
	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
)

// OrderStats are the cards above the orders grid.
type OrderStats struct {
	Total     int
	Confirmed int
	Pending   int
	Canceled  int
	Unchecked int
	Revenue   string
	Average   string
}

// SummarizeOrders walks the unfiltered orders once.
func SummarizeOrders(orders []Order) OrderStats {
	s := listview.Summarize(orders, func(o Order) decimal.Decimal { return o.Total })
	return OrderStats{
		Total:     s.Total,
		Confirmed: s.Count(OrderConfirmed),
		Pending:   s.Count(OrderPending),
		Canceled:  s.Count(OrderCanceled),
		Unchecked: s.Count(OrderUnchecked),
		Revenue:   pricing.FormatCurrency(s.Sum),
		Average:   pricing.FormatCurrency(s.Average),
	}
}

// CustomerStats are the cards above the customers grid.
type CustomerStats struct {
	Total        int
	WithOrders   int
	TotalSpent   string
	AverageSpent string
}

// SummarizeCustomers walks the customers once.
func SummarizeCustomers(customers []Customer) CustomerStats {
	s := listview.Summarize(customers, func(c Customer) decimal.Decimal { return c.TotalSpent })
	return CustomerStats{
		Total:        s.Total,
		WithOrders:   s.Count(CustomerWithOrders),
		TotalSpent:   pricing.FormatCurrency(s.Sum),
		AverageSpent: pricing.FormatCurrency(s.Average),
	}
}
