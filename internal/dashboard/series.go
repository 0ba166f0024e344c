package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/charts/svg"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
)

// Series is a chart-ready monthly series.
type Series struct {
	Labels []string
	Values []float64
}

// months returns the first day of the n months ending with now's month.
func months(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, i-n+1, 0)
	}
	return out
}

func monthly(now time.Time, n int, add func(bucket func(time.Time, decimal.Decimal))) Series {
	window := months(now, n)
	sums := make(map[string]decimal.Decimal, n)
	add(func(at time.Time, amount decimal.Decimal) {
		if at.IsZero() {
			return
		}
		key := at.In(now.Location()).Format("2006-01")
		sums[key] = sums[key].Add(amount)
	})
	s := Series{Labels: make([]string, n), Values: make([]float64, n)}
	for i, m := range window {
		key := m.Format("2006-01")
		s.Labels[i] = key
		s.Values[i] = sums[key].InexactFloat64()
	}
	return s
}

// RevenueByMonth sums non-canceled order totals per month.
func RevenueByMonth(orders []sales.Order, now time.Time, n int) Series {
	return monthly(now, n, func(bucket func(time.Time, decimal.Decimal)) {
		for _, o := range orders {
			if o.StatusKey() == sales.OrderCanceled {
				continue
			}
			bucket(o.CreatedAt.Time, o.Total)
		}
	})
}

// PurchasesByMonth sums non-canceled purchase order amounts per month.
func PurchasesByMonth(pos []procurement.PurchaseOrder, now time.Time, n int) Series {
	return monthly(now, n, func(bucket func(time.Time, decimal.Decimal)) {
		for _, po := range pos {
			if po.StatusKey() == procurement.POStatusCanceled {
				continue
			}
			bucket(po.OrderDate.Time, po.Amount())
		}
	})
}

var statusColors = map[string]string{
	sales.OrderConfirmed: "#0d9488",
	sales.OrderPending:   "#f59e0b",
	sales.OrderCanceled:  "#ef4444",
	sales.OrderUnchecked: "#64748b",
}

// OrdersByStatus counts orders per status bucket in filter order. label
// translates a status key.
func OrdersByStatus(orders []sales.Order, label func(string) string) []svg.Slice {
	counts := map[string]int{}
	for _, o := range orders {
		counts[o.StatusKey()]++
	}
	slices := make([]svg.Slice, 0, len(sales.OrderStatuses))
	for _, status := range sales.OrderStatuses[1:] {
		slices = append(slices, svg.Slice{Label: label(status), Value: float64(counts[status]), Color: statusColors[status]})
	}
	return slices
}
