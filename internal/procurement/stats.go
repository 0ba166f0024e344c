package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
)

// POStats are the cards above the purchase orders grid.
type POStats struct {
	Total      int
	Draft      int
	Ordered    int
	Received   int
	Canceled   int
	TotalValue string
	Average    string
}

// SummarizePOs walks the unfiltered purchase orders once.
func SummarizePOs(orders []PurchaseOrder) POStats {
	s := listview.Summarize(orders, func(po PurchaseOrder) decimal.Decimal { return po.Amount() })
	return POStats{
		Total:      s.Total,
		Draft:      s.Count(POStatusDraft),
		Ordered:    s.Count(POStatusOrdered),
		Received:   s.Count(POStatusReceived),
		Canceled:   s.Count(POStatusCanceled),
		TotalValue: pricing.FormatCurrency(s.Sum),
		Average:    pricing.FormatCurrency(s.Average),
	}
}

// InvoiceStats are the cards above the invoices grid.
type InvoiceStats struct {
	Total       int
	Paid        int
	Unpaid      int
	Overdue     int
	Outstanding string
}

// SummarizeInvoices buckets invoices at now. Outstanding is the sum of every
// invoice that is not paid.
func SummarizeInvoices(invoices []SupplierInvoice, now time.Time) InvoiceStats {
	stats := InvoiceStats{Total: len(invoices)}
	outstanding := decimal.Zero
	for _, inv := range invoices {
		switch inv.StatusAt(now) {
		case InvoicePaid:
			stats.Paid++
			continue
		case InvoiceOverdue:
			stats.Overdue++
		default:
			stats.Unpaid++
		}
		outstanding = outstanding.Add(inv.Amount)
	}
	stats.Outstanding = pricing.FormatCurrency(outstanding)
	return stats
}
