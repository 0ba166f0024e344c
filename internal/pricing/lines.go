package pricing

import "github.com/shopspring/decimal"

// Line is one order item with its derived amounts. Key identifies the line
// inside one form and never reaches the backend; ID is the backend id, zero for
// lines added locally.
type Line struct {
	Key       int64           `json:"key"`
	ID        int64           `json:"id,omitempty"`
	ProductID string          `json:"productId,omitempty"`
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	SubTotal  decimal.Decimal `json:"subTotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
}

// Recompute refreshes SubTotal and TaxAmount from the three inputs.
func (l Line) Recompute() Line {
	l.SubTotal = l.Quantity.Mul(l.UnitPrice)
	l.TaxAmount = l.SubTotal.Mul(l.TaxRate).Div(hundred)
	return l
}

// OrderTotals sums a set of lines.
type OrderTotals struct {
	SubTotal decimal.Decimal `json:"subTotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Totals is the sum of line subtotals plus the sum of line tax amounts.
func Totals(lines []Line) OrderTotals {
	var t OrderTotals
	for _, line := range lines {
		t.SubTotal = t.SubTotal.Add(line.SubTotal)
		t.Tax = t.Tax.Add(line.TaxAmount)
	}
	t.Total = t.SubTotal.Add(t.Tax)
	return t
}
