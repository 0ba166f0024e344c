// Package pricing computes the derived, display-only money values shown on
// product and purchase order forms. The backend owns authoritative totals.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the pricing panel of a product form.
type Breakdown struct {
	DiscountedPrice string `json:"discountedPrice"`
	SavingsAmount   string `json:"savingsAmount"`
	EffectivePrice  string `json:"effectivePrice"`
	TaxAmount       string `json:"taxAmount"`
	FinalPrice      string `json:"finalPrice"`
}

// Input carries the raw pricing fields of a product.
type Input struct {
	Price           decimal.NullDecimal
	DiscountPercent decimal.Decimal
	DiscountPrice   decimal.NullDecimal
	TaxRatePercent  decimal.Decimal
}

// Compute fills every derived field. Tax figures are blank without a price.
func Compute(in Input) Breakdown {
	b := Breakdown{
		DiscountedPrice: DiscountedPrice(in.Price, in.DiscountPercent),
		SavingsAmount:   SavingsAmount(in.Price, in.DiscountPercent),
	}
	if !in.Price.Valid {
		return b
	}
	effective := EffectivePrice(in.Price.Decimal, in.DiscountPrice)
	b.EffectivePrice = FormatCurrency(effective)
	b.TaxAmount = FormatCurrency(TaxAmount(effective, in.TaxRatePercent))
	b.FinalPrice = FormatCurrency(FinalPrice(effective, in.TaxRatePercent))
	return b
}

// DiscountedPrice is price × (1 − pct/100). Blank when price is absent or the
// discount is zero, so "not discounted" differs from "discounted to zero".
func DiscountedPrice(price decimal.NullDecimal, discountPercent decimal.Decimal) string {
	if !price.Valid || discountPercent.IsZero() {
		return ""
	}
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return FormatCurrency(price.Decimal.Mul(factor))
}

// SavingsAmount is price × pct/100 with the same blank rule as DiscountedPrice.
func SavingsAmount(price decimal.NullDecimal, discountPercent decimal.Decimal) string {
	if !price.Valid || discountPercent.IsZero() {
		return ""
	}
	return FormatCurrency(price.Decimal.Mul(discountPercent).Div(hundred))
}

// EffectivePrice is the flat discount price when it is set and below price.
func EffectivePrice(price decimal.Decimal, discountPrice decimal.NullDecimal) decimal.Decimal {
	if discountPrice.Valid && discountPrice.Decimal.LessThan(price) {
		return discountPrice.Decimal
	}
	return price
}

// TaxAmount is effective × rate/100.
func TaxAmount(effective, taxRatePercent decimal.Decimal) decimal.Decimal {
	return effective.Mul(taxRatePercent).Div(hundred)
}

// FinalPrice is effective × (1 + rate/100).
func FinalPrice(effective, taxRatePercent decimal.Decimal) decimal.Decimal {
	return effective.Add(TaxAmount(effective, taxRatePercent))
}

// FormatCurrency renders d with exactly two decimals, e.g. "$90.00" or "-$4.50".
func FormatCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatFloat is FormatCurrency for values that arrive as float64 from list payloads.
func FormatFloat(v float64) string {
	return FormatCurrency(decimal.NewFromFloat(v))
}
