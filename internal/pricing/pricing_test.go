package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDiscountScenario(t *testing.T) {
	assert.Equal(t, "$90.00", DiscountedPrice(price("100"), dec("10")))
	assert.Equal(t, "$10.00", SavingsAmount(price("100"), dec("10")))
}

func TestZeroDiscountIsBlank(t *testing.T) {
	for _, p := range []string{"0", "1", "100", "249.99"} {
		assert.Empty(t, DiscountedPrice(price(p), decimal.Zero), "price %s", p)
		assert.Empty(t, SavingsAmount(price(p), decimal.Zero), "price %s", p)
	}
}

func TestMissingPriceIsBlank(t *testing.T) {
	assert.Empty(t, DiscountedPrice(decimal.NullDecimal{}, dec("15")))
	assert.Empty(t, SavingsAmount(decimal.NullDecimal{}, dec("15")))
}

func TestFullDiscountIsNotBlank(t *testing.T) {
	assert.Equal(t, "$0.00", DiscountedPrice(price("80"), dec("100")))
	assert.Equal(t, "$80.00", SavingsAmount(price("80"), dec("100")))
}

func TestDiscountedPlusSavingsEqualsPrice(t *testing.T) {
	prices := []string{"1", "9.99", "100", "1234.56", "0.5"}
	percents := []string{"0.5", "1", "12.5", "33", "50", "99.9", "100"}
	tolerance := dec("0.01")
	for _, p := range prices {
		for _, pct := range percents {
			discounted := parseCurrency(t, DiscountedPrice(price(p), dec(pct)))
			savings := parseCurrency(t, SavingsAmount(price(p), dec(pct)))
			diff := discounted.Add(savings).Sub(dec(p)).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance), "price=%s pct=%s diff=%s", p, pct, diff)
		}
	}
}

func TestEffectivePrice(t *testing.T) {
	assert.True(t, dec("80").Equal(EffectivePrice(dec("100"), price("80"))))
	assert.True(t, dec("100").Equal(EffectivePrice(dec("100"), price("120"))))
	assert.True(t, dec("100").Equal(EffectivePrice(dec("100"), price("100"))))
	assert.True(t, dec("100").Equal(EffectivePrice(dec("100"), decimal.NullDecimal{})))
}

func TestTaxAndFinalPrice(t *testing.T) {
	effective := EffectivePrice(dec("100"), price("80"))
	assert.Equal(t, "$20.00", FormatCurrency(TaxAmount(effective, dec("25"))))
	assert.Equal(t, "$100.00", FormatCurrency(FinalPrice(effective, dec("25"))))
}

func TestCompute(t *testing.T) {
	b := Compute(Input{Price: price("200"), DiscountPercent: dec("10"), TaxRatePercent: dec("25")})
	assert.Equal(t, Breakdown{
		DiscountedPrice: "$180.00",
		SavingsAmount:   "$20.00",
		EffectivePrice:  "$200.00",
		TaxAmount:       "$50.00",
		FinalPrice:      "$250.00",
	}, b)

	assert.Equal(t, Breakdown{}, Compute(Input{DiscountPercent: dec("10"), TaxRatePercent: dec("25")}))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "$1.50", FormatCurrency(dec("1.5")))
	assert.Equal(t, "$2.35", FormatCurrency(dec("2.345")))
	assert.Equal(t, "-$4.50", FormatCurrency(dec("-4.5")))
	assert.Equal(t, "$19.99", FormatFloat(19.99))
}

func TestLineRecompute(t *testing.T) {
	line := Line{Quantity: dec("2"), UnitPrice: dec("50"), TaxRate: dec("15")}.Recompute()
	assert.True(t, dec("100").Equal(line.SubTotal), "subtotal %s", line.SubTotal)
	assert.True(t, dec("15").Equal(line.TaxAmount), "tax %s", line.TaxAmount)
}

func TestTotals(t *testing.T) {
	lines := []Line{
		Line{Quantity: dec("2"), UnitPrice: dec("50"), TaxRate: dec("15")}.Recompute(),
		Line{Quantity: dec("1"), UnitPrice: dec("20"), TaxRate: dec("0")}.Recompute(),
	}
	totals := Totals(lines)
	assert.True(t, dec("120").Equal(totals.SubTotal))
	assert.True(t, dec("15").Equal(totals.Tax))
	assert.True(t, dec("135").Equal(totals.Total))

	empty := Totals(nil)
	assert.True(t, empty.Total.IsZero())
}

func parseCurrency(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	require.NotEmpty(t, s)
	require.Equal(t, byte('$'), s[0])
	return dec(s[1:])
}
