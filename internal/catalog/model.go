// Package catalog manages products and product categories.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
)

// Product statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ProductStatuses lists the filter selectors of the products page.
var ProductStatuses = []string{"all", StatusActive, StatusInactive}

// Product is a catalog entry as the backend returns it.
type Product struct {
	ID              backend.ID          `json:"id"`
	Name            string              `json:"name"`
	SKU             string              `json:"sku"`
	Category        string              `json:"category"`
	Description     string              `json:"description"`
	Price           decimal.Decimal     `json:"price"`
	DiscountPercent decimal.Decimal     `json:"discountPercent"`
	DiscountPrice   decimal.NullDecimal `json:"discountPrice"`
	TaxRate         decimal.Decimal     `json:"taxRate"`
	Stock           int64               `json:"stock"`
	Status          string              `json:"status"`
}

// StatusKey implements listview.Statused. Missing statuses count as active.
func (p Product) StatusKey() string {
	if p.Status == "" {
		return StatusActive
	}
	return strings.ToLower(p.Status)
}

// RecordID implements listview.Identified.
func (p Product) RecordID() string { return p.ID.String() }

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }

// Category is a product category from the backend.
type Category struct {
	ID   backend.ID `json:"id"`
	Name string     `json:"name"`
}

// CategoryToggle is a category with the locally stored enabled flag.
type CategoryToggle struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ProductDraft is the editable shape of a product.
type ProductDraft struct {
	Name            string              `json:"name" validate:"required"`
	SKU             string              `json:"sku"`
	Category        string              `json:"category"`
	Description     string              `json:"description"`
	Price           decimal.NullDecimal `json:"price"`
	DiscountPercent decimal.Decimal     `json:"discountPercent"`
	DiscountPrice   decimal.NullDecimal `json:"discountPrice"`
	TaxRate         decimal.Decimal     `json:"taxRate"`
	Stock           int64               `json:"stock"`
	Status          string              `json:"status" validate:"oneof=active inactive"`
}

var productFields = []string{
	"name", "sku", "category", "description", "price", "discountPercent",
	"discountPrice", "taxRate", "stock", "status",
}

// NewProductDraft is the starting point of the add page.
func NewProductDraft() ProductDraft {
	return ProductDraft{Status: StatusActive}
}

// DraftFromProduct seeds an edit page.
func DraftFromProduct(p Product) ProductDraft {
	status := p.StatusKey()
	return ProductDraft{
		Name:            p.Name,
		SKU:             p.SKU,
		Category:        p.Category,
		Description:     p.Description,
		Price:           decimal.NewNullDecimal(p.Price),
		DiscountPercent: p.DiscountPercent,
		DiscountPrice:   p.DiscountPrice,
		TaxRate:         p.TaxRate,
		Stock:           p.Stock,
		Status:          status,
	}
}

// Fields implements form.Record.
func (d ProductDraft) Fields() []string { return productFields }

// WithField implements form.Record.
func (d ProductDraft) WithField(name, value string) (ProductDraft, error) {
	value = strings.TrimSpace(value)
	var err error
	switch name {
	case "name":
		d.Name = value
	case "sku":
		d.SKU = value
	case "category":
		d.Category = value
	case "description":
		d.Description = value
	case "price":
		d.Price, err = parseNullDecimal(value)
	case "discountPercent":
		d.DiscountPercent, err = parseDecimal(value)
	case "discountPrice":
		d.DiscountPrice, err = parseNullDecimal(value)
	case "taxRate":
		d.TaxRate, err = parseDecimal(value)
	case "stock":
		d.Stock, err = parseInt(value)
	case "status":
		d.Status = strings.ToLower(value)
	default:
		return d, fmt.Errorf("%w: product.%s", form.ErrUnknownField, name)
	}
	if err != nil {
		return d, &form.FieldError{Field: name, Err: err}
	}
	return d, nil
}

// Validate implements form.Record.
func (d ProductDraft) Validate() form.FieldErrors {
	errs := form.Check(d)
	if !d.Price.Valid {
		errs = form.Merge(errs, form.FieldErrors{"price": "required"})
	} else if d.Price.Decimal.IsNegative() {
		errs = form.Merge(errs, form.FieldErrors{"price": "min"})
	}
	if d.DiscountPercent.IsNegative() || d.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs = form.Merge(errs, form.FieldErrors{"discountPercent": "percent"})
	}
	if d.DiscountPrice.Valid && d.DiscountPrice.Decimal.IsNegative() {
		errs = form.Merge(errs, form.FieldErrors{"discountPrice": "min"})
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		errs = form.Merge(errs, form.FieldErrors{"taxRate": "percent"})
	}
	if d.Stock < 0 {
		errs = form.Merge(errs, form.FieldErrors{"stock": "min"})
	}
	return errs
}

// Clone implements form.Record; the draft holds no shared references.
func (d ProductDraft) Clone() ProductDraft { return d }

// Pricing returns the derived pricing panel.
func (d ProductDraft) Pricing() pricing.Breakdown {
	return pricing.Compute(pricing.Input{
		Price:           d.Price,
		DiscountPercent: d.DiscountPercent,
		DiscountPrice:   d.DiscountPrice,
		TaxRatePercent:  d.TaxRate,
	})
}

// PriceText renders the optional price for an input value attribute.
func (d ProductDraft) PriceText() string { return nullText(d.Price) }

// DiscountPriceText renders the optional flat discount price.
func (d ProductDraft) DiscountPriceText() string { return nullText(d.DiscountPrice) }

type productPayload struct {
	Name            string   `json:"name"`
	SKU             string   `json:"sku,omitempty"`
	Category        string   `json:"category,omitempty"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	DiscountPercent float64  `json:"discountPercent"`
	DiscountPrice   *float64 `json:"discountPrice"`
	TaxRate         float64  `json:"taxRate"`
	Stock           int64    `json:"stock"`
	Status          string   `json:"status"`
}

func (d ProductDraft) payload() productPayload {
	p := productPayload{
		Name:            d.Name,
		SKU:             d.SKU,
		Category:        d.Category,
		Description:     d.Description,
		Price:           d.Price.Decimal.InexactFloat64(),
		DiscountPercent: d.DiscountPercent.InexactFloat64(),
		TaxRate:         d.TaxRate.InexactFloat64(),
		Stock:           d.Stock,
		Status:          d.Status,
	}
	if d.DiscountPrice.Valid {
		v := d.DiscountPrice.Decimal.InexactFloat64()
		p.DiscountPrice = &v
	}
	return p
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, form.ErrInvalidValue
	}
	return d, nil
}

func parseNullDecimal(value string) (decimal.NullDecimal, error) {
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, form.ErrInvalidValue
	}
	return decimal.NewNullDecimal(d), nil
}

func parseInt(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, form.ErrInvalidValue
	}
	return n, nil
}

func nullText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
