package procurement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
)

// itemPrefix starts the field name of an item cell, e.g. "items.3.quantity".
const itemPrefix = "items."

var itemFields = []string{"product", "quantity", "unitPrice", "taxRate"}

var hundred = decimal.NewFromInt(100)

// PODraft is the editable shape of a purchase order. Lines carry a
// form-scoped Key handed out by the draft sequence.
type PODraft struct {
	SupplierID   string         `json:"supplierId"`
	SupplierName string         `json:"supplierName"`
	Status       string         `json:"status" validate:"oneof=draft ordered received canceled"`
	ExpectedDate string         `json:"expectedDate" validate:"omitempty,datetime=2006-01-02"`
	Notes        string         `json:"notes"`
	Items        []pricing.Line `json:"items"`
}

// DraftFromPO seeds the purchase order edit page. Keys are numbered from 1 in
// backend order; callers continue the sequence from len(Items).
func DraftFromPO(po PurchaseOrder) PODraft {
	d := PODraft{
		SupplierID:   po.SupplierID.String(),
		SupplierName: po.SupplierName,
		Status:       po.StatusKey(),
		Notes:        po.Notes,
		Items:        make([]pricing.Line, 0, len(po.Items)),
	}
	if !po.ExpectedDate.IsZero() {
		d.ExpectedDate = po.ExpectedDate.Format("2006-01-02")
	}
	for i, item := range po.Items {
		d.Items = append(d.Items, pricing.Line{
			Key:       int64(i + 1),
			ID:        item.ID.Int64(),
			ProductID: item.ProductID.String(),
			Product:   item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
		}.Recompute())
	}
	return d
}

// Fields implements form.Record. Item cells are listed per current line so
// posted values for removed lines are dropped.
func (d PODraft) Fields() []string {
	fields := []string{"status", "expectedDate", "notes"}
	for _, line := range d.Items {
		for _, f := range itemFields {
			fields = append(fields, itemField(line.Key, f))
		}
	}
	return fields
}

// WithField implements form.Record.
func (d PODraft) WithField(name, value string) (PODraft, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(name, itemPrefix) {
		return d.withItemField(name, value)
	}
	switch name {
	case "status":
		d.Status = strings.ToLower(value)
	case "expectedDate":
		d.ExpectedDate = value
	case "notes":
		d.Notes = value
	default:
		return d, fmt.Errorf("%w: purchaseOrder.%s", form.ErrUnknownField, name)
	}
	return d, nil
}

func (d PODraft) withItemField(name, value string) (PODraft, error) {
	parts := strings.SplitN(strings.TrimPrefix(name, itemPrefix), ".", 2)
	if len(parts) != 2 {
		return d, fmt.Errorf("%w: purchaseOrder.%s", form.ErrUnknownField, name)
	}
	key, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return d, fmt.Errorf("%w: purchaseOrder.%s", form.ErrUnknownField, name)
	}
	idx := d.indexOf(key)
	if idx < 0 {
		return d, fmt.Errorf("%w: purchaseOrder.%s", form.ErrUnknownField, name)
	}
	d = d.Clone()
	line := d.Items[idx]
	switch parts[1] {
	case "product":
		line.Product = value
	case "quantity":
		line.Quantity, err = parseAmount(value)
	case "unitPrice":
		line.UnitPrice, err = parseAmount(value)
	case "taxRate":
		line.TaxRate, err = parseAmount(value)
	default:
		return d, fmt.Errorf("%w: purchaseOrder.%s", form.ErrUnknownField, name)
	}
	if err != nil {
		return d, &form.FieldError{Field: name, Err: err}
	}
	d.Items[idx] = line.Recompute()
	return d, nil
}

// AddItem appends an empty line with key.
func (d PODraft) AddItem(key int64) PODraft {
	d = d.Clone()
	d.Items = append(d.Items, pricing.Line{Key: key, Quantity: decimal.NewFromInt(1)}.Recompute())
	return d
}

// RemoveItem drops the line with key. Unknown keys are ignored.
func (d PODraft) RemoveItem(key int64) PODraft {
	idx := d.indexOf(key)
	if idx < 0 {
		return d
	}
	d = d.Clone()
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return d
}

// MaxKey is the highest line key in use.
func (d PODraft) MaxKey() int64 {
	var highest int64
	for _, line := range d.Items {
		if line.Key > highest {
			highest = line.Key
		}
	}
	return highest
}

// Validate implements form.Record.
func (d PODraft) Validate() form.FieldErrors {
	errs := form.Check(d)
	if len(d.Items) == 0 {
		errs = form.Merge(errs, form.FieldErrors{"items": "required"})
	}
	for _, line := range d.Items {
		if line.Product == "" {
			errs = form.Merge(errs, form.FieldErrors{itemField(line.Key, "product"): "required"})
		}
		if !line.Quantity.IsPositive() {
			errs = form.Merge(errs, form.FieldErrors{itemField(line.Key, "quantity"): "min"})
		}
		if line.UnitPrice.IsNegative() {
			errs = form.Merge(errs, form.FieldErrors{itemField(line.Key, "unitPrice"): "min"})
		}
		if line.TaxRate.IsNegative() || line.TaxRate.GreaterThan(hundred) {
			errs = form.Merge(errs, form.FieldErrors{itemField(line.Key, "taxRate"): "percent"})
		}
	}
	return errs
}

// Clone implements form.Record; items are copied.
func (d PODraft) Clone() PODraft {
	if d.Items != nil {
		d.Items = append([]pricing.Line(nil), d.Items...)
	}
	return d
}

// Totals sums the line amounts.
func (d PODraft) Totals() pricing.OrderTotals { return pricing.Totals(d.Items) }

func (d PODraft) indexOf(key int64) int {
	for i, line := range d.Items {
		if line.Key == key {
			return i
		}
	}
	return -1
}

func itemField(key int64, field string) string {
	return itemPrefix + strconv.FormatInt(key, 10) + "." + field
}

type poItemPayload struct {
	ID          int64   `json:"id,omitempty"`
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
	SubTotal    float64 `json:"subTotal"`
	TaxAmount   float64 `json:"taxAmount"`
}

type poPayload struct {
	SupplierID   string          `json:"supplierId,omitempty"`
	Status       string          `json:"status"`
	ExpectedDate string          `json:"expectedDate,omitempty"`
	Notes        string          `json:"notes"`
	Items        []poItemPayload `json:"items"`
	TotalAmount  float64         `json:"totalAmount"`
}

func (d PODraft) payload() poPayload {
	p := poPayload{
		SupplierID:   d.SupplierID,
		Status:       d.Status,
		ExpectedDate: d.ExpectedDate,
		Notes:        d.Notes,
		Items:        make([]poItemPayload, 0, len(d.Items)),
		TotalAmount:  d.Totals().Total.InexactFloat64(),
	}
	for _, line := range d.Items {
		p.Items = append(p.Items, poItemPayload{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.Product,
			Quantity:    line.Quantity.InexactFloat64(),
			UnitPrice:   line.UnitPrice.InexactFloat64(),
			TaxRate:     line.TaxRate.InexactFloat64(),
			SubTotal:    line.SubTotal.InexactFloat64(),
			TaxAmount:   line.TaxAmount.InexactFloat64(),
		})
	}
	return p
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, form.ErrInvalidValue
	}
	return d, nil
}
