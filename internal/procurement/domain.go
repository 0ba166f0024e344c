// Package procurement manages suppliers, purchase orders and supplier invoices.
package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
)

// Purchase order lifecycle statuses.
const (
	POStatusDraft    = "draft"
	POStatusOrdered  = "ordered"
	POStatusReceived = "received"
	POStatusCanceled = "canceled"
)

// POStatuses lists the filter selectors of the purchase orders page.
var POStatuses = []string{"all", POStatusDraft, POStatusOrdered, POStatusReceived, POStatusCanceled}

// Supplier invoice statuses.
const (
	InvoicePaid    = "paid"
	InvoiceUnpaid  = "unpaid"
	InvoiceOverdue = "overdue"
)

// InvoiceStatuses lists the filter selectors of the invoices page.
var InvoiceStatuses = []string{"all", InvoicePaid, InvoiceUnpaid, InvoiceOverdue}

// Supplier is a vendor of dental equipment.
type Supplier struct {
	ID            backend.ID   `json:"id"`
	Name          string       `json:"name"`
	ContactPerson string       `json:"contactPerson"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	CreatedAt     backend.Time `json:"createdAt"`
}

// RecordID implements listview.Identified.
func (s Supplier) RecordID() string { return s.ID.String() }

// SupplierDraft is the editable shape of a supplier.
type SupplierDraft struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address"`
}

var supplierFields = []string{"name", "contactPerson", "email", "phone", "address"}

// DraftFromSupplier seeds the supplier edit page.
func DraftFromSupplier(s Supplier) SupplierDraft {
	return SupplierDraft{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
	}
}

// Fields implements form.Record.
func (d SupplierDraft) Fields() []string { return supplierFields }

// WithField implements form.Record.
func (d SupplierDraft) WithField(name, value string) (SupplierDraft, error) {
	value = strings.TrimSpace(value)
	switch name {
	case "name":
		d.Name = value
	case "contactPerson":
		d.ContactPerson = value
	case "email":
		d.Email = value
	case "phone":
		d.Phone = value
	case "address":
		d.Address = value
	default:
		return d, fmt.Errorf("%w: supplier.%s", form.ErrUnknownField, name)
	}
	return d, nil
}

// Validate implements form.Record.
func (d SupplierDraft) Validate() form.FieldErrors { return form.Check(d) }

// Clone implements form.Record.
func (d SupplierDraft) Clone() SupplierDraft { return d }

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID           backend.ID      `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	SupplierID   backend.ID      `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	Status       string          `json:"status"`
	OrderDate    backend.Time    `json:"orderDate"`
	ExpectedDate backend.Time    `json:"expectedDate"`
	Notes        string          `json:"notes"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Items        []POItem        `json:"items"`
}

// POItem is one line of a purchase order as the backend sends it.
type POItem struct {
	ID          backend.ID      `json:"id"`
	ProductID   backend.ID      `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// StatusKey implements listview.Statused.
func (po PurchaseOrder) StatusKey() string {
	status := strings.ToLower(strings.TrimSpace(po.Status))
	switch status {
	case "":
		return POStatusDraft
	case "cancelled":
		return POStatusCanceled
	default:
		return status
	}
}

// RecordID implements listview.Identified.
func (po PurchaseOrder) RecordID() string { return po.ID.String() }

// Number is the display number, falling back to the id.
func (po PurchaseOrder) Number() string {
	if po.OrderNumber != "" {
		return po.OrderNumber
	}
	return "PO-" + po.ID.String()
}

// Amount is the backend total, or the sum of the lines when the backend sent none.
func (po PurchaseOrder) Amount() decimal.Decimal {
	if !po.TotalAmount.IsZero() || len(po.Items) == 0 {
		return po.TotalAmount
	}
	return DraftFromPO(po).Totals().Total
}

// SupplierInvoice is a bill received from a supplier.
type SupplierInvoice struct {
	ID            backend.ID      `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SupplierID    backend.ID      `json:"supplierId"`
	SupplierName  string          `json:"supplierName"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	IssueDate     backend.Time    `json:"issueDate"`
	DueDate       backend.Time    `json:"dueDate"`
}

// StatusAt buckets the invoice at now. Unpaid invoices past their due date
// are overdue even when the backend still reports them unpaid.
func (inv SupplierInvoice) StatusAt(now time.Time) string {
	status := strings.ToLower(strings.TrimSpace(inv.Status))
	switch status {
	case InvoicePaid, InvoiceOverdue:
		return status
	}
	if !inv.DueDate.IsZero() && inv.DueDate.Before(now) {
		return InvoiceOverdue
	}
	return InvoiceUnpaid
}

// StatusKey implements listview.Statused.
func (inv SupplierInvoice) StatusKey() string { return inv.StatusAt(time.Now()) }

// RecordID implements listview.Identified.
func (inv SupplierInvoice) RecordID() string { return inv.ID.String() }

// Number is the display number, falling back to the id.
func (inv SupplierInvoice) Number() string {
	if inv.InvoiceNumber != "" {
		return inv.InvoiceNumber
	}
	return "INV-" + inv.ID.String()
}

// SupplierLabel is the placeholder used when a supplier name cannot be resolved.
func SupplierLabel(id backend.ID) string {
	return "Supplier #" + id.String()
}
