package procurement_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/webtest"
	"github.com/dentaldesk/dentaldesk/report"
	_ "github.com/dentaldesk/dentaldesk/testing"
)

type stubService struct {
	suppliers     []procurement.Supplier
	pos           []procurement.PurchaseOrder
	invoices      []procurement.SupplierInvoice
	listErr       error
	saveErr       error
	created       []procurement.SupplierDraft
	updatedPOs    map[string]procurement.PODraft
	deleted       []string
	supplierCalls int
}

func (s *stubService) ListSuppliers(context.Context) ([]procurement.Supplier, error) {
	s.supplierCalls++
	return s.suppliers, s.listErr
}

func (s *stubService) GetSupplier(_ context.Context, id string) (procurement.Supplier, error) {
	for _, sup := range s.suppliers {
		if sup.ID.String() == id {
			return sup, nil
		}
	}
	return procurement.Supplier{}, fmt.Errorf("supplier %s: %w", id, shared.ErrNotFound)
}

func (s *stubService) CreateSupplier(_ context.Context, d procurement.SupplierDraft) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.created = append(s.created, d)
	return nil
}

func (s *stubService) UpdateSupplier(context.Context, string, procurement.SupplierDraft) error {
	return s.saveErr
}

func (s *stubService) ListPOs(context.Context) ([]procurement.PurchaseOrder, error) {
	return s.pos, s.listErr
}

func (s *stubService) GetPO(_ context.Context, id string) (procurement.PurchaseOrder, error) {
	for _, po := range s.pos {
		if po.ID.String() == id {
			return po, nil
		}
	}
	return procurement.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, shared.ErrNotFound)
}

func (s *stubService) UpdatePO(_ context.Context, id string, d procurement.PODraft) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.updatedPOs == nil {
		s.updatedPOs = map[string]procurement.PODraft{}
	}
	s.updatedPOs[id] = d
	return nil
}

func (s *stubService) ListInvoices(context.Context) ([]procurement.SupplierInvoice, error) {
	return s.invoices, s.listErr
}

func (s *stubService) DeleteInvoice(_ context.Context, id string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubPDF struct {
	html string
	err  error
}

func (p *stubPDF) RenderHTML(_ context.Context, html string, _ report.Options) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7"), nil
}

func newRouter(t *testing.T, svc *stubService, pdf *stubPDF) (*webtest.Harness, chi.Router) {
	t.Helper()
	h := webtest.New(t)
	lists := procurement.Collections{
		Suppliers: listview.NewCollection[procurement.Supplier](h.Redis, "suppliers", time.Minute),
		POs:       listview.NewCollection[procurement.PurchaseOrder](h.Redis, "purchase-orders", time.Minute),
		Invoices:  listview.NewCollection[procurement.SupplierInvoice](h.Redis, "supplier-invoices", time.Minute),
	}
	handler := procurement.NewHandler(h.Logger, svc, h.Templates, h.CSRF, form.NewStore(h.Redis, time.Hour), lists, pdf, 2*time.Second)
	r := chi.NewRouter()
	r.Route("/procurement", handler.MountRoutes)
	return h, r
}

func samplePO() procurement.PurchaseOrder {
	return procurement.PurchaseOrder{
		ID:           "12",
		OrderNumber:  "PO-12",
		SupplierName: "Nordic Dental",
		Status:       "ordered",
		Items: []procurement.POItem{
			{ID: "40", ProductName: "Gloves", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), TaxRate: decimal.NewFromInt(15)},
		},
	}
}

func TestAddSupplierRequiresContactFields(t *testing.T) {
	svc := &stubService{}
	h, r := newRouter(t, svc, &stubPDF{})
	h.Do(r, http.MethodGet, "/procurement/suppliers/add", nil)

	res := h.Do(r, http.MethodPost, "/procurement/suppliers/add", url.Values{
		"action": {"save"},
		"name":   {"Nordic Dental"},
		"email":  {"nope"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `data-error-for="contactPerson"`)
	assert.Contains(t, body, `data-error-for="email"`)
	assert.Contains(t, body, `data-error-for="phone"`)
	assert.Empty(t, svc.created)
}

func TestAddSupplierSuccessRedirectsAfterDelay(t *testing.T) {
	svc := &stubService{}
	h, r := newRouter(t, svc, &stubPDF{})
	res := h.Do(r, http.MethodPost, "/procurement/suppliers/add", url.Values{
		"action":        {"save"},
		"name":          {"Nordic Dental"},
		"contactPerson": {"Eva"},
		"email":         {"eva@nordic.example"},
		"phone":         {"+46 8 123"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `content="2;url=/procurement/suppliers"`)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "Eva", svc.created[0].ContactPerson)
}

func TestAddSupplierBackendFailureKeepsInput(t *testing.T) {
	svc := &stubService{saveErr: &backend.APIError{Status: 409, Message: "Supplier already exists"}}
	h, r := newRouter(t, svc, &stubPDF{})
	res := h.Do(r, http.MethodPost, "/procurement/suppliers/add", url.Values{
		"action":        {"save"},
		"name":          {"Nordic Dental"},
		"contactPerson": {"Eva"},
		"email":         {"eva@nordic.example"},
		"phone":         {"1"},
	})
	assert.Equal(t, http.StatusBadGateway, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Supplier already exists")
	assert.Contains(t, body, `value="Nordic Dental"`)
}

func TestSupplierDeleteIsNotImplemented(t *testing.T) {
	h, r := newRouter(t, &stubService{}, &stubPDF{})
	res := h.Do(r, http.MethodPost, "/procurement/suppliers/3/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	flash := h.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "warning", flash.Kind)
}

func TestEditPOAddAndRemoveLines(t *testing.T) {
	svc := &stubService{pos: []procurement.PurchaseOrder{samplePO()}}
	h, r := newRouter(t, svc, &stubPDF{})

	res := h.Do(r, http.MethodGet, "/procurement/purchase-orders/edit/12", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `data-total="total">$115.00`)

	res = h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{
		"action":           {"add-item"},
		"items.1.product":  {"Gloves"},
		"items.1.quantity": {"3"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `name="items.2.product"`)
	assert.Contains(t, body, `data-total="subtotal">$150.00`)
	assert.Empty(t, svc.updatedPOs, "structural edits never submit")

	res = h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{
		"action": {"remove-item:2"},
	})
	assert.NotContains(t, res.Body.String(), `name="items.2.product"`)

	res = h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{
		"action": {"add-item"},
	})
	assert.Contains(t, res.Body.String(), `name="items.3.product"`, "keys are never reused")
}

func TestEditPOSubmitSendsLines(t *testing.T) {
	svc := &stubService{pos: []procurement.PurchaseOrder{samplePO()}}
	h, r := newRouter(t, svc, &stubPDF{})
	h.Do(r, http.MethodGet, "/procurement/purchase-orders/edit/12", nil)

	res := h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{
		"action":           {"save"},
		"items.1.quantity": {"4"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	sent, ok := svc.updatedPOs["12"]
	require.True(t, ok)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, "$230.00", "$"+sent.Totals().Total.StringFixed(2))
	assert.Contains(t, res.Body.String(), `content="2;url=/procurement/purchase-orders"`)
}

func TestEditPOUnchangedIsNotSent(t *testing.T) {
	svc := &stubService{pos: []procurement.PurchaseOrder{samplePO()}}
	h, r := newRouter(t, svc, &stubPDF{})
	h.Do(r, http.MethodGet, "/procurement/purchase-orders/edit/12", nil)
	res := h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{"action": {"save"}})
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, svc.updatedPOs)
	assert.Contains(t, res.Body.String(), h.Translator.Resolve("en", "nothingChanged", "errors"))
}

func TestEditPOWithoutDraftAsksForReload(t *testing.T) {
	h, r := newRouter(t, &stubService{pos: []procurement.PurchaseOrder{samplePO()}}, &stubPDF{})
	res := h.Do(r, http.MethodPost, "/procurement/purchase-orders/edit/12", url.Values{"action": {"save"}})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/procurement/purchase-orders/edit/12?reload=1", res.Header().Get("Location"))
}

func TestPOListFilter(t *testing.T) {
	draft := samplePO()
	draft.ID, draft.OrderNumber, draft.Status = "13", "PO-13", ""
	h, r := newRouter(t, &stubService{pos: []procurement.PurchaseOrder{samplePO(), draft}}, &stubPDF{})
	res := h.Do(r, http.MethodGet, "/procurement/purchase-orders?status=draft", nil)
	body := res.Body.String()
	assert.Contains(t, body, "PO-13")
	assert.NotContains(t, body, "PO-12")
	assert.Contains(t, body, `data-stat="ordered">1`)
}

func TestPOPDF(t *testing.T) {
	pdf := &stubPDF{}
	h, r := newRouter(t, &stubService{pos: []procurement.PurchaseOrder{samplePO()}}, pdf)
	res := h.Do(r, http.MethodGet, "/procurement/purchase-orders/12/pdf", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Contains(t, pdf.html, "PO-12")
	assert.Contains(t, pdf.html, "$115.00")

	pdf.err = errors.New("gotenberg down")
	res = h.Do(r, http.MethodGet, "/procurement/purchase-orders/12/pdf", nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/procurement/purchase-orders/edit/12", res.Header().Get("Location"))
}

func TestInvoicesListAndDelete(t *testing.T) {
	svc := &stubService{invoices: []procurement.SupplierInvoice{
		{ID: "1", InvoiceNumber: "INV-1", SupplierName: "Nordic Dental", Status: "paid", Amount: decimal.NewFromInt(500)},
		{ID: "2", InvoiceNumber: "INV-2", SupplierName: "Supplier #4", Status: "unpaid", Amount: decimal.NewFromInt(120)},
	}}
	h, r := newRouter(t, svc, &stubPDF{})

	res := h.Do(r, http.MethodGet, "/procurement/invoices", nil)
	body := res.Body.String()
	assert.Contains(t, body, "Supplier #4")
	assert.Contains(t, body, `data-stat="outstanding">$120.00`)

	res = h.Do(r, http.MethodPost, "/procurement/invoices/2/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, []string{"2"}, svc.deleted)

	svc.invoices = nil
	res = h.Do(r, http.MethodGet, "/procurement/invoices", nil)
	assert.NotContains(t, res.Body.String(), "INV-2")
	assert.Contains(t, res.Body.String(), "INV-1", "cached copy is updated, not refetched")
}

func TestInvoicesMalformedPayload(t *testing.T) {
	svc := &stubService{listErr: fmt.Errorf("decode: %w", backend.ErrMalformedPayload)}
	h, r := newRouter(t, svc, &stubPDF{})
	res := h.Do(r, http.MethodGet, "/procurement/invoices", nil)
	body := res.Body.String()
	assert.Contains(t, body, `data-state="error"`)
	assert.Contains(t, body, h.Translator.Resolve("en", "malformedResponse", "errors"))
}
