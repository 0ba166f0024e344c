package procurement

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(backend.NewClient(srv.URL+"/api", time.Second), nil)
}

func TestCreateSupplierPostsDraft(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/createsupplier", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"message":"created"}`))
	})
	err := svc.CreateSupplier(context.Background(), SupplierDraft{
		Name: "Nordic Dental", ContactPerson: "Eva", Email: "eva@nordic.example", Phone: "+46 8 123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nordic Dental", body["name"])
	assert.Equal(t, "Eva", body["contactPerson"])
}

func TestGetSupplierNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/supplier/9", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := svc.GetSupplier(context.Background(), "9")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePOPayloadCarriesTotals(t *testing.T) {
	var body poPayload
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/updatesupplierorder/12", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	d := PODraft{Status: POStatusOrdered}.AddItem(1)
	d, err := d.WithField("items.1.product", "Scaler tips")
	require.NoError(t, err)
	d, _ = d.WithField("items.1.quantity", "2")
	d, _ = d.WithField("items.1.unitPrice", "50")
	d, _ = d.WithField("items.1.taxRate", "15")

	require.NoError(t, svc.UpdatePO(context.Background(), "12", d))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Scaler tips", body.Items[0].ProductName)
	assert.InDelta(t, 100, body.Items[0].SubTotal, 0.001)
	assert.InDelta(t, 15, body.Items[0].TaxAmount, 0.001)
	assert.InDelta(t, 115, body.TotalAmount, 0.001)
}

func TestListInvoicesResolvesSupplierNames(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/supplierinvoices":
			_, _ = w.Write([]byte(`{"data":[
				{"id":1,"supplierId":3,"amount":"100"},
				{"id":2,"supplierId":4,"amount":"50"},
				{"id":3,"supplierId":5,"supplierName":"Given","amount":"10"}
			]}`))
		case "/api/suppliers":
			_, _ = w.Write([]byte(`{"data":[{"id":3,"name":"Nordic Dental"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	invoices, err := svc.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "Nordic Dental", invoices[0].SupplierName)
	assert.Equal(t, "Supplier #4", invoices[1].SupplierName)
	assert.Equal(t, "Given", invoices[2].SupplierName)
}

func TestListInvoicesSupplierLookupIsBestEffort(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/suppliers" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":1,"supplierId":"s-7","amount":"100"}]}`))
	})
	invoices, err := svc.ListInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Supplier #s-7", invoices[0].SupplierName)
}

func TestDeleteInvoiceUsesPost(t *testing.T) {
	var method, path string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	})
	require.NoError(t, svc.DeleteInvoice(context.Background(), "5"))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/deletesupplierinvoice/5", path)
}

func TestGetPODecodesItems(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":12,"orderNumber":"PO-12","status":"Cancelled","expectedDate":"2026-11-01",
			"items":[{"id":40,"productName":"Gloves","quantity":2,"unitPrice":"50","taxRate":15}]}}`))
	})
	po, err := svc.GetPO(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, POStatusCanceled, po.StatusKey())
	assert.True(t, po.Amount().Equal(decimal.NewFromInt(115)))

	d := DraftFromPO(po)
	assert.Equal(t, "2026-11-01", d.ExpectedDate)
	require.Len(t, d.Items, 1)
	assert.Equal(t, int64(1), d.Items[0].Key)
	assert.Equal(t, int64(40), d.Items[0].ID)
}
