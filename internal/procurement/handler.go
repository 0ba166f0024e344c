package procurement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
	"github.com/dentaldesk/dentaldesk/report"
)

const newSupplierKey = "supplier:new"

// ProcurementService is what the handler needs from Service.
type ProcurementService interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id string) (Supplier, error)
	CreateSupplier(ctx context.Context, draft SupplierDraft) error
	UpdateSupplier(ctx context.Context, id string, draft SupplierDraft) error
	ListPOs(ctx context.Context) ([]PurchaseOrder, error)
	GetPO(ctx context.Context, id string) (PurchaseOrder, error)
	UpdatePO(ctx context.Context, id string, draft PODraft) error
	ListInvoices(ctx context.Context) ([]SupplierInvoice, error)
	DeleteInvoice(ctx context.Context, id string) error
}

// PDFRenderer converts a printable page into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string, opts report.Options) ([]byte, error)
}

// Collections are the per-session list caches used by the handler.
type Collections struct {
	Suppliers *listview.Collection[Supplier]
	POs       *listview.Collection[PurchaseOrder]
	Invoices  *listview.Collection[SupplierInvoice]
}

// Handler manages procurement endpoints.
type Handler struct {
	logger       *slog.Logger
	service      ProcurementService
	templates    *view.Engine
	csrf         *shared.CSRFManager
	drafts       *form.Store
	lists        Collections
	pdf          PDFRenderer
	successDelay time.Duration
	now          func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service ProcurementService, templates *view.Engine, csrf *shared.CSRFManager, drafts *form.Store, lists Collections, pdf PDFRenderer, successDelay time.Duration) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		templates:    templates,
		csrf:         csrf,
		drafts:       drafts,
		lists:        lists,
		pdf:          pdf,
		successDelay: successDelay,
		now:          time.Now,
	}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.handleListSuppliers)
		r.Get("/add", h.showAddSupplier)
		r.Post("/add", h.handleAddSupplier)
		r.Get("/edit/{id}", h.showEditSupplier)
		r.Post("/edit/{id}", h.handleEditSupplier)
		r.Post("/{id}/delete", h.handleDeleteSupplier)
	})
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.handleListPOs)
		r.Get("/edit/{id}", h.showEditPO)
		r.Post("/edit/{id}", h.handleEditPO)
		r.Get("/{id}/print", h.handlePrintPO)
		r.Get("/{id}/pdf", h.handlePOPDF)
	})
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.handleListInvoices)
		r.Post("/{id}/delete", h.handleDeleteInvoice)
	})
}

// SupplierRow is the display projection of a supplier.
type SupplierRow struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	search := query.Get("q")
	page, _ := strconv.Atoi(query.Get("page"))

	result := listview.Load(r.Context(), func(ctx context.Context) ([]Supplier, error) {
		return h.lists.Suppliers.Fetch(ctx, sess.ID, query.Get("refresh") == "1", h.service.ListSuppliers)
	}, h.messages(loc, "suppliersLoadFailed"))
	if result.State == listview.StateError {
		h.logger.Warn("list suppliers", slog.String("detail", result.Detail))
	}

	visible := listview.Search(result.Records, search, func(s Supplier) []string {
		return []string{s.Name, s.ContactPerson, s.Email, s.Phone}
	})
	visible = listview.SortBy(visible, func(s Supplier) string { return strings.ToLower(s.Name) }, false)
	window, pagination := listview.Paginate(visible, page, 25)
	rows := make([]SupplierRow, 0, len(window))
	for _, s := range window {
		rows = append(rows, SupplierRow{ID: s.ID.String(), Name: s.Name, ContactPerson: s.ContactPerson, Email: s.Email, Phone: s.Phone})
	}
	h.render(w, r, "pages/procurement/suppliers.html", loc.T("suppliersTitle", "procurement"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Total":      len(result.Records),
		"Search":     search,
		"Pagination": pagination,
	}, http.StatusOK)
}

func newSupplierDraft() *form.Draft[SupplierDraft] {
	d := form.New[SupplierDraft]()
	d.Load(SupplierDraft{})
	return d
}

func (h *Handler) showAddSupplier(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	draft, found, err := form.Load[SupplierDraft](r.Context(), h.drafts, sess.ID, newSupplierKey)
	if err != nil {
		h.logger.Error("load supplier draft", slog.Any("error", err))
	}
	if !found || draft.State == form.StateSuccess {
		draft = newSupplierDraft()
		saveDraft(r.Context(), h, sess.ID, newSupplierKey, draft)
	}
	h.renderSupplierForm(w, r, form.ModeCreate, "/procurement/suppliers/add", draft, "", http.StatusOK)
}

func (h *Handler) handleAddSupplier(w http.ResponseWriter, r *http.Request) {
	submit(h, w, r, formPage[SupplierDraft]{
		key:    newSupplierKey,
		mode:   form.ModeCreate,
		action: "/procurement/suppliers/add",
		what:   "supplier",
		fresh:  newSupplierDraft,
		send:   h.service.CreateSupplier,
		saved:  h.lists.Suppliers.Invalidate,
		render: func(w http.ResponseWriter, r *http.Request, d *form.Draft[SupplierDraft], msg string, status int) {
			h.renderSupplierForm(w, r, form.ModeCreate, "/procurement/suppliers/add", d, msg, status)
		},
	})
}

func (h *Handler) showEditSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := "supplier:" + id
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)

	draft, found, err := form.Load[SupplierDraft](ctx, h.drafts, sess.ID, key)
	if err != nil {
		h.logger.Error("load supplier draft", slog.Any("error", err))
	}
	if !found || r.URL.Query().Get("reload") == "1" || draft.State == form.StateSuccess {
		supplier, err := h.service.GetSupplier(ctx, id)
		if err != nil {
			h.redirectLoadError(w, r, err, "/procurement/suppliers", "supplierNotFound", "suppliersLoadFailed")
			return
		}
		draft = form.New[SupplierDraft]()
		draft.Load(DraftFromSupplier(supplier))
		saveDraft(ctx, h, sess.ID, key, draft)
	}
	h.renderSupplierForm(w, r, form.ModeEdit, "/procurement/suppliers/edit/"+id, draft, "", http.StatusOK)
}

func (h *Handler) handleEditSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := "/procurement/suppliers/edit/" + id
	submit(h, w, r, formPage[SupplierDraft]{
		key:    "supplier:" + id,
		mode:   form.ModeEdit,
		action: action,
		what:   "supplier",
		send: func(ctx context.Context, d SupplierDraft) error {
			return h.service.UpdateSupplier(ctx, id, d)
		},
		saved: h.lists.Suppliers.Invalidate,
		render: func(w http.ResponseWriter, r *http.Request, d *form.Draft[SupplierDraft], msg string, status int) {
			h.renderSupplierForm(w, r, form.ModeEdit, action, d, msg, status)
		},
	})
}

// handleDeleteSupplier has no backend endpoint yet.
func (h *Handler) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	loc := i18n.FromContext(r.Context())
	h.logger.Info("supplier delete requested", slog.String("id", id), slog.Any("error", shared.ErrNotImplemented))
	shared.RedirectWithFlash(w, r, "/procurement/suppliers", "warning", loc.T("notImplemented", "errors"))
}

func (h *Handler) renderSupplierForm(w http.ResponseWriter, r *http.Request, mode form.Mode, action string, draft *form.Draft[SupplierDraft], message string, status int) {
	loc := i18n.FromContext(r.Context())
	title := loc.T("addSupplierTitle", "procurement")
	if mode == form.ModeEdit {
		title = loc.T("editSupplierTitle", "procurement")
	}
	data := map[string]any{
		"Edit":    mode == form.ModeEdit,
		"Action":  action,
		"Draft":   draft.Current,
		"Errors":  draft.Errors,
		"Dirty":   draft.Dirty(),
		"State":   draft.State,
		"Message": message,
	}
	h.withRedirect(data, draft.State, "/procurement/suppliers")
	h.render(w, r, "pages/procurement/supplier_form.html", title, data, status)
}

// PORow is the display projection of a purchase order.
type PORow struct {
	ID       string
	Number   string
	Supplier string
	Status   string
	Ordered  string
	Expected string
	Total    string
}

func newPORow(po PurchaseOrder) PORow {
	row := PORow{
		ID:       po.ID.String(),
		Number:   po.Number(),
		Supplier: po.SupplierName,
		Status:   po.StatusKey(),
		Total:    pricing.FormatCurrency(po.Amount()),
	}
	if row.Supplier == "" && po.SupplierID != "" {
		row.Supplier = SupplierLabel(po.SupplierID)
	}
	if !po.OrderDate.IsZero() {
		row.Ordered = po.OrderDate.Format("2006-01-02")
	}
	if !po.ExpectedDate.IsZero() {
		row.Expected = po.ExpectedDate.Format("2006-01-02")
	}
	return row
}

func (h *Handler) handleListPOs(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	status := listview.NormalizeStatus(query.Get("status"), POStatuses)
	search := query.Get("q")
	page, _ := strconv.Atoi(query.Get("page"))

	result := listview.Load(r.Context(), func(ctx context.Context) ([]PurchaseOrder, error) {
		return h.lists.POs.Fetch(ctx, sess.ID, query.Get("refresh") == "1", h.service.ListPOs)
	}, h.messages(loc, "ordersLoadFailed"))
	if result.State == listview.StateError {
		h.logger.Warn("list purchase orders", slog.String("detail", result.Detail))
	}

	visible := listview.Filter(result.Records, status)
	visible = listview.Search(visible, search, func(po PurchaseOrder) []string {
		return []string{po.Number(), po.SupplierName}
	})
	visible = listview.SortBy(visible, func(po PurchaseOrder) int64 { return po.OrderDate.Unix() }, true)
	window, pagination := listview.Paginate(visible, page, 25)
	rows := make([]PORow, 0, len(window))
	for _, po := range window {
		rows = append(rows, newPORow(po))
	}
	h.render(w, r, "pages/procurement/purchase_orders.html", loc.T("ordersTitle", "procurement"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Stats":      SummarizePOs(result.Records),
		"Status":     status,
		"Statuses":   POStatuses,
		"Search":     search,
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) showEditPO(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := "po:" + id
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)

	draft, found, err := form.Load[PODraft](ctx, h.drafts, sess.ID, key)
	if err != nil {
		h.logger.Error("load purchase order draft", slog.Any("error", err))
	}
	if !found || r.URL.Query().Get("reload") == "1" || draft.State == form.StateSuccess {
		po, err := h.service.GetPO(ctx, id)
		if err != nil {
			h.redirectLoadError(w, r, err, "/procurement/purchase-orders", "orderNotFound", "ordersLoadFailed")
			return
		}
		draft = form.New[PODraft]()
		draft.Load(DraftFromPO(po))
		draft.Seq = draft.Current.MaxKey()
		saveDraft(ctx, h, sess.ID, key, draft)
	}
	h.renderPOForm(w, r, id, draft, "", http.StatusOK)
}

func (h *Handler) handleEditPO(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	submit(h, w, r, formPage[PODraft]{
		key:    "po:" + id,
		mode:   form.ModeEdit,
		action: "/procurement/purchase-orders/edit/" + id,
		what:   "purchase order",
		send: func(ctx context.Context, d PODraft) error {
			return h.service.UpdatePO(ctx, id, d)
		},
		edit:  editPOLines,
		saved: h.lists.POs.Invalidate,
		render: func(w http.ResponseWriter, r *http.Request, d *form.Draft[PODraft], msg string, status int) {
			h.renderPOForm(w, r, id, d, msg, status)
		},
	})
}

// editPOLines applies the add/remove line buttons. Typed values are patched
// first so pressing a button never loses input.
func editPOLines(d *form.Draft[PODraft], action string, values url.Values) bool {
	switch {
	case action == "add-item":
		form.ApplyValues(d, values)
		_ = d.Apply(func(cur PODraft) (PODraft, error) {
			return cur.AddItem(d.NextSeq()), nil
		})
		return true
	case strings.HasPrefix(action, "remove-item:"):
		key, err := strconv.ParseInt(strings.TrimPrefix(action, "remove-item:"), 10, 64)
		if err != nil {
			return false
		}
		form.ApplyValues(d, values)
		_ = d.Apply(func(cur PODraft) (PODraft, error) {
			return cur.RemoveItem(key), nil
		})
		prefix := itemField(key, "")
		for name := range d.Errors {
			if strings.HasPrefix(name, prefix) {
				delete(d.Errors, name)
			}
		}
		return true
	}
	return false
}

// LineRow is the display projection of one purchase order line.
type LineRow struct {
	Key       int64
	Product   string
	Quantity  string
	UnitPrice string
	TaxRate   string
	SubTotal  string
	TaxAmount string
}

func lineRows(lines []pricing.Line) []LineRow {
	rows := make([]LineRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, LineRow{
			Key:       l.Key,
			Product:   l.Product,
			Quantity:  l.Quantity.String(),
			UnitPrice: l.UnitPrice.String(),
			TaxRate:   l.TaxRate.String(),
			SubTotal:  pricing.FormatCurrency(l.SubTotal),
			TaxAmount: pricing.FormatCurrency(l.TaxAmount),
		})
	}
	return rows
}

func (h *Handler) renderPOForm(w http.ResponseWriter, r *http.Request, id string, draft *form.Draft[PODraft], message string, status int) {
	loc := i18n.FromContext(r.Context())
	totals := draft.Current.Totals()
	data := map[string]any{
		"ID":       id,
		"Action":   "/procurement/purchase-orders/edit/" + id,
		"Draft":    draft.Current,
		"Lines":    lineRows(draft.Current.Items),
		"SubTotal": pricing.FormatCurrency(totals.SubTotal),
		"Tax":      pricing.FormatCurrency(totals.Tax),
		"Total":    pricing.FormatCurrency(totals.Total),
		"Errors":   draft.Errors,
		"Dirty":    draft.Dirty(),
		"State":    draft.State,
		"Statuses": POStatuses[1:],
		"Message":  message,
	}
	h.withRedirect(data, draft.State, "/procurement/purchase-orders")
	h.render(w, r, "pages/procurement/po_form.html", loc.T("editOrderTitle", "procurement"), data, status)
}

func (h *Handler) printablePO(r *http.Request) (string, PurchaseOrder, error) {
	id := chi.URLParam(r, "id")
	po, err := h.service.GetPO(r.Context(), id)
	if err != nil {
		return "", po, err
	}
	draft := DraftFromPO(po)
	totals := draft.Totals()
	loc := i18n.FromContext(r.Context())
	html, err := h.templates.RenderString("pages/procurement/po_print.html", view.TemplateData{
		Title:     po.Number(),
		Lang:      loc.Lang(),
		Localizer: loc,
		Data: map[string]any{
			"Row":      newPORow(po),
			"Order":    po,
			"Lines":    lineRows(draft.Items),
			"SubTotal": pricing.FormatCurrency(totals.SubTotal),
			"Tax":      pricing.FormatCurrency(totals.Tax),
			"Total":    pricing.FormatCurrency(totals.Total),
			"Printed":  h.now().Format("2006-01-02"),
		},
	})
	return html, po, err
}

func (h *Handler) handlePrintPO(w http.ResponseWriter, r *http.Request) {
	html, _, err := h.printablePO(r)
	if err != nil {
		h.redirectLoadError(w, r, err, "/procurement/purchase-orders", "orderNotFound", "ordersLoadFailed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handler) handlePOPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	loc := i18n.FromContext(r.Context())
	html, po, err := h.printablePO(r)
	if err != nil {
		h.redirectLoadError(w, r, err, "/procurement/purchase-orders", "orderNotFound", "ordersLoadFailed")
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html, report.A4)
	if err != nil {
		h.logger.Error("render purchase order pdf", slog.Any("error", err), slog.String("id", id))
		shared.RedirectWithFlash(w, r, "/procurement/purchase-orders/edit/"+id, "error", loc.T("pdfFailed", "procurement"))
		return
	}
	report.WritePDF(w, po.Number()+".pdf", pdf)
}

// InvoiceRow is the display projection of a supplier invoice.
type InvoiceRow struct {
	ID       string
	Number   string
	Supplier string
	Amount   string
	Status   string
	Issued   string
	Due      string
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	status := listview.NormalizeStatus(query.Get("status"), InvoiceStatuses)
	search := query.Get("q")
	page, _ := strconv.Atoi(query.Get("page"))
	now := h.now()

	result := listview.Load(r.Context(), func(ctx context.Context) ([]SupplierInvoice, error) {
		return h.lists.Invoices.Fetch(ctx, sess.ID, query.Get("refresh") == "1", h.service.ListInvoices)
	}, h.messages(loc, "invoicesLoadFailed"))
	if result.State == listview.StateError {
		h.logger.Warn("list supplier invoices", slog.String("detail", result.Detail))
	}

	visible := result.Records
	if status != listview.StatusAll {
		visible = make([]SupplierInvoice, 0, len(result.Records))
		for _, inv := range result.Records {
			if inv.StatusAt(now) == status {
				visible = append(visible, inv)
			}
		}
	}
	visible = listview.Search(visible, search, func(inv SupplierInvoice) []string {
		return []string{inv.Number(), inv.SupplierName}
	})
	visible = listview.SortBy(visible, func(inv SupplierInvoice) int64 { return inv.DueDate.Unix() }, false)
	window, pagination := listview.Paginate(visible, page, 25)
	rows := make([]InvoiceRow, 0, len(window))
	for _, inv := range window {
		row := InvoiceRow{
			ID:       inv.ID.String(),
			Number:   inv.Number(),
			Supplier: inv.SupplierName,
			Amount:   pricing.FormatCurrency(inv.Amount),
			Status:   inv.StatusAt(now),
		}
		if !inv.IssueDate.IsZero() {
			row.Issued = inv.IssueDate.Format("2006-01-02")
		}
		if !inv.DueDate.IsZero() {
			row.Due = inv.DueDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	h.render(w, r, "pages/procurement/invoices.html", loc.T("invoicesTitle", "procurement"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Stats":      SummarizeInvoices(result.Records, now),
		"Status":     status,
		"Statuses":   InvoiceStatuses,
		"Search":     search,
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	loc := i18n.FromContext(ctx)
	if err := h.service.DeleteInvoice(ctx, id); err != nil {
		h.logger.Error("delete supplier invoice", slog.Any("error", err), slog.String("id", id))
		shared.RedirectWithFlash(w, r, "/procurement/invoices", "error", backend.UserMessage(err, loc.T("invoiceDeleteFailed", "procurement")))
		return
	}
	if err := h.lists.Invoices.Remove(ctx, sess.ID, id); err != nil {
		h.logger.Warn("update cached invoices", slog.Any("error", err))
	}
	shared.RedirectWithFlash(w, r, "/procurement/invoices", "success", loc.T("invoiceDeleted", "procurement"))
}

// formPage describes one posted draft form.
type formPage[T form.Record[T]] struct {
	key    string
	mode   form.Mode
	action string
	what   string
	// fresh seeds a draft when none is stored; nil sends the user back to
	// reload the record first.
	fresh func() *form.Draft[T]
	send  func(context.Context, T) error
	// edit handles structural buttons and reports whether it consumed action.
	edit   func(d *form.Draft[T], action string, values url.Values) bool
	saved  func(ctx context.Context, sessionID string) error
	render func(w http.ResponseWriter, r *http.Request, d *form.Draft[T], message string, status int)
}

func submit[T form.Record[T]](h *Handler, w http.ResponseWriter, r *http.Request, p formPage[T]) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	loc := i18n.FromContext(ctx)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	release, err := h.drafts.Lock(ctx, sess.ID, p.key)
	if err != nil {
		if errors.Is(err, form.ErrSubmitInProgress) {
			shared.RedirectWithFlash(w, r, p.action, "warning", loc.T("submitInProgress", "errors"))
			return
		}
		h.logger.Error("lock "+p.what+" form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer release()

	draft, found, err := form.Load[T](ctx, h.drafts, sess.ID, p.key)
	if err != nil {
		h.logger.Error("load "+p.what+" draft", slog.Any("error", err))
	}
	if !found {
		if p.fresh == nil {
			shared.RedirectWithFlash(w, r, p.action+"?reload=1", "warning", loc.T("draftExpired", "errors"))
			return
		}
		draft = p.fresh()
	}

	raw := r.PostFormValue("action")
	if p.edit != nil && p.edit(draft, raw, r.PostForm) {
		saveDraft(ctx, h, sess.ID, p.key, draft)
		p.render(w, r, draft, "", http.StatusOK)
		return
	}

	err = form.Handle(ctx, draft, p.mode, form.ParseAction(raw), r.PostForm, p.send)
	saveDraft(ctx, h, sess.ID, p.key, draft)

	var verr *form.ValidationError
	switch {
	case err == nil && draft.State == form.StateSuccess:
		if p.saved != nil {
			_ = p.saved(ctx, sess.ID)
		}
		h.logger.Info(p.what+" saved", slog.String("form", p.key))
		p.render(w, r, draft, "", http.StatusOK)
	case err == nil:
		p.render(w, r, draft, "", http.StatusOK)
	case errors.As(err, &verr):
		p.render(w, r, draft, loc.T("fixErrors", "validation"), http.StatusUnprocessableEntity)
	case errors.Is(err, form.ErrNothingChanged):
		p.render(w, r, draft, loc.T("nothingChanged", "errors"), http.StatusOK)
	case errors.Is(err, form.ErrSubmitInProgress):
		p.render(w, r, draft, loc.T("submitInProgress", "errors"), http.StatusConflict)
	default:
		h.logger.Error("submit "+p.what, slog.Any("error", err), slog.String("form", p.key))
		p.render(w, r, draft, backend.UserMessage(err, loc.T("saveFailed", "procurement")), http.StatusBadGateway)
	}
}

func saveDraft[T form.Record[T]](ctx context.Context, h *Handler, sessionID, key string, draft *form.Draft[T]) {
	if err := form.Save(ctx, h.drafts, sessionID, key, draft); err != nil {
		h.logger.Error("save draft", slog.Any("error", err), slog.String("form", key))
	}
}

func (h *Handler) redirectLoadError(w http.ResponseWriter, r *http.Request, err error, listURL, notFoundKey, failedKey string) {
	loc := i18n.FromContext(r.Context())
	h.logger.Error("load procurement record", slog.Any("error", err), slog.String("path", r.URL.Path))
	if errors.Is(err, shared.ErrNotFound) {
		shared.RedirectWithFlash(w, r, listURL, "error", loc.T(notFoundKey, "procurement"))
		return
	}
	shared.RedirectWithFlash(w, r, listURL, "error", backend.UserMessage(err, loc.T(failedKey, "procurement")))
}

func (h *Handler) messages(loc i18n.Localizer, fallbackKey string) listview.Messages {
	return listview.Messages{
		Fallback:  loc.T(fallbackKey, "procurement"),
		Malformed: loc.T("malformedResponse", "errors"),
	}
}

func (h *Handler) withRedirect(data map[string]any, state form.State, listURL string) {
	if state != form.StateSuccess {
		return
	}
	data["RedirectURL"] = listURL
	data["RedirectSeconds"] = int(h.successDelay.Round(time.Second) / time.Second)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	if err := h.templates.Render(w, status, template, view.NewTemplateData(r, csrfToken, title, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
