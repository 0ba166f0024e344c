package sales

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

// Lister is what the handler needs from Service.
type Lister interface {
	ListOrders(ctx context.Context) ([]Order, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// Handler serves the order and customer pages.
type Handler struct {
	logger    *slog.Logger
	service   Lister
	templates *view.Engine
	csrf      *shared.CSRFManager
	orders    *listview.Collection[Order]
	customers *listview.Collection[Customer]
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Lister, templates *view.Engine, csrf *shared.CSRFManager, orders *listview.Collection[Order], customers *listview.Collection[Customer]) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, orders: orders, customers: customers}
}

// MountOrders registers /orders routes.
func (h *Handler) MountOrders(r chi.Router) {
	r.Get("/", h.handleOrders)
	r.Get("/{id}", h.showOrder)
	r.Post("/{id}/status", h.updateOrderStatus)
}

// MountCustomers registers /customers routes.
func (h *Handler) MountCustomers(r chi.Router) {
	r.Get("/", h.handleCustomers)
}

// OrderRow is the display projection of an order.
type OrderRow struct {
	ID       string
	Number   string
	Customer string
	Status   string
	Total    string
	Date     string
}

func newOrderRow(o Order) OrderRow {
	date := ""
	if !o.CreatedAt.IsZero() {
		date = o.CreatedAt.Format("2006-01-02")
	}
	return OrderRow{
		ID:       o.ID.String(),
		Number:   o.Number(),
		Customer: o.CustomerName,
		Status:   o.StatusKey(),
		Total:    pricing.FormatCurrency(o.Total),
		Date:     date,
	}
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	status := listview.NormalizeStatus(query.Get("status"), OrderStatuses)
	search := query.Get("q")
	page, _ := strconv.Atoi(query.Get("page"))

	result := listview.Load(r.Context(), func(ctx context.Context) ([]Order, error) {
		return h.orders.Fetch(ctx, sess.ID, query.Get("refresh") == "1", h.service.ListOrders)
	}, listview.Messages{
		Fallback:  loc.T("loadFailed", "orders"),
		Malformed: loc.T("malformedResponse", "errors"),
	})
	if result.State == listview.StateError {
		h.logger.Warn("list orders", slog.String("detail", result.Detail))
	}

	visible := listview.Filter(result.Records, status)
	visible = listview.Search(visible, search, func(o Order) []string {
		return []string{o.Number(), o.CustomerName, o.CustomerEmail}
	})
	visible = listview.SortBy(visible, func(o Order) int64 { return o.CreatedAt.Unix() }, true)
	window, pagination := listview.Paginate(visible, page, 25)
	rows := make([]OrderRow, 0, len(window))
	for _, o := range window {
		rows = append(rows, newOrderRow(o))
	}

	h.render(w, r, "pages/orders/list.html", loc.T("title", "orders"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Stats":      SummarizeOrders(result.Records),
		"Status":     status,
		"Statuses":   OrderStatuses,
		"Search":     search,
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	loc := i18n.FromContext(ctx)
	sess := shared.SessionFromContext(ctx)

	order, ok, err := h.orders.Find(ctx, sess.ID, id)
	if err == nil && !ok {
		_, err = h.orders.Fetch(ctx, sess.ID, true, h.service.ListOrders)
		if err == nil {
			order, ok, err = h.orders.Find(ctx, sess.ID, id)
		}
	}
	if err != nil {
		h.logger.Error("load order", slog.Any("error", err), slog.String("id", id))
		shared.RedirectWithFlash(w, r, "/orders", "error", loc.T("loadFailed", "orders"))
		return
	}
	if !ok {
		shared.RedirectWithFlash(w, r, "/orders", "error", loc.T("notFound", "orders"))
		return
	}
	h.render(w, r, "pages/orders/detail.html", loc.T("detailTitle", "orders"), map[string]any{
		"Order":    order,
		"Row":      newOrderRow(order),
		"Statuses": OrderStatuses[1:],
	}, http.StatusOK)
}

// updateOrderStatus has no backend endpoint yet; it reports that instead of
// pretending the change went through.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	loc := i18n.FromContext(r.Context())
	h.logger.Info("order status update requested", slog.String("id", id), slog.Any("error", shared.ErrNotImplemented))
	shared.RedirectWithFlash(w, r, "/orders/"+id, "warning", loc.T("notImplemented", "errors"))
}

// CustomerRow is the display projection of a customer.
type CustomerRow struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	OrdersCount int
	TotalSpent  string
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	search := query.Get("q")
	page, _ := strconv.Atoi(query.Get("page"))

	result := listview.Load(r.Context(), func(ctx context.Context) ([]Customer, error) {
		return h.customers.Fetch(ctx, sess.ID, query.Get("refresh") == "1", h.service.ListCustomers)
	}, listview.Messages{
		Fallback:  loc.T("loadFailed", "customers"),
		Malformed: loc.T("malformedResponse", "errors"),
	})
	if result.State == listview.StateError {
		h.logger.Warn("list customers", slog.String("detail", result.Detail))
	}

	visible := listview.Search(result.Records, search, func(c Customer) []string {
		return []string{c.Name, c.Email, c.Phone}
	})
	visible = listview.SortBy(visible, func(c Customer) string { return strings.ToLower(c.Name) }, false)
	window, pagination := listview.Paginate(visible, page, 25)
	rows := make([]CustomerRow, 0, len(window))
	for _, c := range window {
		rows = append(rows, CustomerRow{
			ID:          c.ID.String(),
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			OrdersCount: c.OrdersCount,
			TotalSpent:  pricing.FormatCurrency(c.TotalSpent),
		})
	}

	h.render(w, r, "pages/customers/list.html", loc.T("title", "customers"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Stats":      SummarizeCustomers(result.Records),
		"Search":     search,
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	if err := h.templates.Render(w, status, template, view.NewTemplateData(r, csrfToken, title, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
