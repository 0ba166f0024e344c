package dashboard

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/charts/svg"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

// chartMonths is how far back the monthly charts reach.
const chartMonths = 6

// Handler serves the dashboard.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers the dashboard at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleDashboard)
}

// Card is one stat tile. A card with Error set renders the message in place
// of its value.
type Card struct {
	Key    string
	Label  string
	Value  string
	Detail string
	Error  string
}

// Chart is a rendered chart or the reason it is missing.
type Chart struct {
	Key   string
	Title string
	SVG   template.HTML
	Empty string
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	snap := h.service.Load(r.Context())
	fail := func(err error) string {
		return backend.UserMessage(err, loc.T("cardFailed", "dashboard"))
	}

	cards := []Card{productsCard(snap, loc, fail), customersCard(snap, loc, fail), ordersCard(snap, loc, fail), purchasesCard(snap, loc, fail)}
	charts := h.charts(snap, loc)

	h.render(w, r, "pages/dashboard.html", loc.T("title", "dashboard"), map[string]any{
		"Cards":    cards,
		"Charts":   charts,
		"LoadedAt": snap.LoadedAt,
	}, http.StatusOK)
}

func productsCard(snap Snapshot, loc i18n.Localizer, fail func(error) string) Card {
	c := Card{Key: "products", Label: loc.T("products", "dashboard")}
	if snap.ProductsErr != nil {
		c.Error = fail(snap.ProductsErr)
		return c
	}
	out := 0
	for _, p := range snap.Products {
		if !p.InStock() {
			out++
		}
	}
	c.Value = strconv.Itoa(len(snap.Products))
	c.Detail = loc.T("outOfStock", "dashboard") + ": " + strconv.Itoa(out)
	return c
}

func customersCard(snap Snapshot, loc i18n.Localizer, fail func(error) string) Card {
	c := Card{Key: "customers", Label: loc.T("customers", "dashboard")}
	if snap.CustomersErr != nil {
		c.Error = fail(snap.CustomersErr)
		return c
	}
	stats := sales.SummarizeCustomers(snap.Customers)
	c.Value = strconv.Itoa(stats.Total)
	c.Detail = loc.T("withOrders", "dashboard") + ": " + strconv.Itoa(stats.WithOrders)
	return c
}

func ordersCard(snap Snapshot, loc i18n.Localizer, fail func(error) string) Card {
	c := Card{Key: "orders", Label: loc.T("orders", "dashboard")}
	if snap.OrdersErr != nil {
		c.Error = fail(snap.OrdersErr)
		return c
	}
	stats := sales.SummarizeOrders(snap.Orders)
	c.Value = strconv.Itoa(stats.Total)
	c.Detail = loc.T("revenue", "dashboard") + ": " + stats.Revenue
	return c
}

func purchasesCard(snap Snapshot, loc i18n.Localizer, fail func(error) string) Card {
	c := Card{Key: "purchase-orders", Label: loc.T("purchaseOrders", "dashboard")}
	if snap.POsErr != nil {
		c.Error = fail(snap.POsErr)
		return c
	}
	stats := procurement.SummarizePOs(snap.POs)
	c.Value = strconv.Itoa(stats.Total)
	c.Detail = loc.T("purchaseValue", "dashboard") + ": " + stats.TotalValue
	return c
}

func (h *Handler) charts(snap Snapshot, loc i18n.Localizer) []Chart {
	money := func(v float64) string { return pricing.FormatCurrency(decimal.NewFromFloat(v).Round(0)) }
	var out []Chart

	revenue := Chart{Key: "revenue", Title: loc.T("revenueChart", "dashboard")}
	if snap.OrdersErr != nil {
		revenue.Empty = loc.T("chartUnavailable", "dashboard")
	} else {
		s := RevenueByMonth(snap.Orders, snap.LoadedAt, chartMonths)
		revenue.SVG = h.chart("revenue", func() (template.HTML, error) {
			return svg.Line(svg.DefaultWidth, svg.DefaultHeight, s.Values, s.Labels, svg.LineOpts{
				Title: revenue.Title, ShowDots: true, TickFormat: money,
			})
		})
	}
	out = append(out, revenue)

	status := Chart{Key: "order-status", Title: loc.T("statusChart", "dashboard")}
	switch {
	case snap.OrdersErr != nil:
		status.Empty = loc.T("chartUnavailable", "dashboard")
	case len(snap.Orders) == 0:
		status.Empty = loc.T("noOrders", "dashboard")
	default:
		slices := OrdersByStatus(snap.Orders, func(key string) string { return loc.T(key, "orders") })
		status.SVG = h.chart("order-status", func() (template.HTML, error) {
			return svg.Pie(svg.DefaultHeight, svg.DefaultHeight, slices, svg.PieOpts{Title: status.Title, Donut: 0.55, Legend: true})
		})
	}
	out = append(out, status)

	flow := Chart{Key: "sales-purchases", Title: loc.T("flowChart", "dashboard")}
	if snap.OrdersErr != nil || snap.POsErr != nil {
		flow.Empty = loc.T("chartUnavailable", "dashboard")
	} else {
		sold := RevenueByMonth(snap.Orders, snap.LoadedAt, chartMonths)
		bought := PurchasesByMonth(snap.POs, snap.LoadedAt, chartMonths)
		flow.SVG = h.chart("sales-purchases", func() (template.HTML, error) {
			return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, sold.Values, bought.Values, sold.Labels, svg.BarOpts{
				Title:        flow.Title,
				SeriesALabel: loc.T("sales", "dashboard"),
				SeriesBLabel: loc.T("purchases", "dashboard"),
				TickFormat:   money,
			})
		})
	}
	out = append(out, flow)
	return out
}

// chart renders one chart; a renderer error leaves the slot blank.
func (h *Handler) chart(name string, render func() (template.HTML, error)) template.HTML {
	html, err := render()
	if err != nil {
		h.logger.Warn("render chart", slog.String("chart", name), slog.Any("error", err))
		return ""
	}
	return html
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	if err := h.templates.Render(w, status, template, view.NewTemplateData(r, csrfToken, title, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
