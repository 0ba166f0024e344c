package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/platform/httpx"
	"github.com/dentaldesk/dentaldesk/internal/pricing"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
)

const newProductKey = "product:new"

// ProductService is what the handler needs from Service.
type ProductService interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, draft ProductDraft) error
	UpdateProduct(ctx context.Context, id string, draft ProductDraft) error
	DeleteProduct(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]Category, error)
}

// Handler serves the product pages.
type Handler struct {
	logger       *slog.Logger
	service      ProductService
	templates    *view.Engine
	csrf         *shared.CSRFManager
	drafts       *form.Store
	products     *listview.Collection[Product]
	successDelay time.Duration
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service ProductService, templates *view.Engine, csrf *shared.CSRFManager, drafts *form.Store, products *listview.Collection[Product], successDelay time.Duration) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		templates:    templates,
		csrf:         csrf,
		drafts:       drafts,
		products:     products,
		successDelay: successDelay,
	}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/add", h.showAdd)
	r.Post("/add", h.handleAdd)
	r.Get("/edit/{id}", h.showEdit)
	r.Post("/edit/{id}", h.handleEdit)
	r.Post("/{id}/delete", h.handleDelete)
}

// MountAPI registers the JSON pricing preview.
func (h *Handler) MountAPI(r chi.Router) {
	r.Post("/pricing/preview", h.handlePricingPreview)
	r.Post("/pricing/line", h.handleLinePreview)
}

// ProductRow is the display projection of a product.
type ProductRow struct {
	ID       string
	Name     string
	SKU      string
	Category string
	Price    string
	Final    string
	Stock    int64
	InStock  bool
	Status   string
}

func newProductRow(p Product) ProductRow {
	effective := pricing.EffectivePrice(p.Price, p.DiscountPrice)
	return ProductRow{
		ID:       p.ID.String(),
		Name:     p.Name,
		SKU:      p.SKU,
		Category: p.Category,
		Price:    pricing.FormatCurrency(p.Price),
		Final:    pricing.FormatCurrency(pricing.FinalPrice(effective, p.TaxRate)),
		Stock:    p.Stock,
		InStock:  p.InStock(),
		Status:   p.StatusKey(),
	}
}

// ProductStats feeds the stat cards above the grid.
type ProductStats struct {
	Total        int
	InStock      int
	OutOfStock   int
	AveragePrice string
}

// SummarizeProducts computes the cards over the unfiltered list.
func SummarizeProducts(products []Product) ProductStats {
	base := listview.Summarize(products, func(p Product) decimal.Decimal { return p.Price })
	stats := ProductStats{Total: base.Total, AveragePrice: pricing.FormatCurrency(base.Average)}
	for _, p := range products {
		if p.InStock() {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
	}
	return stats
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	query := r.URL.Query()
	refresh := query.Get("refresh") == "1"
	status := listview.NormalizeStatus(query.Get("status"), ProductStatuses)
	search := query.Get("q")
	sortKey := query.Get("sort")
	desc := query.Get("dir") == "desc"
	page, _ := strconv.Atoi(query.Get("page"))

	result := listview.Load(r.Context(), func(ctx context.Context) ([]Product, error) {
		return h.products.Fetch(ctx, sess.ID, refresh, h.service.ListProducts)
	}, listview.Messages{
		Fallback:  loc.T("loadFailed", "products"),
		Malformed: loc.T("malformedResponse", "errors"),
	})
	if result.State == listview.StateError {
		h.logger.Warn("list products", slog.String("detail", result.Detail))
	}

	stats := SummarizeProducts(result.Records)
	visible := listview.Filter(result.Records, status)
	visible = listview.Search(visible, search, func(p Product) []string {
		return []string{p.Name, p.SKU, p.Category}
	})
	visible = sortProducts(visible, sortKey, desc)
	window, pagination := listview.Paginate(visible, page, 20)

	rows := make([]ProductRow, 0, len(window))
	for _, p := range window {
		rows = append(rows, newProductRow(p))
	}
	h.render(w, r, "pages/products/list.html", loc.T("title", "products"), map[string]any{
		"Result":     result,
		"Rows":       rows,
		"Stats":      stats,
		"Status":     status,
		"Statuses":   ProductStatuses,
		"Search":     search,
		"Sort":       sortKey,
		"Desc":       desc,
		"Pagination": pagination,
	}, http.StatusOK)
}

func sortProducts(products []Product, key string, desc bool) []Product {
	switch key {
	case "price":
		return listview.SortBy(products, func(p Product) float64 { return p.Price.InexactFloat64() }, desc)
	case "stock":
		return listview.SortBy(products, func(p Product) int64 { return p.Stock }, desc)
	case "name":
		return listview.SortBy(products, func(p Product) string { return strings.ToLower(p.Name) }, desc)
	default:
		return products
	}
}

func (h *Handler) showAdd(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	draft, found, err := form.Load[ProductDraft](r.Context(), h.drafts, sess.ID, newProductKey)
	if err != nil {
		h.logger.Error("load product draft", slog.Any("error", err))
	}
	if !found || draft.State == form.StateSuccess {
		draft = form.New[ProductDraft]()
		draft.Load(NewProductDraft())
		h.saveDraft(r.Context(), sess.ID, newProductKey, draft)
	}
	h.renderForm(w, r, form.ModeCreate, "/products/add", draft, "", http.StatusOK)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, form.ModeCreate, newProductKey, "/products/add", func(ctx context.Context, d ProductDraft) error {
		return h.service.CreateProduct(ctx, d)
	}, func() *form.Draft[ProductDraft] {
		d := form.New[ProductDraft]()
		d.Load(NewProductDraft())
		return d
	})
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := "product:" + id
	sess := shared.SessionFromContext(r.Context())
	loc := i18n.FromContext(r.Context())

	draft, found, err := form.Load[ProductDraft](r.Context(), h.drafts, sess.ID, key)
	if err != nil {
		h.logger.Error("load product draft", slog.Any("error", err))
	}
	if !found || r.URL.Query().Get("reload") == "1" || draft.State == form.StateSuccess {
		product, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			h.logger.Error("get product", slog.Any("error", err), slog.String("id", id))
			if errors.Is(err, shared.ErrNotFound) {
				shared.RedirectWithFlash(w, r, "/products", "error", loc.T("notFound", "products"))
				return
			}
			shared.RedirectWithFlash(w, r, "/products", "error", backend.UserMessage(err, loc.T("loadFailed", "products")))
			return
		}
		draft = form.New[ProductDraft]()
		draft.Load(DraftFromProduct(product))
		h.saveDraft(r.Context(), sess.ID, key, draft)
	}
	h.renderForm(w, r, form.ModeEdit, "/products/edit/"+id, draft, "", http.StatusOK)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.handleSubmit(w, r, form.ModeEdit, "product:"+id, "/products/edit/"+id, func(ctx context.Context, d ProductDraft) error {
		return h.service.UpdateProduct(ctx, id, d)
	}, nil)
}

// handleSubmit drives one posted product form. fresh seeds a draft when none
// is stored; nil means the page must be reloaded from the backend first.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request, mode form.Mode, key, action string, send func(context.Context, ProductDraft) error, fresh func() *form.Draft[ProductDraft]) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	loc := i18n.FromContext(ctx)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	release, err := h.drafts.Lock(ctx, sess.ID, key)
	if err != nil {
		if errors.Is(err, form.ErrSubmitInProgress) {
			shared.RedirectWithFlash(w, r, action, "warning", loc.T("submitInProgress", "errors"))
			return
		}
		h.logger.Error("lock product form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer release()

	draft, found, err := form.Load[ProductDraft](ctx, h.drafts, sess.ID, key)
	if err != nil {
		h.logger.Error("load product draft", slog.Any("error", err))
	}
	if !found {
		if fresh == nil {
			shared.RedirectWithFlash(w, r, action+"?reload=1", "warning", loc.T("draftExpired", "errors"))
			return
		}
		draft = fresh()
	}

	err = form.Handle(ctx, draft, mode, form.ParseAction(r.PostFormValue("action")), r.PostForm, send)
	h.saveDraft(ctx, sess.ID, key, draft)

	var verr *form.ValidationError
	switch {
	case err == nil && draft.State == form.StateSuccess:
		_ = h.products.Invalidate(ctx, sess.ID)
		h.logger.Info("product saved", slog.String("form", key))
		h.renderForm(w, r, mode, action, draft, "", http.StatusOK)
	case err == nil:
		h.renderForm(w, r, mode, action, draft, "", http.StatusOK)
	case errors.As(err, &verr):
		h.renderForm(w, r, mode, action, draft, loc.T("fixErrors", "validation"), http.StatusUnprocessableEntity)
	case errors.Is(err, form.ErrNothingChanged):
		h.renderForm(w, r, mode, action, draft, loc.T("nothingChanged", "errors"), http.StatusOK)
	case errors.Is(err, form.ErrSubmitInProgress):
		h.renderForm(w, r, mode, action, draft, loc.T("submitInProgress", "errors"), http.StatusConflict)
	default:
		h.logger.Error("submit product", slog.Any("error", err), slog.String("form", key))
		h.renderForm(w, r, mode, action, draft, backend.UserMessage(err, loc.T("saveFailed", "products")), http.StatusBadGateway)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	loc := i18n.FromContext(ctx)
	if err := h.service.DeleteProduct(ctx, id); err != nil {
		h.logger.Error("delete product", slog.Any("error", err), slog.String("id", id))
		shared.RedirectWithFlash(w, r, "/products", "error", backend.UserMessage(err, loc.T("deleteFailed", "products")))
		return
	}
	if err := h.products.Remove(ctx, sess.ID, id); err != nil {
		h.logger.Warn("update cached products", slog.Any("error", err))
	}
	_ = h.drafts.Discard(ctx, sess.ID, "product:"+id)
	shared.RedirectWithFlash(w, r, "/products", "success", loc.T("deleted", "products"))
}

type pricingRequest struct {
	Price           string `json:"price"`
	DiscountPercent string `json:"discountPercent"`
	DiscountPrice   string `json:"discountPrice"`
	TaxRate         string `json:"taxRate"`
}

func (h *Handler) handlePricingPreview(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	draft := NewProductDraft()
	fields := map[string]string{
		"price":           req.Price,
		"discountPercent": req.DiscountPercent,
		"discountPrice":   req.DiscountPrice,
		"taxRate":         req.TaxRate,
	}
	errs := form.FieldErrors{}
	for name, value := range fields {
		next, err := draft.WithField(name, value)
		if err != nil {
			errs[name] = "invalid"
			continue
		}
		draft = next
	}
	if len(errs) > 0 {
		httpx.RespondError(w, &form.ValidationError{Fields: errs})
		return
	}
	httpx.JSON(w, http.StatusOK, draft.Pricing())
}

type lineRequest struct {
	Lines []pricing.Line `json:"lines"`
}

type lineResponse struct {
	Lines  []pricing.Line      `json:"lines"`
	Totals pricing.OrderTotals `json:"totals"`
}

// handleLinePreview recomputes order lines as the purchase order editor types.
func (h *Handler) handleLinePreview(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	errs := form.FieldErrors{}
	for i, line := range req.Lines {
		if line.Quantity.IsNegative() {
			errs["lines."+strconv.Itoa(i)+".quantity"] = "min"
		}
		if line.UnitPrice.IsNegative() {
			errs["lines."+strconv.Itoa(i)+".unitPrice"] = "min"
		}
		req.Lines[i] = line.Recompute()
	}
	if len(errs) > 0 {
		httpx.RespondError(w, &form.ValidationError{Fields: errs})
		return
	}
	if req.Lines == nil {
		req.Lines = []pricing.Line{}
	}
	httpx.JSON(w, http.StatusOK, lineResponse{Lines: req.Lines, Totals: pricing.Totals(req.Lines)})
}

func (h *Handler) saveDraft(ctx context.Context, sessionID, key string, draft *form.Draft[ProductDraft]) {
	if err := form.Save(ctx, h.drafts, sessionID, key, draft); err != nil {
		h.logger.Error("save product draft", slog.Any("error", err))
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, mode form.Mode, action string, draft *form.Draft[ProductDraft], message string, status int) {
	loc := i18n.FromContext(r.Context())
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Warn("load categories", slog.Any("error", err))
	}
	sess := shared.SessionFromContext(r.Context())
	options := EnabledNames(MergeToggles(categories, SavedToggles(sess)))
	if current := draft.Current.Category; current != "" && !slices.Contains(options, current) {
		options = append(options, current)
	}

	title := loc.T("addTitle", "products")
	if mode == form.ModeEdit {
		title = loc.T("editTitle", "products")
	}
	data := map[string]any{
		"Mode":       mode,
		"Edit":       mode == form.ModeEdit,
		"Action":     action,
		"Draft":      draft.Current,
		"Errors":     draft.Errors,
		"Dirty":      draft.Dirty(),
		"State":      draft.State,
		"Pricing":    draft.Current.Pricing(),
		"Categories": options,
		"Statuses":   []string{StatusActive, StatusInactive},
		"Message":    message,
	}
	if draft.State == form.StateSuccess {
		data["RedirectURL"] = "/products"
		data["RedirectSeconds"] = int(h.successDelay.Round(time.Second) / time.Second)
	}
	h.render(w, r, "pages/products/form.html", title, data, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	if err := h.templates.Render(w, status, template, view.NewTemplateData(r, csrfToken, title, data)); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
