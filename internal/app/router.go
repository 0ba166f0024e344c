package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dentaldesk/dentaldesk/internal/auth"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/dashboard"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/observability"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
	"github.com/dentaldesk/dentaldesk/internal/settings"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/jobs"
	"github.com/dentaldesk/dentaldesk/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	Negotiator         *i18n.Negotiator
	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	CatalogHandler     *catalog.Handler
	SalesHandler       *sales.Handler
	ProcurementHandler *procurement.Handler
	SettingsHandler    *settings.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
	// Health is probed by /healthz; nil reports healthy.
	Health func(context.Context) error
}

// NewRouter constructs the chi.Router with DentalDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Negotiator:     params.Negotiator,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", healthHandler(params.Health, params.Logger))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.ReportHandler != nil {
		r.Route("/reports", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		params.DashboardHandler.MountRoutes(r)
		r.Route("/products", params.CatalogHandler.MountRoutes)
		r.Route("/api", params.CatalogHandler.MountAPI)
		r.Route("/orders", params.SalesHandler.MountOrders)
		r.Route("/customers", params.SalesHandler.MountCustomers)
		r.Route("/procurement", params.ProcurementHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
	})

	if static, err := staticHandler(); err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		r.Handle("/static/*", static)
	}

	return r
}

func healthHandler(check func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(r.Context()); err != nil {
				if logger != nil {
					logger.Warn("health check failed", slog.Any("error", err))
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
