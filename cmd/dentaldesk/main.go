package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dentaldesk/dentaldesk/internal/app"
	"github.com/dentaldesk/dentaldesk/internal/auth"
	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	"github.com/dentaldesk/dentaldesk/internal/dashboard"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/i18n"
	"github.com/dentaldesk/dentaldesk/internal/listview"
	"github.com/dentaldesk/dentaldesk/internal/observability"
	"github.com/dentaldesk/dentaldesk/internal/platform/cache"
	"github.com/dentaldesk/dentaldesk/internal/procurement"
	"github.com/dentaldesk/dentaldesk/internal/sales"
	"github.com/dentaldesk/dentaldesk/internal/settings"
	"github.com/dentaldesk/dentaldesk/internal/shared"
	"github.com/dentaldesk/dentaldesk/internal/view"
	"github.com/dentaldesk/dentaldesk/jobs"
	"github.com/dentaldesk/dentaldesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "dentaldesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	translator, err := i18n.New(logger, cfg.DefaultLanguage)
	if err != nil {
		logger.Error("load translations", slog.Any("error", err))
		os.Exit(1)
	}
	negotiator := i18n.NewNegotiator(translator)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	api := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.WithObserver(metrics), backend.WithLogger(logger))
	drafts := form.NewStore(redisClient, cfg.DraftTTL)
	listTTL := cfg.CollectionCacheTTL

	authHandler := auth.NewHandler(logger, auth.NewService(api), templates, sessionManager, csrfManager)

	catalogService := catalog.NewService(api, redisClient, cfg.CategoryCacheTTL, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService, templates, csrfManager, drafts,
		listview.NewCollection[catalog.Product](redisClient, "products", listTTL), cfg.SuccessRedirectDelay)

	salesService := sales.NewService(api)
	salesHandler := sales.NewHandler(logger, salesService, templates, csrfManager,
		listview.NewCollection[sales.Order](redisClient, "orders", listTTL),
		listview.NewCollection[sales.Customer](redisClient, "customers", listTTL))

	reportClient := report.NewClient(cfg.GotenbergURL, 30*time.Second)
	reportHandler := report.NewHandler(reportClient, logger)

	procurementService := procurement.NewService(api, logger)
	procurementHandler := procurement.NewHandler(logger, procurementService, templates, csrfManager, drafts, procurement.Collections{
		Suppliers: listview.NewCollection[procurement.Supplier](redisClient, "suppliers", listTTL),
		POs:       listview.NewCollection[procurement.PurchaseOrder](redisClient, "purchase-orders", listTTL),
		Invoices:  listview.NewCollection[procurement.SupplierInvoice](redisClient, "supplier-invoices", listTTL),
	}, reportClient, cfg.SuccessRedirectDelay)

	dashboardService := dashboard.NewService(dashboard.Sources{
		Products:  catalogService.ListProducts,
		Customers: salesService.ListCustomers,
		Orders:    salesService.ListOrders,
		POs:       procurementService.ListPOs,
	}, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager)

	redisOpts := cfg.Redis().AsynqOpt()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	settingsHandler := settings.NewHandler(logger, settings.NewService(api), catalogService, jobClient, translator, templates, csrfManager, cfg.IsProduction())

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Negotiator:         negotiator,
		AuthHandler:        authHandler,
		DashboardHandler:   dashboardHandler,
		CatalogHandler:     catalogHandler,
		SalesHandler:       salesHandler,
		ProcurementHandler: procurementHandler,
		SettingsHandler:    settingsHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
		Health:             cache.HealthCheck(redisClient),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
