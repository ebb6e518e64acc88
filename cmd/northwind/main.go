package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/northwind-admin/northwind-admin/internal/app"
	"github.com/northwind-admin/northwind-admin/internal/auth"
	"github.com/northwind-admin/northwind-admin/internal/catalog/categories"
	"github.com/northwind-admin/northwind-admin/internal/catalog/products"
	"github.com/northwind-admin/northwind-admin/internal/catalog/suppliers"
	"github.com/northwind-admin/northwind-admin/internal/catalogapi"
	"github.com/northwind-admin/northwind-admin/internal/dashboard"
	"github.com/northwind-admin/northwind-admin/internal/observability"
	"github.com/northwind-admin/northwind-admin/internal/platform/cache"
	"github.com/northwind-admin/northwind-admin/internal/platform/db"
	"github.com/northwind-admin/northwind-admin/internal/shared"
	"github.com/northwind-admin/northwind-admin/internal/view"
	"github.com/northwind-admin/northwind-admin/jobs"
	"github.com/northwind-admin/northwind-admin/report"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "northwind_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
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

	productsService := products.NewService(products.NewRepository(dbpool), jobClient, logger)
	categoriesService := categories.NewService(categories.NewRepository(dbpool))
	suppliersService := suppliers.NewService(suppliers.NewRepository(dbpool))

	apiToken := cfg.CatalogAPIToken
	if apiToken == "" {
		apiToken = cfg.APIKey
	}
	catalogClient := catalogapi.NewClient(cfg.CatalogAPIURL, cfg.CatalogAPITimeout, catalogapi.WithToken(apiToken))

	pdfClient := report.NewClient(cfg.GotenbergURL)
	priceList, err := report.NewPriceList(pdfClient)
	if err != nil {
		logger.Error("init price list", slog.Any("error", err))
		os.Exit(1)
	}

	authService := auth.NewService(auth.NewRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, authService, templates, sessionManager, csrfManager),
		DashboardHandler: dashboard.NewHandler(logger, catalogClient, templates, csrfManager, priceList),
		ProductsAPI:      products.NewHandler(logger, productsService),
		CategoriesAPI:    categories.NewHandler(logger, categoriesService),
		SuppliersAPI:     suppliers.NewHandler(logger, suppliersService),
		ReportHandler:    report.NewHandler(pdfClient, logger),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
