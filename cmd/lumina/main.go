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

	"github.com/lumina-spa/lumina/internal/app"
	"github.com/lumina-spa/lumina/internal/appointments"
	"github.com/lumina-spa/lumina/internal/audit"
	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/catalog"
	"github.com/lumina-spa/lumina/internal/clients"
	"github.com/lumina-spa/lumina/internal/dashboard"
	"github.com/lumina-spa/lumina/internal/documents"
	"github.com/lumina-spa/lumina/internal/identity"
	"github.com/lumina-spa/lumina/internal/observability"
	"github.com/lumina-spa/lumina/internal/payments"
	"github.com/lumina-spa/lumina/internal/platform/cache"
	"github.com/lumina-spa/lumina/internal/platform/db"
	"github.com/lumina-spa/lumina/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	metrics := observability.NewMetrics()
	registry := authz.NewRegistry()

	tokens := identity.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	revocations := identity.NewRevocationList(redisClient)
	identityRepo := identity.NewRepository(pool)
	identityService := identity.NewService(identityRepo, tokens, revocations, logger)
	identityHandler := identity.NewHandler(logger, identityService)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, logger, metrics)
	auditHandler := audit.NewHandler(logger, auditService)

	guard := &authz.Guard{
		Registry: registry,
		Identity: identityService,
		Audit:    auditService,
		Logger:   logger,
	}

	reminderClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := reminderClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	appointmentsRepo := appointments.NewRepository(pool)
	appointmentsService := appointments.NewService(appointmentsRepo, reminderClient, logger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, catalogService)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	documentsRepo := documents.NewRepository(pool)
	documentsHandler := documents.NewHandler(logger, documentsRepo)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Guard:               guard,
		PermissionsHandler:  authz.NewPermissionsHandler(registry),
		IdentityHandler:     identityHandler,
		ClientsHandler:      clientsHandler,
		AppointmentsHandler: appointmentsHandler,
		PaymentsHandler:     paymentsHandler,
		CatalogHandler:      catalogHandler,
		DocumentsHandler:    documentsHandler,
		AuditHandler:        auditHandler,
		DashboardHandler:    dashboardHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
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
