package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealerdesk/dealerdesk/internal/app"
	"github.com/dealerdesk/dealerdesk/internal/catalog"
	"github.com/dealerdesk/dealerdesk/internal/customers"
	"github.com/dealerdesk/dealerdesk/internal/inventory"
	"github.com/dealerdesk/dealerdesk/internal/ledger"
	"github.com/dealerdesk/dealerdesk/internal/orders"
	"github.com/dealerdesk/dealerdesk/internal/platform/cache"
	"github.com/dealerdesk/dealerdesk/internal/platform/db"
	"github.com/dealerdesk/dealerdesk/internal/reports"
)

func main() {
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
		logger.Warn("redis unavailable, settlement locks are process-local", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	catalogStore := catalog.NewStore(catalog.NewRepository(pool), logger)
	if err := catalogStore.Initialize(ctx); err != nil {
		logger.Error("initialize catalog", slog.Any("error", err))
		os.Exit(1)
	}

	customerService := customers.NewService(customers.NewRepository(pool), logger)
	if err := customerService.Initialize(ctx); err != nil {
		logger.Error("initialize customers", slog.Any("error", err))
		os.Exit(1)
	}

	inventoryService := inventory.NewService(inventory.NewRepository(pool), logger)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), logger)

	var locker orders.DistributedLocker
	if redisClient != nil {
		locker = cache.NewLocker(redisClient, cfg.SettleLockTTL)
	}
	orderService := orders.NewService(
		orders.NewRepository(pool),
		inventoryService,
		catalogStore,
		customerService,
		ledgerService,
		locker,
		logger,
	)

	reportService := reports.NewService(ledgerService, inventoryService, customerService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, catalogStore),
		CustomerHandler:  customers.NewHandler(logger, customerService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		OrderHandler:     orders.NewHandler(logger, orderService),
		LedgerHandler:    ledger.NewHandler(logger, ledgerService),
		ReportHandler:    reports.NewHandler(logger, reportService),
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
