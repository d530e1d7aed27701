package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/api/routes"
	approvalsvc "github.com/aurumworks/jewelpos-backend/internal/approval"
	authsvc "github.com/aurumworks/jewelpos-backend/internal/auth"
	billingsvc "github.com/aurumworks/jewelpos-backend/internal/billing"
	customersvc "github.com/aurumworks/jewelpos-backend/internal/customers"
	invoicesvc "github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/internal/printing"
	productsvc "github.com/aurumworks/jewelpos-backend/internal/products"
	returnsvc "github.com/aurumworks/jewelpos-backend/internal/returns"
	stocksvc "github.com/aurumworks/jewelpos-backend/internal/stock"
	storesvc "github.com/aurumworks/jewelpos-backend/internal/stores"
	"github.com/aurumworks/jewelpos-backend/internal/users"
	"github.com/aurumworks/jewelpos-backend/pkg/auth/session"
	"github.com/aurumworks/jewelpos-backend/pkg/config"
	"github.com/aurumworks/jewelpos-backend/pkg/db"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	"github.com/aurumworks/jewelpos-backend/pkg/metrics"
	"github.com/aurumworks/jewelpos-backend/pkg/migrate"
	redisclient "github.com/aurumworks/jewelpos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(registry)

	gormDB := dbClient.DB()
	productRepo := productsvc.NewRepository(gormDB)
	customerRepo := customersvc.NewRepository(gormDB)
	approvalRepo := approvalsvc.NewRepository(gormDB)
	invoiceRepo := invoicesvc.NewRepository(gormDB)
	returnRepo := returnsvc.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	storeRepo := storesvc.NewRepository(gormDB)

	productService, err := productsvc.NewService(productRepo)
	exitOnErr(ctx, logg, "product service", err)
	customerService, err := customersvc.NewService(customerRepo)
	exitOnErr(ctx, logg, "customer service", err)
	approvalService, err := approvalsvc.NewService(approvalRepo, logg, billingMetrics)
	exitOnErr(ctx, logg, "approval service", err)
	storeService, err := storesvc.NewService(storeRepo)
	exitOnErr(ctx, logg, "store service", err)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	exitOnErr(ctx, logg, "auth service", err)

	tabRegistry := billingsvc.NewRegistry()
	rules := billingsvc.Rules{
		ApprovalThreshold:  decimal.NewFromFloat(cfg.Billing.DiscountApprovalThreshold),
		WalkInCustomerName: cfg.Billing.WalkInCustomerName,
	}
	billingService, err := billingsvc.NewService(tabRegistry, productService, customerService, rules, logg)
	exitOnErr(ctx, logg, "billing service", err)

	hub, err := stocksvc.NewHub(stocksvc.HubParams{
		Source:  redisClient,
		Sink:    redisClient,
		Channel: cfg.Stock.Channel,
		Logger:  logg,
	})
	exitOnErr(ctx, logg, "stock hub", err)

	reconciler, err := stocksvc.NewReconciler(stocksvc.ReconcilerParams{
		Hub:      hub,
		Source:   productRepo,
		Registry: tabRegistry,
		Logger:   logg,
		Metrics:  billingMetrics,
	})
	exitOnErr(ctx, logg, "stock reconciler", err)

	invoiceService, err := invoicesvc.NewService(invoicesvc.ServiceParams{
		Registry:     tabRegistry,
		Approvals:    approvalService,
		Repo:         invoiceRepo,
		DB:           dbClient,
		Stock:        productRepo,
		Publisher:    hub,
		Logger:       logg,
		Metrics:      billingMetrics,
		PollInterval: cfg.Billing.ApprovalPollInterval,
	})
	exitOnErr(ctx, logg, "invoice service", err)

	returnService, err := returnsvc.NewService(returnsvc.ServiceParams{
		Repo:      returnRepo,
		Bills:     invoiceService,
		BillsRepo: invoiceRepo,
		DB:        dbClient,
		Stock:     productRepo,
		Publisher: hub,
		Logger:    logg,
	})
	exitOnErr(ctx, logg, "return service", err)

	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "stock hub stopped", err)
		}
	}()
	go func() {
		if err := reconciler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "stock reconciler stopped", err)
		}
	}()

	handler := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessionManager,
		Gatherer:  registry,
		Auth:      authService,
		Billing:   billingService,
		Invoices:  invoiceService,
		Products:  productService,
		Customers: customerService,
		Approvals: approvalService,
		Returns:   returnService,
		Stores:    storeService,
		Users:     userRepo,
		Hub:       hub,
		Renderer:  printing.NewTextRenderer(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server shut down")
}

func exitOnErr(ctx context.Context, logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+what, err)
	os.Exit(1)
}
