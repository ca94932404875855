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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/kabisoft/kabipos-backend/api/routes"
	"github.com/kabisoft/kabipos-backend/internal/auth"
	invoice "github.com/kabisoft/kabipos-backend/internal/invoices"
	product "github.com/kabisoft/kabipos-backend/internal/products"
	"github.com/kabisoft/kabipos-backend/internal/tenants"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/env"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
	"github.com/kabisoft/kabipos-backend/pkg/migrate"
	"github.com/kabisoft/kabipos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	authMetrics := metrics.NewAuthMetrics(registry)

	tenantRepo := tenants.NewRepository(dbClient.DB(), cfg.Password)
	tenantService, err := tenants.NewService(tenantRepo)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Tenants:     tenantRepo,
		Provisioner: tenantService,
		JWTConfig:   cfg.JWT,
		Password:    cfg.Password,
		Logger:      logg,
		Metrics:     authMetrics,
	})
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(tenantRepo, cfg.JWT, nil)
	if err != nil {
		return err
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		return err
	}

	invoiceService, err := invoice.NewService(invoice.NewRepository(dbClient.DB()), dbClient, nil)
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:         dbClient,
			Redis:      redisClient,
			RateStore:  redisClient,
			Gate:       gate,
			Auth:       authService,
			Products:   productService,
			Invoices:   invoiceService,
			Gatherer:   registry,
			HTTP:       httpMetrics,
			AuthEvents: authMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logg.Info(logCtx, "api server stopped")
	return nil
}
