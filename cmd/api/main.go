package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gabrielasoto/aurelia-backend/api/routes"
	authsvc "github.com/gabrielasoto/aurelia-backend/internal/auth"
	"github.com/gabrielasoto/aurelia-backend/internal/cart"
	"github.com/gabrielasoto/aurelia-backend/internal/catalog"
	checkoutsvc "github.com/gabrielasoto/aurelia-backend/internal/checkout"
	couponsvc "github.com/gabrielasoto/aurelia-backend/internal/coupon"
	"github.com/gabrielasoto/aurelia-backend/internal/session"
	"github.com/gabrielasoto/aurelia-backend/pkg/config"
	"github.com/gabrielasoto/aurelia-backend/pkg/httpx"
	"github.com/gabrielasoto/aurelia-backend/pkg/logger"
	"github.com/gabrielasoto/aurelia-backend/pkg/metrics"
	"github.com/gabrielasoto/aurelia-backend/pkg/redis"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionStore, err := session.NewStore(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	upstreamHTTP := httpx.NewClient(cfg.Upstream.Timeout)

	catalogClient, err := catalog.NewClient(cfg.Upstream.CatalogBaseURL, upstreamHTTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}
	couponClient, err := couponsvc.NewClient(cfg.Upstream.CouponBaseURL, upstreamHTTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon client", err)
		os.Exit(1)
	}
	orderClient, err := checkoutsvc.NewOrderClient(cfg.Upstream.OrderBaseURL, upstreamHTTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create order client", err)
		os.Exit(1)
	}
	authClient, err := authsvc.NewClient(cfg.Upstream.AuthBaseURL, upstreamHTTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth client", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStorefrontMetrics(promRegistry)

	carts := cart.NewRegistry()

	couponService, err := couponsvc.NewService(couponClient, storeMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:          carts,
		Discounts:      couponService,
		Orders:         orderClient,
		Idempotency:    redisClient,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
		Metrics:        storeMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Upstream:  authClient,
		Sessions:  sessionStore,
		Carts:     carts,
		Discounts: couponService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:       cfg,
		Logger:       logg,
		Redis:        redisClient,
		Sessions:     sessionStore,
		Auth:         authService,
		Carts:        carts,
		Catalog:      catalogClient,
		Coupons:      couponService,
		Checkout:     checkoutService,
		PromGatherer: promRegistry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "server stopped", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
