// Command server runs the honeypot storefront API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"honeyshop/internal/activity"
	"honeyshop/internal/cart"
	"honeyshop/internal/order"
	"honeyshop/internal/platform/config"
	"honeyshop/internal/platform/httpserver"
	"honeyshop/internal/platform/logger"
	"honeyshop/internal/platform/metrics"
	"honeyshop/internal/platform/middleware"
	"honeyshop/internal/platform/postgres"
	"honeyshop/internal/platform/redis"
	"honeyshop/internal/product"
	httptransport "honeyshop/internal/transport/http"
	"honeyshop/internal/user"
	"honeyshop/internal/user/lockout"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run wires dependencies and drives the server lifecycle. Business logic
// lives in the internal service packages.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		return err
	}

	log := logger.New(cfg.LogLevel)

	act, err := activity.New(cfg.LogsDir, log)
	if err != nil {
		log.Error("activity logger init failed", "error", err)
		return err
	}
	defer act.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres and redis when configured, in-memory otherwise so
	// the honeypot can run self-contained.
	database := "memory"
	var (
		userStore    user.Store      = user.NewMemoryStore()
		productStore product.Store   = product.NewMemoryStore()
		cartStore    cart.Store      = cart.NewMemoryStore()
		orderStore   order.Store     = order.NewMemoryStore()
		tracker      lockout.Tracker = lockout.NewMemoryTracker()
	)
	guestCarts := cartStore

	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			act.Record(activity.TypeSystemError, activity.Details{
				"event": "DATABASE_ERROR",
				"error": err.Error(),
			}, activity.SystemRequest("/system/error"))
			return err
		}
		defer db.Close()

		database = "PostgreSQL"
		userStore = user.NewPostgresStore(db)
		productStore = product.NewPostgresStore(db)
		cartStore = cart.NewPostgresStore(db)
		guestCarts = cartStore
		orderStore = order.NewPostgresStore(db)

		act.Record(activity.TypeSystemStartup, activity.Details{
			"event": "DATABASE_CONNECTED",
		}, activity.SystemRequest("/system/startup"))
	}

	if cfg.RedisAddr != "" {
		rdb, err := redis.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			act.Record(activity.TypeSystemError, activity.Details{
				"event": "REDIS_ERROR",
				"error": err.Error(),
			}, activity.SystemRequest("/system/error"))
			return err
		}
		defer rdb.Close()

		guestCarts = cart.NewRedisStore(rdb.Client, cfg.GuestCartTTL)
		tracker = lockout.NewRedisTracker(rdb.Client)
	}

	tokens := user.NewTokenIssuer(cfg.JWTSigningKey, cfg.TokenTTL)
	users := user.NewService(userStore, tokens, tracker, cfg.LockoutThreshold, cfg.LockoutWindow, log)
	products := product.NewService(productStore, log)
	carts := cart.NewService(cartStore, guestCarts, productStore, log)
	orders := order.NewService(orderStore, products, carts, log)

	handler := httptransport.NewHandler(users, products, carts, orders, act, log, database)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, act)
	router := httptransport.NewRouter(handler, limiter)

	apiSrv := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting honeyshop api", "addr", cfg.Addr)
		act.Record(activity.TypeSystemStartup, activity.Details{
			"event": "SERVER_STARTED",
			"addr":  cfg.Addr,
		}, activity.SystemRequest("/system/startup"))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting metrics endpoint", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := apiSrv.Shutdown(shutdownCtx)
		if merr := metricsSrv.Shutdown(shutdownCtx); err == nil {
			err = merr
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		act.Record(activity.TypeSystemError, activity.Details{
			"event": "SERVER_ERROR",
			"error": err.Error(),
		}, activity.SystemRequest("/system/error"))
		return err
	}

	log.Info("shutdown complete")
	return nil
}
