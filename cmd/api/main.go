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

	"github.com/ganamos/backend/internal/api"
	"github.com/ganamos/backend/internal/auth"
	"github.com/ganamos/backend/internal/cache"
	"github.com/ganamos/backend/internal/config"
	"github.com/ganamos/backend/internal/cron"
	"github.com/ganamos/backend/internal/db"
	"github.com/ganamos/backend/internal/lightning"
	"github.com/ganamos/backend/internal/logger"
	"github.com/ganamos/backend/internal/metrics"
	"github.com/ganamos/backend/internal/repository/postgres"
	"github.com/ganamos/backend/internal/services"
	"github.com/ganamos/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") != "false" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	redis, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	if redis == nil {
		log.Warn("redis not configured, using in-memory rate limits")
	}

	var limiter cache.DeviceLimiter
	if redis != nil {
		limiter = cache.NewRedisLimiter(redis, cfg.SpendsPerMinute)
	} else {
		limiter = cache.NewMemoryLimiter(cfg.SpendsPerMinute)
	}

	var ln lightning.Client
	if cfg.LNDRestURL != "" {
		ln = lightning.NewLNDRest(cfg.LNDRestURL, cfg.LNDMacaroon)
	} else {
		log.Warn("LND not configured, using mock lightning backend")
		ln = lightning.NewMock()
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	prices := services.NewPriceService(repos.Prices, redis, cfg.PriceCurrency, cfg.PriceURL)
	wallet := services.NewWalletService(repos.Profiles, repos.Transactions, repos.Activities, ln, wp, prices, cfg.WithdrawFeeBuffer)
	spends := services.NewSpendService(repos.Devices, repos.PendingSpends, repos.Profiles, repos.Transactions, repos.Activities, limiter, cfg.EarnMaxSats)
	family := services.NewFamilyService(repos.Profiles, repos.ConnectedAccounts, repos.Devices, repos.Posts, repos.Transactions, repos.Activities)
	devices := services.NewDeviceService(repos.Devices, repos.Activities)
	posts := services.NewPostService(repos.Posts, repos.Profiles, repos.Transactions, repos.Activities)
	audit := services.NewAuditService(repos.Profiles, repos.Transactions, repos.Posts, repos.AuditReports)
	accounts := services.NewAccountService(repos.Profiles, repos.Activities)

	handler := api.NewRouter(api.RouterDeps{
		Cfg:      cfg,
		TM:       tm,
		Accounts: accounts,
		Wallet:   wallet,
		Family:   family,
		Devices:  devices,
		Spends:   spends,
		Posts:    posts,
		Prices:   prices,
		Audit:    audit,
	})

	sched := cron.New(prices, posts, audit, log)
	if err := sched.Start(); err != nil {
		log.Error("scheduler start failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.HTTPPort, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	sched.Stop()
	wp.Stop()
	log.Info("bye")
}
