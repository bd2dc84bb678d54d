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
	"github.com/redis/go-redis/v9"

	"github.com/meridian-hr/meridian/internal/admin"
	"github.com/meridian-hr/meridian/internal/app"
	"github.com/meridian-hr/meridian/internal/auth"
	"github.com/meridian-hr/meridian/internal/dashboard"
	"github.com/meridian-hr/meridian/internal/document"
	"github.com/meridian-hr/meridian/internal/employee"
	"github.com/meridian-hr/meridian/internal/expense"
	"github.com/meridian-hr/meridian/internal/files"
	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/observability"
	"github.com/meridian-hr/meridian/internal/payroll"
	"github.com/meridian-hr/meridian/internal/platform/db"
	"github.com/meridian-hr/meridian/internal/token"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	identityRepo := identity.NewRepository(pool)
	identityService := identity.NewService(identityRepo)

	tokenService := token.NewService(token.Config{
		Secret:      []byte(cfg.JWTSecret),
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
		RememberTTL: cfg.RememberMeTTL,
	})
	authGuard := guard.New(tokenService, identityService)

	sink := notify.NewQueueSink(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("notification sink close", slog.Any("error", err))
		}
	}()

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardCache.ListenForInvalidation(ctx)
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), dashboardCache)

	payrollService := payroll.NewService(payroll.NewRepository(pool), identityService, sink, logger)
	payrollService.SetCacheInvalidator(dashboardService)

	expenseService := expense.NewService(expense.NewRepository(pool), sink, logger)
	expenseService.SetCacheInvalidator(dashboardService)

	notifyService := notify.NewService(notify.NewRepository(pool))

	store, err := files.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logger.Error("init file store", slog.Any("error", err))
		os.Exit(1)
	}

	pdfClient := document.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	renderer := document.NewPDFService(pdfClient, cfg.CompanyName, cfg.CompanyAddress)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Guard:  authGuard,
		AuthHandler: auth.NewHandler(logger, identityService, tokenService, authGuard),
		AdminHandler: admin.NewHandler(logger, identityService, payrollService,
			expenseService, dashboardService, renderer),
		EmployeeHandler: employee.NewHandler(logger, identityService, payrollService,
			expenseService, dashboardService, notifyService, store, renderer, cfg.MaxUploadBytes),
		FilesHandler: files.NewHandler(logger, store, cfg.MaxUploadBytes),
		Pool:         pool,
		Metrics:      metrics,
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
