package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-hr/meridian/internal/app"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/platform/db"
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

	deliverer := notify.NewDeliverer(notify.NewRepository(pool), logger)

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			notify.QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskDeliver, deliverer.Handle)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting notification worker")
		errCh <- srv.Run(mux)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down worker")
		srv.Shutdown()
	case err := <-errCh:
		if err != nil {
			logger.Error("worker run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
