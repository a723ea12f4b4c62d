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

	"github.com/kirillkom/friendsfixer/internal/bootstrap"
	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/observability/logging"
	"github.com/kirillkom/friendsfixer/internal/observability/metrics"
)

const serviceName = "friendsfixer-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if cfg.PhraseSource != "postgres" {
		slog.Error("worker_requires_postgres", "phrase_source", cfg.PhraseSource)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleWorker, bootstrap.Options{})
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSImportSubject)
	err = app.Queue.SubscribeImportRequested(ctx, func(handlerCtx context.Context, key string) error {
		importCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		started := time.Now()
		workerMetrics.StartImport()
		err := app.ImportUC.ImportByKey(importCtx, key)
		workerMetrics.FinishImport(serviceName, time.Since(started), err)
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_error", "error", err)
		os.Exit(1)
	}
}
