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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpadapter "github.com/kirillkom/friendsfixer/internal/adapters/http"
	"github.com/kirillkom/friendsfixer/internal/bootstrap"
	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/observability/logging"
	"github.com/kirillkom/friendsfixer/internal/observability/metrics"
)

const serviceName = "friendsfixer-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleAPI, bootstrap.Options{
		OnBreakerChange: func(operation, _, to string) {
			httpMetrics.RecordBreakerState(serviceName, operation, to)
		},
	})
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()
	httpMetrics.SetIndexEntries(app.CorrectUC.Stats(ctx).Entries)

	go func() {
		err := app.WatchIndexReload(ctx, func(handlerCtx context.Context) {
			httpMetrics.SetIndexEntries(app.CorrectUC.Stats(handlerCtx).Entries)
		})
		if err != nil {
			slog.Error("index_reload_subscribe_error", "error", err)
		}
	}()

	router := httpadapter.NewRouter(cfg, app.CorrectUC, app.CorrectUC, app.UploadUC, httpadapter.WithMetrics(httpMetrics)).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Duration(cfg.GeneratorTimeoutSeconds+30) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "generator", cfg.Generator, "phrase_source", cfg.PhraseSource)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
