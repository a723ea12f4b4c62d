package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/friendsfixer/internal/adapters/mcp"
	"github.com/kirillkom/friendsfixer/internal/bootstrap"
	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol.
	slog.SetDefault(logging.New(os.Stderr, "friendsfixer-mcp", cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, bootstrap.RoleMCP, bootstrap.Options{})
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go func() {
		if err := app.WatchIndexReload(ctx, nil); err != nil {
			slog.Error("index_reload_subscribe_error", "error", err)
		}
	}()

	tools := mcpadapter.NewTools(app.CorrectUC, app.CorrectUC, cfg.RAGTopK, cfg.RAGMinSim)
	if err := server.ServeStdio(tools.NewServer(bootstrap.Version)); err != nil {
		slog.Error("mcp_serve_error", "error", err)
		os.Exit(1)
	}
}
