package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtside-lab/project-courtside/internal/api"
	"github.com/courtside-lab/project-courtside/internal/config"
	"github.com/courtside-lab/project-courtside/internal/fetch"
	"github.com/courtside-lab/project-courtside/internal/metrics"
	"github.com/courtside-lab/project-courtside/internal/resource"
	"github.com/courtside-lab/project-courtside/internal/screen"
	"github.com/courtside-lab/project-courtside/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "courtside.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"resource_base_url", cfg.Resource.BaseURL,
		"screen_dir", cfg.Screens.ConfigDir,
		"page_size", cfg.Query.PageSize,
	)

	// 2. Load Screen Definitions
	screens, err := screen.NewFileSystemRepository(cfg.Screens.ConfigDir)
	if err != nil {
		slog.Error("Failed to load screen definitions", "error", err)
		os.Exit(1)
	}
	if cfg.Screens.RequireScreens && screens.Len() == 0 {
		slog.Error("No screen definitions found", "dir", cfg.Screens.ConfigDir)
		os.Exit(1)
	}
	slog.Info("Screen definitions loaded", "count", screens.Len(), "screens", screens.Names())

	// 3. Initialize Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// 4. Initialize Resource API Client
	client := resource.NewClient(cfg.Resource.BaseURL, cfg.Resource.Timeout())

	// 5. Initialize Refresh Service
	refreshSvc := fetch.NewService(client, screens, m)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, registry)
	api.NewHandler(refreshSvc, screens, cfg.Query.PageSize, cfg.Query.RecentLimit).RegisterRoutes(srv.Engine)

	// 7. Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
