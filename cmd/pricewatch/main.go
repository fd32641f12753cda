package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/pricewatch/internal/app"
	"github.com/rickgao/pricewatch/internal/config"
	"github.com/rickgao/pricewatch/internal/server"
	"github.com/rickgao/pricewatch/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional; PRICEWATCH_* env vars override it)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting pricewatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"poll_interval", cfg.Poller.Interval,
		"port", cfg.Server.Port,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("pricewatch failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pricewatch stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core := app.New(cfg, logger)

	srvCfg := server.DefaultConfig()
	srvCfg.Port = cfg.Server.Port
	srvCfg.MetricsPath = cfg.Server.MetricsPath
	srv := server.New(srvCfg, core.Lifecycle(), core.Metrics().Handler(), logger.With("component", "server"))

	if err := core.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", "error", err)
		}
		return core.Stop(shutdownCtx)
	})

	logger.Info("pricewatch running",
		"state_url", fmt.Sprintf("http://localhost:%d/api/state", cfg.Server.Port),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)
	return g.Wait()
}
