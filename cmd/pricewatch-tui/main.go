package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rickgao/pricewatch/internal/app"
	"github.com/rickgao/pricewatch/internal/config"
	"github.com/rickgao/pricewatch/internal/presentation"
	"github.com/rickgao/pricewatch/internal/stream"
	"github.com/rickgao/pricewatch/internal/tui"
	"github.com/rickgao/pricewatch/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	serverAddr := flag.String("server", "", "follow a running pricewatch server instead of polling locally (e.g. http://localhost:8080)")
	logPath := flag.String("log", "", "write logs to this file (default: discard)")
	flag.Parse()

	logger, closeLog, err := openLog(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log:", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(*configPath, *serverAddr, logger); err != nil {
		logger.Error("pricewatch-tui failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func run(configPath, serverAddr string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		source   tui.Source
		title    string
		teardown func(context.Context) error
	)

	if serverAddr != "" {
		cfg, err := stream.ConfigForServer(serverAddr)
		if err != nil {
			return err
		}
		client := stream.NewClient(cfg, logger.With("component", "stream"))
		if err := client.Start(ctx); err != nil {
			return err
		}
		source, title, teardown = client, "pricewatch ← "+serverAddr, client.Stop
	} else {
		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		core := app.New(cfg, logger)
		// Subscribe before the first attempt so no transition is missed.
		local := presentation.NewLocal(core.Lifecycle())
		if err := core.Start(ctx); err != nil {
			return err
		}
		source, title, teardown = local, "pricewatch "+version.Version, core.Stop
	}

	_, runErr := tea.NewProgram(tui.New(source, title), tea.WithAltScreen()).Run()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := teardown(shutdownCtx); err != nil {
		logger.Warn("teardown", "error", err)
	}
	return runErr
}

func openLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
