// Package app wires the prices client, event loop, request lifecycle and poll
// scheduler into one unit with ordered startup and teardown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/pricewatch/internal/api"
	"github.com/rickgao/pricewatch/internal/config"
	"github.com/rickgao/pricewatch/internal/eventloop"
	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/metrics"
	"github.com/rickgao/pricewatch/internal/poller"
)

// Option configures an App.
type Option func(*options)

type options struct {
	httpClient api.HTTPClient
}

// WithHTTPClient replaces the transport used by the prices client.
func WithHTTPClient(hc api.HTTPClient) Option {
	return func(o *options) { o.httpClient = hc }
}

// App is the polling core.
type App struct {
	logger    *slog.Logger
	loop      *eventloop.Loop
	lifecycle *lifecycle.Lifecycle
	poller    *poller.Poller
	metrics   *metrics.Metrics

	mu      sync.Mutex
	started bool
	stopped bool
}

// New builds the core from cfg. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []api.ClientOption{
		api.WithLogger(logger.With("component", "api")),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	client := api.NewClient(cfg.API.BaseURL, cfg.API.AuthToken, clientOpts...)

	m := metrics.New()
	loop := eventloop.New(logger.With("component", "eventloop"))
	m.WatchQueue(func() int { return int(loop.Stats().Pending) })

	lc := lifecycle.New(
		lifecycle.Config{Observer: m},
		client,
		loop,
		logger.With("component", "lifecycle"),
	)
	p := poller.New(
		poller.Config{Interval: cfg.Poller.Interval},
		lc.Attempt,
		logger.With("component", "poller"),
	)

	return &App{
		logger:    logger,
		loop:      loop,
		lifecycle: lc,
		poller:    p,
		metrics:   m,
	}
}

// Lifecycle returns the request lifecycle.
func (a *App) Lifecycle() *lifecycle.Lifecycle { return a.lifecycle }

// Metrics returns the instrumentation for this core.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Start runs the event loop and the poll scheduler. The first attempt is
// issued immediately. Cancelling ctx stops scheduling; call Stop to tear down.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return errors.New("app already started")
	}
	a.started = true

	// The loop outlives ctx so teardown can still be posted to it.
	go a.loop.Run(context.WithoutCancel(ctx))

	if err := a.poller.Start(ctx); err != nil {
		a.loop.Close()
		return fmt.Errorf("start poller: %w", err)
	}

	a.logger.Info("polling core started")
	return nil
}

// Stop tears down in order: scheduler, lifecycle, event loop. In-flight
// requests are left to finish; their results are discarded.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.stopped {
		return nil
	}
	a.stopped = true

	var errs []error
	if err := a.poller.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop poller: %w", err))
	}
	if err := a.lifecycle.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close lifecycle: %w", err))
	}

	a.loop.Close()
	select {
	case <-a.loop.Done():
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("drain event loop: %w", ctx.Err()))
	}

	stats := a.loop.Stats()
	a.logger.Info("polling core stopped",
		"attempts", a.poller.Fired(),
		"tasks", stats.Delivered,
		"mailbox_resizes", stats.ResizeCount,
	)
	return errors.Join(errs...)
}
