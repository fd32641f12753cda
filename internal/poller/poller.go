package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("poller already started")

// AttemptFunc is invoked on every tick. It must not block for the duration of a
// fetch; it only issues the attempt.
type AttemptFunc func()

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
	}
}

// Poller fires attempts on a fixed interval.
type Poller struct {
	cfg     Config
	attempt AttemptFunc
	logger  *slog.Logger

	fired atomic.Int64

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, attempt AttemptFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		cfg:     cfg,
		attempt: attempt,
		logger:  logger,
	}
}

// Start begins the polling loop. The first attempt fires before Start's
// goroutine waits on the ticker.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop prevents any further attempts. It waits for an attempt currently being
// issued, but does not interrupt work the attempt started.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped", "attempts", p.fired.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired returns how many attempts have been issued.
func (p *Poller) Fired() int64 {
	return p.fired.Load()
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.fire()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.fire()
		}
	}
}

// fire issues one attempt unless the poller is already stopping.
func (p *Poller) fire() {
	if p.ctx.Err() != nil {
		return
	}
	n := p.fired.Add(1)
	p.logger.Debug("poll tick", "attempt", n)
	if p.attempt != nil {
		p.attempt()
	}
}
