package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/pricewatch/internal/eventloop"
	"github.com/rickgao/pricewatch/internal/model"
)

// Fetcher performs one quotes request.
type Fetcher interface {
	FetchQuotes(ctx context.Context) ([]model.Quote, error)
}

// Observer receives lifecycle events on the loop goroutine. Implementations
// must not block.
type Observer interface {
	AttemptIssued(trigger string)
	AttemptResolved(result model.FetchResult, elapsed time.Duration)
	StateChanged(state State)
}

// Config holds lifecycle configuration.
type Config struct {
	// Timeout bounds a single fetch on top of the transport timeout. Zero
	// leaves the transport in charge.
	Timeout time.Duration

	// Observer is optional.
	Observer Observer
}

// Trigger names why an attempt was issued.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Lifecycle is the request lifecycle state machine. The zero value is not usable;
// create one with New.
type Lifecycle struct {
	cfg     Config
	fetcher Fetcher
	loop    *eventloop.Loop
	logger  *slog.Logger
	now     func() time.Time

	// Owned by the loop goroutine.
	state       State
	alive       bool
	subscribers []func(State)

	// Latest state for readers on other goroutines.
	published atomic.Pointer[State]
}

// New creates a lifecycle in the Idle state. Transitions run on loop, which
// the caller runs and closes.
func New(cfg Config, fetcher Fetcher, loop *eventloop.Loop, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lifecycle{
		cfg:     cfg,
		fetcher: fetcher,
		loop:    loop,
		logger:  logger,
		now:     time.Now,
		alive:   true,
	}
	l.state = State{Status: StatusIdle, UpdatedAt: l.now()}
	l.publish()
	return l
}

// Attempt issues a scheduled attempt. It is the poller callback and never blocks.
func (l *Lifecycle) Attempt() {
	l.issue(TriggerScheduled)
}

// Refresh issues a manual attempt with the same semantics as a scheduled one.
func (l *Lifecycle) Refresh() {
	l.issue(TriggerManual)
}

// State returns the latest state. Safe for concurrent use.
func (l *Lifecycle) State() State {
	return l.published.Load().clone()
}

// Subscribe registers fn to be called on the loop goroutine after every applied
// transition, starting with the current state. fn must not block. Returns false
// once the lifecycle has been torn down.
func (l *Lifecycle) Subscribe(fn func(State)) bool {
	if fn == nil {
		return false
	}
	return l.loop.Post(func() {
		if !l.alive {
			return
		}
		l.subscribers = append(l.subscribers, fn)
		fn(l.state.clone())
	})
}

// Close tears the lifecycle down. Once it returns, no completion can mutate
// state. In-flight requests are not cancelled; their results are dropped.
func (l *Lifecycle) Close(ctx context.Context) error {
	done := make(chan struct{})
	posted := l.loop.Post(func() {
		l.alive = false
		l.subscribers = nil
		close(done)
	})
	if !posted {
		// The loop is closed: wait for already-queued tasks to drain.
		done = nil
	}

	select {
	case <-done:
	case <-l.loop.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	l.logger.Info("request lifecycle closed", "status", l.published.Load().Status)
	return nil
}

// issue posts the begin transition for a new attempt.
func (l *Lifecycle) issue(trigger string) {
	id := uuid.New()
	if !l.loop.Post(func() { l.begin(id, trigger) }) {
		l.logger.Debug("attempt dropped, lifecycle closed", "attempt_id", id, "trigger", trigger)
	}
}

// begin runs on the loop: enter Loading, keep the last good snapshot, start the fetch.
func (l *Lifecycle) begin(id uuid.UUID, trigger string) {
	if !l.alive {
		return
	}

	l.apply(State{
		Status:        StatusLoading,
		LastKnownGood: l.state.LastKnownGood,
		AttemptID:     id,
		InFlight:      l.state.InFlight + 1,
		UpdatedAt:     l.now(),
	})

	if l.cfg.Observer != nil {
		l.cfg.Observer.AttemptIssued(trigger)
	}
	l.logger.Debug("poll attempt issued", "attempt_id", id, "trigger", trigger)

	go l.fetch(id)
}

// fetch runs off the loop and posts the completion back to it.
func (l *Lifecycle) fetch(id uuid.UUID) {
	start := l.now()
	result := l.doFetch(id)
	elapsed := l.now().Sub(start)

	if !l.loop.Post(func() { l.complete(result, elapsed) }) {
		l.logger.Debug("attempt resolved after teardown", "attempt_id", id)
	}
}

// doFetch performs the request and classifies the outcome. A panicking fetcher
// is converted into a setup failure.
func (l *Lifecycle) doFetch(id uuid.UUID) (result model.FetchResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = model.Failed(id, model.RequestSetupFailure(fmt.Sprint(rec)), l.now())
		}
	}()

	// In-flight calls outlive teardown, so the fetch is not bound to any
	// lifecycle context.
	ctx := context.Background()
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	quotes, err := l.fetcher.FetchQuotes(ctx)
	if err != nil {
		return model.Failed(id, Classify(err), l.now())
	}
	if err := model.ValidateSnapshot(quotes); err != nil {
		return model.Failed(id, model.MalformedPayloadFailure(err.Error()), l.now())
	}
	return model.Succeeded(id, model.CloneQuotes(quotes), l.now())
}

// complete runs on the loop: whichever attempt resolves last decides the state.
func (l *Lifecycle) complete(result model.FetchResult, elapsed time.Duration) {
	if !l.alive {
		return
	}

	inFlight := l.state.InFlight - 1
	if inFlight < 0 {
		inFlight = 0
	}

	if l.cfg.Observer != nil {
		l.cfg.Observer.AttemptResolved(result, elapsed)
	}

	if result.OK() {
		l.logger.Info("poll attempt succeeded",
			"attempt_id", result.AttemptID,
			"quotes", len(result.Quotes),
			"elapsed", elapsed,
		)
		l.apply(State{
			Status:        StatusReady,
			Quotes:        result.Quotes,
			LastKnownGood: result.Quotes,
			AttemptID:     result.AttemptID,
			InFlight:      inFlight,
			UpdatedAt:     result.CompletedAt,
		})
		return
	}

	l.logger.Warn("poll attempt failed",
		"attempt_id", result.AttemptID,
		"kind", result.Failure.Kind,
		"err", result.Failure.Message,
		"elapsed", elapsed,
	)
	l.apply(State{
		Status:        StatusFailed,
		LastKnownGood: l.state.LastKnownGood,
		Err:           result.Failure,
		AttemptID:     result.AttemptID,
		InFlight:      inFlight,
		UpdatedAt:     result.CompletedAt,
	})
}

// apply is the single mutator. Must run on the loop goroutine.
func (l *Lifecycle) apply(next State) {
	l.state = next
	l.publish()

	if l.cfg.Observer != nil {
		l.cfg.Observer.StateChanged(next)
	}
	for _, fn := range l.subscribers {
		fn(next.clone())
	}
}

func (l *Lifecycle) publish() {
	s := l.state
	l.published.Store(&s)
}
