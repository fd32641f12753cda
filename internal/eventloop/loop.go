package eventloop

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of work run on the loop goroutine.
type Task func()

// Loop executes posted tasks serially on one goroutine.
type Loop struct {
	mailbox *Mailbox[Task]
	logger  *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a loop. Call Run to start processing.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		mailbox: NewMailbox[Task](16),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Post enqueues a task. It never blocks and returns false once the loop is closed.
func (l *Loop) Post(task Task) bool {
	if task == nil {
		return false
	}
	return l.mailbox.Send(task)
}

// Run processes tasks until the loop is closed and drained. Cancelling ctx
// closes the loop. Run must be called at most once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	stop := context.AfterFunc(ctx, l.Close)
	defer stop()

	for {
		task, ok := l.mailbox.Receive()
		if !ok {
			return
		}
		l.runTask(task)
	}
}

// runTask runs one task; a panicking task is logged and does not kill the loop.
func (l *Loop) runTask(task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("event loop task panicked", "panic", rec)
		}
	}()
	task()
}

// Close stops accepting tasks. Already-posted tasks still run.
func (l *Loop) Close() {
	l.closeOnce.Do(l.mailbox.Close)
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stats returns mailbox counters.
func (l *Loop) Stats() MailboxStats {
	return l.mailbox.Stats()
}
