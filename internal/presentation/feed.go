package presentation

import "github.com/rickgao/pricewatch/internal/lifecycle"

// Feed delivers views to a single consumer. Publish never blocks: an unread
// view is replaced by a newer one, so the consumer always sees the latest.
type Feed struct {
	ch chan View
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan View, 1)}
}

// Publish offers v, replacing any view not yet received.
func (f *Feed) Publish(v View) {
	for {
		select {
		case f.ch <- v:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// C returns the receive side of the feed.
func (f *Feed) C() <-chan View {
	return f.ch
}

// Local feeds views from an in-process lifecycle.
type Local struct {
	lc   *lifecycle.Lifecycle
	feed *Feed
}

// NewLocal subscribes to lc. Views are derived on the event loop.
func NewLocal(lc *lifecycle.Lifecycle) *Local {
	l := &Local{lc: lc, feed: NewFeed()}
	lc.Subscribe(func(s lifecycle.State) {
		l.feed.Publish(From(s))
	})
	return l
}

// Views returns the view stream.
func (l *Local) Views() <-chan View { return l.feed.C() }

// Refresh issues a manual attempt.
func (l *Local) Refresh() { l.lc.Refresh() }
