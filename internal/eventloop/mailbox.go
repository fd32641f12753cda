package eventloop

import "sync"

// Mailbox is an unbounded FIFO queue. Its ring buffer doubles once it is 70% full,
// so Send never blocks the poster.
type Mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []T
	head   int // read position
	tail   int // write position
	count  int
	closed bool

	posted      int64
	delivered   int64
	resizeCount int
}

// NewMailbox creates a mailbox with the given initial capacity.
func NewMailbox[T any](initialCapacity int) *Mailbox[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	m := &Mailbox[T]{buf: make([]T, initialCapacity)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Send enqueues an item. Returns false if the mailbox is closed.
func (m *Mailbox[T]) Send(item T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	threshold := (len(m.buf) * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if m.count+1 >= threshold {
		m.grow()
	}

	m.buf[m.tail] = item
	m.tail = (m.tail + 1) % len(m.buf)
	m.count++
	m.posted++

	m.cond.Signal()
	return true
}

// Receive blocks until an item is available. It returns false once the mailbox
// is closed and drained.
func (m *Mailbox[T]) Receive() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.count == 0 && !m.closed {
		m.cond.Wait()
	}

	var zero T
	if m.count == 0 {
		return zero, false
	}

	item := m.buf[m.head]
	m.buf[m.head] = zero // release the reference
	m.head = (m.head + 1) % len(m.buf)
	m.count--
	m.delivered++

	return item, true
}

// Close stops accepting items. Pending items are still delivered.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.cond.Broadcast()
}

// Len returns the number of pending items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// MailboxStats contains mailbox counters.
type MailboxStats struct {
	Pending     int
	Capacity    int
	Posted      int64
	Delivered   int64
	ResizeCount int
}

// Stats returns mailbox counters.
func (m *Mailbox[T]) Stats() MailboxStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MailboxStats{
		Pending:     m.count,
		Capacity:    len(m.buf),
		Posted:      m.posted,
		Delivered:   m.delivered,
		ResizeCount: m.resizeCount,
	}
}

// grow doubles the capacity. Must be called with lock held.
func (m *Mailbox[T]) grow() {
	next := make([]T, len(m.buf)*2)

	if m.count > 0 {
		if m.head < m.tail {
			copy(next, m.buf[m.head:m.tail])
		} else {
			n := copy(next, m.buf[m.head:])
			copy(next[n:], m.buf[:m.tail])
		}
	}

	m.buf = next
	m.head = 0
	m.tail = m.count
	m.resizeCount++
}
