package eventloop

import (
	"sync"
	"testing"
	"time"
)

func TestMailbox_FIFO(t *testing.T) {
	mb := NewMailbox[int](10)

	for i := 0; i < 5; i++ {
		if !mb.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}

	if mb.Len() != 5 {
		t.Errorf("Len() = %d, want 5", mb.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := mb.Receive()
		if !ok {
			t.Fatalf("Receive() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("received %d, want %d", val, i)
		}
	}
}

func TestMailbox_GrowsAndKeepsOrder(t *testing.T) {
	mb := NewMailbox[int](4)

	// Interleave to force wrapped copies during growth.
	next := 0
	for i := 0; i < 3; i++ {
		mb.Send(i)
	}
	if val, _ := mb.Receive(); val != next {
		t.Fatalf("received %d, want %d", val, next)
	}
	next++

	for i := 3; i < 100; i++ {
		if !mb.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}

	stats := mb.Stats()
	if stats.Pending != 99 {
		t.Errorf("Pending = %d, want 99", stats.Pending)
	}
	if stats.ResizeCount < 3 {
		t.Errorf("ResizeCount = %d, expected at least 3 resizes", stats.ResizeCount)
	}

	for ; next < 100; next++ {
		val, ok := mb.Receive()
		if !ok {
			t.Fatalf("Receive() returned false for item %d", next)
		}
		if val != next {
			t.Fatalf("received %d, want %d", val, next)
		}
	}
}

func TestMailbox_CloseDrainsThenStops(t *testing.T) {
	mb := NewMailbox[int](10)
	mb.Send(1)
	mb.Send(2)
	mb.Close()

	if mb.Send(3) {
		t.Error("Send should return false after Close")
	}

	for _, want := range []int{1, 2} {
		val, ok := mb.Receive()
		if !ok || val != want {
			t.Errorf("Receive() = %d, %v; want %d, true", val, ok, want)
		}
	}

	if _, ok := mb.Receive(); ok {
		t.Error("Receive should return false when closed and empty")
	}
}

func TestMailbox_CloseUnblocksReceive(t *testing.T) {
	mb := NewMailbox[int](10)
	done := make(chan bool, 1)

	go func() {
		_, ok := mb.Receive()
		done <- ok
	}()

	// Give receiver time to start waiting
	time.Sleep(10 * time.Millisecond)
	mb.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Receive should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Receive")
	}
}

func TestMailbox_ConcurrentSenders(t *testing.T) {
	mb := NewMailbox[int](2)
	const senders, perSender = 8, 250

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				mb.Send(i)
			}
		}()
	}
	wg.Wait()

	if got := mb.Stats().Posted; got != senders*perSender {
		t.Errorf("Posted = %d, want %d", got, senders*perSender)
	}
}
