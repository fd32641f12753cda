package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsTasksInPostOrder(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.True(t, l.Post(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_TasksNeverOverlap(t *testing.T) {
	l := New(nil)
	go l.Run(context.Background())
	defer l.Close()

	var active, maxActive atomic.Int32
	var finished atomic.Int32
	for i := 0; i < 20; i++ {
		go l.Post(func() {
			n := active.Add(1)
			if n > maxActive.Load() {
				maxActive.Store(n)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			finished.Add(1)
		})
	}

	require.Eventually(t, func() bool { return finished.Load() == 20 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestLoop_CloseDrainsAndRejects(t *testing.T) {
	l := New(nil)

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		l.Post(func() { ran.Add(1) })
	}
	l.Close()
	assert.False(t, l.Post(func() { ran.Add(1) }), "Post after Close should be rejected")

	go l.Run(context.Background())

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Equal(t, int32(3), ran.Load())
}

func TestLoop_ContextCancelStopsRun(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, l.Post(func() {}))
}

func TestLoop_SurvivesPanickingTask(t *testing.T) {
	l := New(nil)
	go l.Run(context.Background())
	defer l.Close()

	done := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop died after a panicking task")
	}
}
