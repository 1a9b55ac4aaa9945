package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestOutboxDrainsQueuedJobsOnClose(t *testing.T) {
	o := NewOutbox(OutboxOptions{QueueSize: 64, Workers: 2})

	var done atomic.Int64
	for i := 0; i < 32; i++ {
		err := o.Enqueue(context.Background(), "send.text", func() error {
			done.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	o.Close()

	if got := done.Load(); got != 32 {
		t.Fatalf("jobs done = %d, want all 32 before Close returns", got)
	}
}

func TestOutboxEnqueueAfterClose(t *testing.T) {
	o := NewOutbox(OutboxOptions{Workers: 1})
	o.Close()

	err := o.Enqueue(context.Background(), "send.text", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestOutboxEnqueueConcurrentWithClose(t *testing.T) {
	o := NewOutbox(OutboxOptions{QueueSize: 8, Workers: 2})

	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// ErrQueueFull and ErrQueueClosed are expected here;
				// the enqueue must never panic against a racing Close.
				_ = o.Enqueue(context.Background(), "send.text", func() error { return nil })
			}
		}()
	}
	o.Close()
	wg.Wait()
}

func TestOutboxQueueFull(t *testing.T) {
	o := NewOutbox(OutboxOptions{QueueSize: 1, Workers: 1})
	defer o.Close()

	block := make(chan struct{})
	release := func() error { <-block; return nil }

	// One job occupies the worker, one fills the queue; the next must be
	// rejected rather than block the handler.
	_ = o.Enqueue(context.Background(), "send.text", release)
	_ = o.Enqueue(context.Background(), "send.text", release)

	var got error
	for i := 0; i < 100; i++ {
		if got = o.Enqueue(context.Background(), "send.text", release); errors.Is(got, ErrQueueFull) {
			break
		}
	}
	close(block)
	if !errors.Is(got, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", got)
	}
}
