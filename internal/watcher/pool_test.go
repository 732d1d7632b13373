package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolProcessesAllTriggers(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	p := NewPool(2, func(path string) {
		mu.Lock()
		handled = append(handled, path)
		mu.Unlock()
	})
	p.Start()

	paths := []string{"/a.pdf", "/b.pdf", "/c.pdf", "/d.pdf", "/e.pdf"}
	for _, path := range paths {
		if !p.Submit(path) {
			t.Fatalf("Submit(%s) rejected", path)
		}
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == len(paths)
	})
	if !ok {
		t.Fatalf("Expected %d handled, got %d", len(paths), len(handled))
	}
	p.Stop()
}

func TestPoolEnforcesConcurrencyCeiling(t *testing.T) {
	var active, peak atomic.Int32
	gate := make(chan struct{})

	p := NewPool(2, func(string) {
		n := active.Add(1)
		for {
			current := peak.Load()
			if n <= current || peak.CompareAndSwap(current, n) {
				break
			}
		}
		<-gate
		active.Add(-1)
	})
	p.Start()

	for i := 0; i < 5; i++ {
		p.Submit("/x.pdf")
	}

	if !waitFor(t, time.Second, func() bool { return active.Load() == 2 }) {
		t.Fatalf("Expected 2 active workers, got %d", active.Load())
	}
	// The ceiling holds while the queue is non-empty.
	time.Sleep(20 * time.Millisecond)
	if got := peak.Load(); got > 2 {
		t.Errorf("Concurrency ceiling exceeded: %d", got)
	}
	if depth := p.QueueDepth(); depth != 3 {
		t.Errorf("Expected 3 queued triggers, got %d", depth)
	}

	close(gate)
	if !waitFor(t, 2*time.Second, func() bool { return p.QueueDepth() == 0 && active.Load() == 0 }) {
		t.Fatal("Queue did not drain after releasing workers")
	}
	p.Stop()
}

func TestPoolPreservesSubmissionOrder(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	// A single worker dispatches strictly in order.
	p := NewPool(1, func(path string) {
		mu.Lock()
		handled = append(handled, path)
		mu.Unlock()
	})
	p.Start()

	want := []string{"/1.pdf", "/2.pdf", "/3.pdf"}
	for _, path := range want {
		p.Submit(path)
	}

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == len(want)
	})
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i, path := range want {
		if handled[i] != path {
			t.Errorf("Position %d: expected %s, got %s", i, path, handled[i])
		}
	}
}

func TestPoolStopDropsQueuedAndDrainsStarted(t *testing.T) {
	var started atomic.Int32
	gate := make(chan struct{})

	p := NewPool(1, func(string) {
		started.Add(1)
		<-gate
	})
	p.Start()

	p.Submit("/running.pdf")
	if !waitFor(t, time.Second, func() bool { return started.Load() == 1 }) {
		t.Fatal("First trigger never started")
	}
	p.Submit("/queued-1.pdf")
	p.Submit("/queued-2.pdf")

	go func() {
		time.Sleep(30 * time.Millisecond)
		close(gate)
	}()
	p.Stop()

	if got := started.Load(); got != 1 {
		t.Errorf("Expected only the in-flight trigger to run, got %d", got)
	}
	if p.Submit("/late.pdf") {
		t.Error("Expected Submit to be rejected after Stop")
	}
}
