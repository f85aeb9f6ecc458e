package jobmgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartAsyncRejectsDuplicate(t *testing.T) {
	m := NewManager(func(Event) {})
	block := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	if err := m.StartAsync(context.Background(), "a", block); err != nil {
		t.Fatal(err)
	}
	defer m.StopAll()

	if err := m.StartAsync(context.Background(), "a", block); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
	if got := m.List(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("List() = %v", got)
	}
}

func TestStopWaitsForJob(t *testing.T) {
	m := NewManager(func(Event) {})
	var finished atomic.Bool
	err := m.StartAsync(context.Background(), "a", func(ctx context.Context) error {
		<-ctx.Done()
		finished.Store(true)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Stop("a"); err != nil {
		t.Fatal(err)
	}
	if !finished.Load() {
		t.Fatal("Stop returned before the job finished")
	}
	if err := m.Stop("a"); err == nil {
		t.Fatal("expected stopping a stopped job to fail")
	}
}

func TestParentCancelStopsJob(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	done := make(chan struct{})
	m := NewManager(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
		if e.State == "done" {
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := m.StartAsync(ctx, "a", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop with its parent")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0].State != "running" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestEveryRunsRepeatedly(t *testing.T) {
	var errs atomic.Int32
	m := NewManager(func(e Event) {
		if e.State == "error" {
			errs.Add(1)
		}
	})

	var runs atomic.Int32
	err := m.Every(context.Background(), "tick", 5*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.StopAll()

	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}
	if errs.Load() != 1 {
		t.Fatalf("expected 1 reported error, got %d", errs.Load())
	}
	if err := m.Every(context.Background(), "bad", 0, nil); err == nil {
		t.Fatal("expected zero interval to fail")
	}
}
