// Package jobmgr runs named background jobs that stop with their parent
// context or on request.
//
//	jm := jobmgr.NewManager(nil)
//	_ = jm.Every(ctx, "presence", time.Minute, func(ctx context.Context) error {
//	    return updatePresence(ctx)
//	})
//	defer jm.StopAll()
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is a job lifecycle transition.
type Event struct {
	Job   string
	State string // running, error, done
	Err   error
}

// StatusReporter receives lifecycle events. When nil, events are logged.
type StatusReporter func(Event)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running jobs. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*job
	reporter StatusReporter
}

func NewManager(reporter StatusReporter) *Manager {
	if reporter == nil {
		reporter = logEvent
	}
	return &Manager{jobs: make(map[string]*job), reporter: reporter}
}

// StartAsync runs runner in its own goroutine under a context derived from
// parent. Names are unique among running jobs.
func (m *Manager) StartAsync(parent context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s' is already running", name)
	}
	ctx, cancel := context.WithCancel(parent)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j
	m.mu.Unlock()

	go func() {
		defer close(j.done)
		defer cancel()

		m.reporter(Event{Job: name, State: "running"})
		if err := runner(ctx); err != nil && ctx.Err() == nil {
			m.reporter(Event{Job: name, State: "error", Err: err})
		} else {
			m.reporter(Event{Job: name, State: "done"})
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Every runs fn immediately and then on each tick until the job is stopped.
// A failing run is reported and does not end the job.
func (m *Manager) Every(parent context.Context, name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job '%s': interval must be positive", name)
	}
	return m.StartAsync(parent, name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				m.reporter(Event{Job: name, State: "error", Err: err})
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}

// Stop cancels a running job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every running job and waits for them.
func (m *Manager) StopAll() {
	for _, name := range m.List() {
		_ = m.Stop(name)
	}
}

// List returns the names of running jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func logEvent(e Event) {
	switch e.State {
	case "error":
		log.Error().Err(e.Err).Str("job", e.Job).Msg("job failed")
	default:
		log.Debug().Str("job", e.Job).Msg("job " + e.State)
	}
}
