// Package worker implements the one-shot, reusable background tasks that enumerate
// directories and re-validate records off the owning goroutine.
//
// A worker runs at most one task at a time. Its owner configures it while idle, starts it,
// and receives results through a sink. Reconfiguring a running worker is an error: the owner
// must call AwaitIdle first.
package worker

import (
	"sync"

	"go.trai.ch/roster/internal/core/domain"
)

// State is the lifecycle state of a worker.
type State int32

const (
	// StateIdle means the worker has never run.
	StateIdle State = iota
	// StateRunning means a run is in flight.
	StateRunning
	// StateCompleted means the last run finished and the worker can be reused.
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// lifecycle is the Idle -> Running -> Completed state machine shared by workers.
type lifecycle struct {
	mu    sync.Mutex
	state State
	done  chan struct{}
}

// whenIdle runs fn under the lifecycle lock unless a run is in flight.
func (l *lifecycle) whenIdle(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRunning {
		return domain.ErrWorkerBusy
	}
	fn()
	return nil
}

// begin moves to Running. fn runs under the lock and may reject the start.
func (l *lifecycle) begin(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRunning {
		return domain.ErrWorkerBusy
	}
	if err := fn(); err != nil {
		return err
	}
	l.state = StateRunning
	l.done = make(chan struct{})
	return nil
}

// end moves to Completed and releases waiters.
func (l *lifecycle) end() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateCompleted
	close(l.done)
}

// State returns the current lifecycle state.
func (l *lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Running reports whether a run is in flight.
func (l *lifecycle) Running() bool {
	return l.State() == StateRunning
}

// AwaitIdle blocks until no run is in flight. It returns immediately on an idle worker.
func (l *lifecycle) AwaitIdle() {
	l.mu.Lock()
	done := l.done
	running := l.state == StateRunning
	l.mu.Unlock()
	if running {
		<-done
	}
}
