package worker

import "sync"

// Mailbox is an unbounded queue that carries worker results to the owning goroutine.
// Post never blocks, so a worker can always finish even while its owner waits in AwaitIdle.
type Mailbox[T any] struct {
	mu    sync.Mutex
	queue []T
	ready chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		ready: make(chan struct{}, 1),
	}
}

// Post appends v and signals the owner.
func (m *Mailbox[T]) Post(v T) {
	m.mu.Lock()
	m.queue = append(m.queue, v)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a value after one or more Posts.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// Drain removes and returns everything posted so far, in posting order.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.queue
	m.queue = nil
	return out
}
