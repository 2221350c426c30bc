package live

import "sync"

// Latest is a single-slot channel. Publishing never blocks: a value the
// consumer has not taken yet is replaced by the newer one.
type Latest[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewLatest creates an empty single-slot channel
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Publish stores v, replacing a pending value. Publishing after Close is a no-op.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- v
}

// C returns the receive side. It is closed by Close.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}

// Close closes the channel. A pending value can still be received.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}
