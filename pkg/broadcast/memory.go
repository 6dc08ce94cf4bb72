package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster is an in-process Broadcaster.
type MemoryBroadcaster[T any] struct {
	mu         sync.RWMutex
	subs       map[*memorySubscriber[T]]struct{}
	bufferSize int
	closed     bool
}

// NewMemoryBroadcaster creates a broadcaster with the given per-subscriber buffer size.
// Sizes below 1 are raised to 1.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &MemoryBroadcaster[T]{
		subs:       make(map[*memorySubscriber[T]]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new subscriber that lives until ctx is done or Close is called.
// Subscribing to a closed broadcaster returns a subscriber whose channel is already closed.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &memorySubscriber[T]{
		parent: b,
		ch:     make(chan Message[T], b.bufferSize),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.closeOnce.Do(func() {
			close(sub.ch)
			close(sub.done)
		})
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// Broadcast delivers msg to all subscribers without blocking.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	for sub := range b.subs {
		sub.deliver(msg)
	}
	return nil
}

// Close removes all subscribers and closes their channels. It is safe to call more than once.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		delete(b.subs, sub)
		sub.closeOnce.Do(func() {
			close(sub.ch)
			close(sub.done)
		})
	}
	return nil
}

// Subscribers returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *MemoryBroadcaster[T]) remove(sub *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, sub)
	sub.closeOnce.Do(func() {
		close(sub.ch)
		close(sub.done)
	})
}

type memorySubscriber[T any] struct {
	parent *MemoryBroadcaster[T]
	ch     chan Message[T]
	done   chan struct{}

	// deliverMu serializes drop-oldest handling between concurrent broadcasts.
	deliverMu sync.Mutex
	closeOnce sync.Once
}

// deliver is called with the parent read lock held, so ch cannot be closed concurrently.
func (s *memorySubscriber[T]) deliver(msg Message[T]) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	select {
	case s.ch <- msg:
		return
	default:
	}

	// Buffer full: drop the oldest message and retry once.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
	default:
	}
}

func (s *memorySubscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *memorySubscriber[T]) Close() error {
	s.parent.remove(s)
	return nil
}
