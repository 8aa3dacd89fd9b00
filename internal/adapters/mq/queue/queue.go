// Package queue defines the contract for enqueuing and consuming entry
// references on their way to the store.
package queue

import (
	"context"
	"sync"

	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Entry is the payload type flowing through the queue.
type Entry = model.Entry

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an entry. It returns false when the queue is full or
	// closed; callers map that to backpressure.
	Enqueue(ctx context.Context, e Entry) bool

	// Dequeue returns a channel that receives entries as they arrive. The
	// channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Entry

	// Len returns the current number of queued entries.
	Len(ctx context.Context) int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops accepting entries. Queued entries can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	entries  chan Entry
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the buffer. Non-positive values keep the default.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.entries = make(chan Entry, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an entry without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Entry) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.entries <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.entries))
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel fed from the queue until it is closed or ctx is
// done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Entry {
	out := make(chan Entry)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-q.entries:
				if !ok {
					return
				}
				select {
				case out <- e:
					metrics.RecordQueueDequeue()
					metrics.UpdateQueueSize(len(q.entries))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the number of entries waiting in the buffer.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.entries)
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting entries.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.entries)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
