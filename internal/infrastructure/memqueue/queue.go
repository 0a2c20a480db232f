// Package memqueue is the in-process notification transport: a FIFO buffer
// guarded by a single mutex. Pending notifications do not survive a restart.
package memqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/contoso-notify/internal/domain"
)

const initialSize = 16

// Queue is a growable ring buffer. A zero capacity means unbounded.
type Queue struct {
	mu       sync.Mutex
	buf      []*domain.Notification
	head     int
	count    int
	capacity int
}

func New(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	size := initialSize
	if capacity > 0 && capacity < size {
		size = capacity
	}
	return &Queue{buf: make([]*domain.Notification, size), capacity: capacity}
}

// Enqueue appends n. It fails fast with domain.ErrQueueFull instead of
// waiting for room.
func (q *Queue) Enqueue(_ context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("enqueue nil notification: %w", domain.ErrBadRequest)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.count >= q.capacity {
		return fmt.Errorf("memqueue at capacity %d: %w", q.capacity, domain.ErrQueueFull)
	}
	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.count)%len(q.buf)] = n
	q.count++
	return nil
}

// TryDequeue never blocks; it returns (nil, nil) when the queue is empty.
func (q *Queue) TryDequeue(_ context.Context) (*domain.Notification, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil, nil
	}
	n := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return n, nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// grow doubles the buffer, unwrapping it so head starts at zero. Caller holds mu.
func (q *Queue) grow() {
	size := len(q.buf) * 2
	if q.capacity > 0 && size > q.capacity {
		size = q.capacity
	}
	next := make([]*domain.Notification, size)
	for i := 0; i < q.count; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}
