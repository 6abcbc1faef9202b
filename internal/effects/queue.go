package effects

import (
	"errors"
	"sync"

	"broodlink/internal/shm"
)

// Queue is safe for many concurrent producers. Flush must only be called by
// the single frame driver.
type Queue struct {
	mu      sync.Mutex
	pending []Effect
}

func (q *Queue) Enqueue(e Effect) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush applies every pending effect in enqueue order and empties the queue.
// Effects that fail (a full buffer) are dropped, not retried; the returned
// error joins their failures.
func (q *Queue) Flush(out shm.Outbox) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	applied := 0
	var errs []error
	for _, e := range q.pending {
		if err := e.Apply(out); err != nil {
			errs = append(errs, err)
			continue
		}
		applied++
	}
	clear(q.pending)
	q.pending = q.pending[:0]
	return applied, errors.Join(errs...)
}

// Apply writes e immediately, serialized with Flush.
func (q *Queue) Apply(e Effect, out shm.Outbox) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return e.Apply(out)
}
