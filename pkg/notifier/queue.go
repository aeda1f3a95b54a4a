package notifier

import (
	"sync"
	"time"
)

// PendingConfirmation is a borrow confirmation that could not be published
// and is waiting for another delivery attempt.
type PendingConfirmation struct {
	Confirmation Confirmation
	RetryAt      time.Time
	Attempts     int
	MaxAttempts  int
}

// RetryQueue holds undelivered confirmations until their retry time is due.
type RetryQueue struct {
	mu    sync.Mutex
	items []*PendingConfirmation
}

func NewRetryQueue() *RetryQueue {
	return &RetryQueue{items: make([]*PendingConfirmation, 0)}
}

func (q *RetryQueue) Enqueue(p *PendingConfirmation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, p)
}

// Dequeue removes and returns the first confirmation whose retry time has
// passed, or nil when nothing is due yet.
func (q *RetryQueue) Dequeue(now time.Time) *PendingConfirmation {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.items {
		if !p.RetryAt.After(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return p
		}
	}
	return nil
}

func (q *RetryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
