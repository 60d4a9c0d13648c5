package governor

import (
	"context"
	"sync"
)

// Semaphore is a counting semaphore bounding concurrent provider calls.
// Acquisition blocks rather than rejects: excess calls queue until a
// permit frees. Wakeup is FIFO over waiters, so no caller starves while
// permits circulate.
type Semaphore struct {
	mu       sync.Mutex
	capacity int
	held     int
	waiters  []chan struct{}
}

// DefaultPoolSize is the default number of concurrent provider calls.
const DefaultPoolSize = 5

// NewSemaphore creates a semaphore with the given capacity. A capacity
// <= 0 falls back to DefaultPoolSize.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = DefaultPoolSize
	}
	return &Semaphore{capacity: capacity}
}

// TryAcquire takes a permit without blocking. Returns false when the
// pool is exhausted.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held < s.capacity {
		s.held++
		return true
	}
	return false
}

// Acquire takes a permit, blocking until one frees or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s.TryAcquire() {
		return nil
	}

	s.mu.Lock()
	waiter := make(chan struct{})
	s.waiters = append(s.waiters, waiter)
	s.mu.Unlock()

	select {
	case <-waiter:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, w := range s.waiters {
			if w == waiter {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// Lost the race: a Release already handed us the permit
		// after ctx fired. Give it back so the pool stays balanced.
		s.Release()
		return ctx.Err()
	}
}

// Release returns a permit. When waiters queue, the permit transfers
// directly to the oldest one. Release without a held permit is a no-op.
func (s *Semaphore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held <= 0 {
		return
	}

	if len(s.waiters) > 0 {
		waiter := s.waiters[0]
		s.waiters = s.waiters[1:]
		close(waiter)
		// held stays unchanged: the permit moved to the waiter.
		return
	}

	s.held--
}

// Held returns the number of permits currently taken.
func (s *Semaphore) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Capacity returns the pool size.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
