package pool

import (
	"context"
	"sync"
	"time"
)

// Throttle is a cooperative rate-limit checkpoint. Every completed task calls
// Done; every PauseEvery-th completion opens a pause window that all workers
// honor in Wait before starting their next task.
type Throttle struct {
	every int
	pause time.Duration

	mu        sync.Mutex
	completed int
	pauses    int
	resumeAt  time.Time
}

// NewThrottle returns a throttle pausing for pause after every n completions.
// n <= 0 or pause <= 0 disables pausing.
func NewThrottle(n int, pause time.Duration) *Throttle {
	return &Throttle{every: n, pause: pause}
}

func (t *Throttle) enabled() bool {
	return t.every > 0 && t.pause > 0
}

// Done records one completed task.
func (t *Throttle) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	if t.enabled() && t.completed%t.every == 0 {
		t.resumeAt = time.Now().Add(t.pause)
		t.pauses++
	}
}

// Wait blocks until the current pause window, if any, has elapsed.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	d := time.Until(t.resumeAt)
	t.mu.Unlock()
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Completed returns the number of tasks recorded so far.
func (t *Throttle) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Pauses returns how many pause windows have been opened.
func (t *Throttle) Pauses() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pauses
}
