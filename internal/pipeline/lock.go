package pipeline

import "sync/atomic"

// runLock provides non-blocking single-writer semantics for indexing runs.
// A second run requested while one is in flight is rejected, never queued,
// so a torn upsert cannot occur.
type runLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking
func (l *runLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Only the acquiring goroutine may call it.
func (l *runLock) Release() {
	l.state.Store(0)
}
