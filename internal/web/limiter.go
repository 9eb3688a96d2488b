package web

// limiter.go serializes validation runs started over HTTP.
//
// Runs are stamped to the second and share output directories, so only one
// may be active at a time. A request that finds the slot taken waits up to
// maxWait for it, then fails with core.ErrRunInProgress.

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

// RunLimiter is a single-slot semaphore for validation runs.
type RunLimiter struct {
	slot    chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewRunLimiter creates a limiter. A zero maxWait rejects immediately when
// a run is active.
func NewRunLimiter(maxWait time.Duration) *RunLimiter {
	if maxWait < 0 {
		maxWait = 0
	}
	return &RunLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the run slot. The caller must call Release when done.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}
	if l.maxWait == 0 {
		return core.ErrRunInProgress
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return core.ErrRunInProgress
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes the run slot without waiting.
func (l *RunLimiter) TryAcquire() bool {
	select {
	case l.slot <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees the slot taken by Acquire or TryAcquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slot
}

// Busy reports whether a run is active.
func (l *RunLimiter) Busy() bool {
	return l.active.Load() > 0
}
