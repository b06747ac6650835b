package core

// render_limiter.go bounds concurrent chart rendering.
//
// Rasterizing a chart is the most CPU- and memory-hungry step of a request.
// The limiter admits at most maxConcurrent renders; a request that cannot get
// a slot within maxWait fails with ErrTooManyRenders. WaitForDrain lets the
// server finish in-flight renders during shutdown.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyRenders is returned when every render slot stays occupied for
// the whole wait period.
var ErrTooManyRenders = errors.New("too many chart renders in progress, please try again later")

const (
	DefaultMaxConcurrentRenders = 4
	DefaultRenderWait           = 5 * time.Second
)

// RenderLimiter bounds chart renders with a weighted semaphore.
type RenderLimiter struct {
	sem     *semaphore.Weighted
	size    int
	maxWait time.Duration
	active  atomic.Int64
}

// NewRenderLimiter creates a limiter. Non-positive arguments fall back to
// the defaults.
func NewRenderLimiter(maxConcurrent int, maxWait time.Duration) *RenderLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRenders
	}
	if maxWait <= 0 {
		maxWait = DefaultRenderWait
	}
	return &RenderLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		size:    maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire waits for a render slot. The caller must Release it.
func (l *RenderLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrTooManyRenders
	}
	l.active.Add(1)
	return nil
}

// Release frees a slot taken by Acquire.
func (l *RenderLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Do runs fn while holding a render slot.
func (l *RenderLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// Active returns the number of renders in progress.
func (l *RenderLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *RenderLimiter) MaxConcurrent() int {
	return l.size
}

// WaitForDrain blocks until no render is in progress or ctx is done.
func (l *RenderLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
