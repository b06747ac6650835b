package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRenderLimiter_Defaults(t *testing.T) {
	l := NewRenderLimiter(0, 0)
	if l.MaxConcurrent() != DefaultMaxConcurrentRenders {
		t.Errorf("MaxConcurrent() = %d, want %d", l.MaxConcurrent(), DefaultMaxConcurrentRenders)
	}
	if l.maxWait != DefaultRenderWait {
		t.Errorf("maxWait = %v, want %v", l.maxWait, DefaultRenderWait)
	}
}

func TestRenderLimiter_AcquireRelease(t *testing.T) {
	l := NewRenderLimiter(2, time.Second)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if l.Active() != 2 {
		t.Errorf("Active() = %d, want 2", l.Active())
	}

	l.Release()
	l.Release()
	if l.Active() != 0 {
		t.Errorf("Active() = %d, want 0", l.Active())
	}
}

func TestRenderLimiter_Timeout(t *testing.T) {
	l := NewRenderLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	start := time.Now()
	err := l.Acquire(ctx)
	if !errors.Is(err, ErrTooManyRenders) {
		t.Fatalf("Acquire() error = %v, want ErrTooManyRenders", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire() returned after %v, expected to wait", elapsed)
	}
}

func TestRenderLimiter_ContextCancelled(t *testing.T) {
	l := NewRenderLimiter(1, time.Minute)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestRenderLimiter_Do(t *testing.T) {
	l := NewRenderLimiter(1, time.Second)

	want := errors.New("render failed")
	err := l.Do(context.Background(), func() error {
		if l.Active() != 1 {
			t.Errorf("Active() inside Do = %d, want 1", l.Active())
		}
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
	if l.Active() != 0 {
		t.Errorf("Active() after Do = %d, want 0", l.Active())
	}
}

func TestRenderLimiter_ConcurrencyBound(t *testing.T) {
	l := NewRenderLimiter(3, 5*time.Second)

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() error {
				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRenderLimiter_WaitForDrain(t *testing.T) {
	l := NewRenderLimiter(2, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain() error = %v", err)
	}
}

func TestRenderLimiter_WaitForDrainTimeout(t *testing.T) {
	l := NewRenderLimiter(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() error = %v, want DeadlineExceeded", err)
	}
}

func TestRenderLimiter_CancelWhileWaiting(t *testing.T) {
	l := NewRenderLimiter(1, time.Minute)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := l.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
	if l.Active() != 1 {
		t.Errorf("Active() = %d, want 1", l.Active())
	}
}

func TestRenderLimiter_SlotReusableAfterTimeout(t *testing.T) {
	l := NewRenderLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Acquire(ctx); !errors.Is(err, ErrTooManyRenders) {
		t.Fatalf("Acquire() error = %v, want ErrTooManyRenders", err)
	}
	l.Release()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	l.Release()
	if l.Active() != 0 {
		t.Errorf("Active() = %d, want 0", l.Active())
	}
}
