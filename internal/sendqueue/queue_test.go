package sendqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	chaterrors "github.com/RezaAbdollahi2002/homebase-chat-go/internal/errors"
)

type noopJob struct{}

func (n noopJob) Run(ctx context.Context) error { return nil }

type testJob struct{ run func(context.Context) error }

func (t testJob) Run(ctx context.Context) error { return t.run(ctx) }

func TestQueue_SubmitAndStop(t *testing.T) {
	t.Parallel()
	q := New(Config{})
	defer q.Stop()

	if err := q.Submit(context.Background(), "42", noopJob{}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
}

// FIFO ordering for a single conversation.
func TestQueue_FIFOOrdering(t *testing.T) {
	q := New(Config{Shards: 4, QueueSize: 10})
	defer q.Stop()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(5)
	for i := 0; i < 5; i++ {
		v := i
		if err := q.Submit(context.Background(), "conv1", testJob{run: func(ctx context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			wg.Done()
			return nil
		}}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for jobs")
	}

	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

// Jobs for different conversations run in parallel (no head-of-line blocking).
func TestQueue_ParallelDifferentKeys(t *testing.T) {
	q := New(Config{Shards: 4, QueueSize: 10})
	defer q.Stop()

	start := make(chan struct{})
	done := make(chan struct{})

	_ = q.Submit(context.Background(), "A", testJob{run: func(context.Context) error {
		<-start
		close(done)
		return nil
	}})
	_ = q.Submit(context.Background(), "B", testJob{run: func(context.Context) error {
		close(start)
		<-done
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs blocked each other; expected parallelism")
	}
}

func TestQueue_QueueFull(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer q.Stop()

	// Block the single worker so the buffer can fill.
	blockCtx, cancel := context.WithCancel(context.Background())
	var started int32
	_ = q.Submit(context.Background(), "same", JobFunc(func(ctx context.Context) error {
		atomic.StoreInt32(&started, 1)
		<-blockCtx.Done()
		return nil
	}))
	for atomic.LoadInt32(&started) == 0 {
		time.Sleep(time.Millisecond)
	}

	_ = q.Submit(context.Background(), "same", noopJob{})
	err := q.Submit(context.Background(), "same", noopJob{})
	if err == nil {
		t.Fatal("expected queue full error")
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) || qf.Capacity != 1 {
		t.Fatalf("expected *QueueFullError with capacity 1, got %v", err)
	}
	cancel()
}

// Submit after Stop should fail with ErrQueueClosed.
func TestQueue_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 2, QueueSize: 2})
	q.Stop()

	if err := q.Submit(context.Background(), "Z", noopJob{}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

// Stop is idempotent and drains buffered jobs.
func TestQueue_StopDrains(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 1, QueueSize: 16})

	var ran int32
	release := make(chan struct{})
	_ = q.Submit(context.Background(), "c", JobFunc(func(context.Context) error {
		<-release
		return nil
	}))
	for i := 0; i < 5; i++ {
		_ = q.Submit(context.Background(), "c", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	close(release)
	q.Stop()
	q.Stop() // second call is a no-op

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Fatalf("expected 5 drained jobs, got %d", got)
	}
}

func TestQueue_BarrierFlushesKey(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 2, QueueSize: 16})
	defer q.Stop()

	var ran int32
	for i := 0; i < 10; i++ {
		_ = q.Submit(context.Background(), "conv7", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Barrier(ctx, "conv7"); err != nil {
		t.Fatalf("barrier error: %v", err)
	}
	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Fatalf("expected all 10 jobs before barrier, got %d", got)
	}
}

// A recoverable failure is retried until it succeeds.
func TestQueue_RetriesRecoverableFailure(t *testing.T) {
	t.Parallel()
	var handlerCalls int32
	q := New(Config{
		Shards:       1,
		MaxAttempts:  5,
		BaseBackoff:  time.Millisecond,
		ErrorHandler: func(error) { atomic.AddInt32(&handlerCalls, 1) },
	})
	defer q.Stop()

	var attempts int32
	done := make(chan struct{})
	_ = q.Submit(context.Background(), "c", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return chaterrors.NewHTTPError(500, "flaky", "persist")
		}
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if atomic.LoadInt32(&handlerCalls) != 0 {
		t.Fatal("error handler must not fire for a recovered job")
	}
}

// An irrecoverable failure goes straight to the error handler, no retries.
func TestQueue_IrrecoverableFailsFast(t *testing.T) {
	t.Parallel()
	handled := make(chan error, 1)
	q := New(Config{
		Shards:       1,
		MaxAttempts:  5,
		BaseBackoff:  time.Millisecond,
		ErrorHandler: func(err error) { handled <- err },
	})
	defer q.Stop()

	var attempts int32
	_ = q.Submit(context.Background(), "c", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return chaterrors.NewHTTPError(403, "forbidden", "persist")
	}))

	select {
	case err := <-handled:
		if !chaterrors.IsIrrecoverable(err) {
			t.Fatalf("handler received unclassified error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error handler never fired")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("irrecoverable failure must not retry, got %d attempts", got)
	}
}

// A job whose context is already cancelled is skipped, not run.
func TestQueue_CanceledJobSkipped(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 1, QueueSize: 4})
	defer q.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	_ = q.Submit(context.Background(), "c", JobFunc(func(context.Context) error { return nil }))
	if err := q.Submit(ctx, "c", JobFunc(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected submit error: %v", err)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), time.Second)
	defer flushCancel()
	_ = q.Barrier(flushCtx, "c")

	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("cancelled job should not run")
	}
}

// A panicking job must not take down other workers permanently; the queue
// still accepts and drains work on other shards.
func TestQueue_WorkerPanicIsolated(t *testing.T) {
	t.Parallel()
	q := New(Config{Shards: 4, QueueSize: 4})
	defer q.Stop()

	_ = q.Submit(context.Background(), "boom", JobFunc(func(context.Context) error {
		panic("job panic")
	}))
	time.Sleep(20 * time.Millisecond)

	var ran int32
	for i := 0; i < 8; i++ {
		_ = q.Submit(context.Background(), "other", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = q.Barrier(ctx, "other")
	if atomic.LoadInt32(&ran) == 0 {
		t.Fatal("queue stopped executing after a job panic")
	}
}
