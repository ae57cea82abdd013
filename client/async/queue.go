package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrQueueShutdown is the outcome of work started after [Queue.Shutdown].
var ErrQueueShutdown = errors.New("queue shut down")

// Work is the signature for async work producing a T.
type Work[T any] func(ctx context.Context) (T, error)

// Queue tracks goroutines started through it and optionally caps how
// many of them run Work at the same time.
type Queue struct {
	wg       sync.WaitGroup
	sem      chan struct{}
	shutdown atomic.Bool
}

// NewQueue creates a Queue with the given concurrency limit.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Go launches fn in a new goroutine managed by q and returns a Result
// that settles with fn's outcome. The Result always settles: when ctx
// ends while waiting for a slot, or q is shut down, it fails instead.
func Go[T any](ctx context.Context, q *Queue, fn Work[T]) *Result[T] {
	r := newResult[T]()

	if q.shutdown.Load() {
		var zero T
		r.resolve(zero, ErrQueueShutdown)
		return r
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		var zero T
		release, err := q.acquire(ctx)
		if err != nil {
			r.resolve(zero, err)
			return
		}
		defer release()

		if q.shutdown.Load() {
			r.resolve(zero, ErrQueueShutdown)
			return
		}

		r.resolve(fn(ctx))
	}()

	return r
}

// Spawn runs fn on a tracked goroutine without a concurrency slot.
// It is meant for short-lived tasks that mostly wait on other Results.
func (q *Queue) Spawn(fn func()) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		fn()
	}()
}

// Wait blocks until every goroutine started through q has returned.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Shutdown prevents new work from executing on q. Work that already
// holds a slot runs to completion.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// IsShutdown reports whether Shutdown was called.
func (q *Queue) IsShutdown() bool {
	return q.shutdown.Load()
}

func (q *Queue) acquire(ctx context.Context) (func(), error) {
	if q.sem == nil {
		return func() {}, nil
	}

	select {
	case q.sem <- struct{}{}:
		return func() { <-q.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
