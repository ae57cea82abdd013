package async

import (
	"context"
	"sync"
)

// Result holds the eventual outcome of one Work invocation.
type Result[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Resolved returns a Result that is already settled with the given outcome.
func Resolved[T any](val T, err error) *Result[T] {
	r := newResult[T]()
	r.resolve(val, err)
	return r
}

// resolve settles the result. Calls after the first are ignored.
func (r *Result[T]) resolve(val T, err error) {
	r.once.Do(func() {
		r.val = val
		r.err = err
		close(r.done)
	})
}

// Done returns a channel that is closed once the result is settled.
func (r *Result[T]) Done() <-chan struct{} { return r.done }

// Wait blocks until the result is settled and returns its outcome.
func (r *Result[T]) Wait() (T, error) {
	<-r.done
	return r.val, r.err
}

// Await is like Wait but gives up when ctx ends, returning ctx.Err().
// Giving up abandons the wait only; the underlying work keeps running.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err blocks until the result is settled and returns its error.
func (r *Result[T]) Err() error {
	<-r.done
	return r.err
}
