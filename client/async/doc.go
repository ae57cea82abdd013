// Package async runs work on tracked goroutines and exposes the outcome
// through a [Result] that any number of goroutines may wait on.
//
// # Starting Work
//
// [Go] launches a [Work] function on a [Queue] and returns its Result:
//
//	q := async.NewQueue(0) // unbounded
//	r := async.Go(ctx, q, func(ctx context.Context) (string, error) {
//		return fetch(ctx)
//	})
//
// # Waiting
//
// A Result resolves exactly once. [Result.Wait] and [Result.Await] never
// consume the outcome, so independent waiters all observe the same value:
//
//	v, err := r.Wait()
//	v, err = r.Await(ctx) // returns ctx.Err() if ctx ends first
//
// A Queue created with a positive limit caps how many Work functions run at
// once; the rest block on the queue's semaphore until a slot frees up.
package async
