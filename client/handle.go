package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/panics"

	"github.com/adamwoolhether/asynchttp/client/async"
)

// SuccessFunc receives the Response of a request that completed.
type SuccessFunc func(resp Response)

// ErrorFunc receives the failure of a request as err with a nil resp.
// Unless the client was built with WithStrictErrorCallbacks, it also runs
// when the request completes, with the Response in resp and a nil err.
type ErrorFunc func(resp *Response, err error)

// Handle is the pending outcome of one request. Continuations registered
// on it each run on their own goroutine once the request settles, and each
// receives its own copy of the Response.
type Handle struct {
	result *async.Result[Response]
	tasks  *async.Queue
	logger *slog.Logger
	method string
	url    string

	strictOnError bool
	onFault       func(error)
}

func newHandle(c *Client, method, url string, result *async.Result[Response]) *Handle {
	return &Handle{
		result:        result,
		tasks:         c.callbacks,
		logger:        c.logger,
		method:        method,
		url:           url,
		strictOnError: c.strictOnError,
		onFault:       c.onFault,
	}
}

// OnSuccess runs fn once with the Response if the request completes.
// Failures are not reported to fn, and a panic inside fn is recovered
// and logged without reaching the caller.
//
// Register continuations before calling [Client.Wait]; registering one
// while Wait is returning is a data race on the client's task tracking.
func (h *Handle) OnSuccess(fn SuccessFunc) *Handle {
	if fn == nil {
		return h
	}

	h.tasks.Spawn(func() {
		resp, err := h.result.Wait()
		if err != nil {
			return
		}

		h.deliver("success", func() { fn(resp.clone()) })
	})

	return h
}

// OnError runs fn once when the request settles; see ErrorFunc for
// which outcomes reach it. As with OnSuccess, register it before
// calling [Client.Wait].
func (h *Handle) OnError(fn ErrorFunc) *Handle {
	if fn == nil {
		return h
	}

	h.tasks.Spawn(func() {
		resp, err := h.result.Wait()
		switch {
		case err != nil:
			h.deliver("error", func() { fn(nil, err) })
		case !h.strictOnError:
			cpy := resp.clone()
			h.deliver("error", func() { fn(&cpy, nil) })
		}
	})

	return h
}

// Await blocks until the request settles or ctx ends. Ending ctx stops
// the wait only; the request itself keeps running.
func (h *Handle) Await(ctx context.Context) (Response, error) {
	resp, err := h.result.Await(ctx)
	if err != nil {
		return Response{}, err
	}
	return resp.clone(), nil
}

// Done returns a channel that is closed once the request settles.
func (h *Handle) Done() <-chan struct{} {
	return h.result.Done()
}

// deliver runs a continuation, converting a panic into a logged fault.
func (h *Handle) deliver(kind string, call func()) {
	var pc panics.Catcher
	pc.Try(call)

	r := pc.Recovered()
	if r == nil {
		return
	}

	err := fmt.Errorf("%w: %s callback for %s %s: %w", ErrCallbackPanic, kind, h.method, h.url, r.AsError())
	h.logger.Error("callback panicked", "callback", kind, "method", h.method, "url", h.url, "panic", fmt.Sprint(r.Value))

	if h.onFault == nil {
		return
	}

	var hook panics.Catcher
	hook.Try(func() { h.onFault(err) })
	if hr := hook.Recovered(); hr != nil {
		h.logger.Error("callback fault handler panicked", "url", h.url, "panic", fmt.Sprint(hr.Value))
	}
}
