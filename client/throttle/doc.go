// Package throttle rate-limits outbound requests with a token bucket
// from [golang.org/x/time/rate].
//
// The client installs it as the outermost transport layer when built with
// client.WithThrottle, so every request started by Get or Post takes a
// token before it is sent. A request that cannot get a token waits until
// one frees up, its context ends, or it is bound to exceed its deadline:
//
//	rt, err := throttle.NewRoundTripper(20, 5, loggerFn, http.DefaultTransport)
//
// Failures to wait are reported as [ErrContextEnded] or [ErrWaitingFailed]
// so callers can tell throttling apart from network errors. An exhausted
// bucket is logged through the logger returned by the supplied func.
package throttle
