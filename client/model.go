package client

import (
	"errors"
	"fmt"
	"maps"
)

// defaultContentType is sent with every POST body unless
// overridden via WithContentType.
const defaultContentType = "application/json"

var (
	// ErrClientClosed is the failure of requests issued after [Client.Close].
	ErrClientClosed = errors.New("client closed")
	// ErrExecutorPanic is wrapped by [RequestError] when executing a request panicked.
	ErrExecutorPanic = errors.New("request executor panicked")
	// ErrInvalidPath is wrapped by [RequestError] when a URL path holds
	// control characters that cannot be written on a request line.
	ErrInvalidPath = errors.New("invalid control character in URL path")
	// ErrCallbackPanic is reported to the fault handler when a continuation panics.
	ErrCallbackPanic = errors.New("callback panicked")
)

// Response is the normalized outcome of a completed request.
// Body is always UTF-8 text and Headers holds one value per name,
// with repeated response headers joined by ", ".
type Response struct {
	URL     string            `json:"url"`
	Body    string            `json:"data"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
}

// clone returns a copy that shares nothing mutable with r.
func (r Response) clone() Response {
	r.Headers = maps.Clone(r.Headers)
	return r
}

// RequestError describes a request that never produced a Response.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
