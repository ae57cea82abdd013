package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/asynchttp/client/async"
	"github.com/adamwoolhether/asynchttp/client/header"
	"github.com/adamwoolhether/asynchttp/client/throttle"
)

const tracerName = "github.com/adamwoolhether/asynchttp/client"

// Client wraps the std-lib *http.Client with a set of default headers
// and runs every request asynchronously.
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c       *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	headers *header.Store

	requests  *async.Queue
	callbacks *async.Queue

	contentType   string
	strictOnError bool
	detectCharset bool
	onFault       func(error)
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:           &http.Client{},
		logger:      slog.Default(),
		headers:     header.NewStore(),
		callbacks:   async.NewQueue(0),
		contentType: defaultContentType,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	client.tracer = opts.tracer
	if client.tracer == nil {
		client.tracer = otel.Tracer(tracerName)
	}

	if opts.contentType != "" {
		client.contentType = opts.contentType
	}
	client.requests = async.NewQueue(opts.maxConcurrent)
	client.strictOnError = opts.strictOnError
	client.detectCharset = opts.detectCharset
	client.onFault = opts.onFault

	for k, v := range opts.headers {
		client.headers.Add(k, v)
	}

	return client, nil
}

// Get issues a GET request for url without blocking.
func (c *Client) Get(url string) *Handle {
	return c.dispatch(http.MethodGet, url, nil)
}

// Post issues a POST request for url without blocking. body is sent
// as-is with the client's POST content type, "application/json" by default.
func (c *Client) Post(url, body string) *Handle {
	return c.dispatch(http.MethodPost, url, &body)
}

// AddHeader sets a default header sent with every later request.
// Requests already issued keep the headers they started with.
func (c *Client) AddHeader(key, value string) {
	c.headers.Add(key, value)
}

// RemoveHeader deletes a default header. Removing an unknown key is a no-op.
func (c *Client) RemoveHeader(key string) {
	c.headers.Remove(key)
}

// Headers returns a copy of the current default headers.
func (c *Client) Headers() header.Snapshot {
	return c.headers.Snapshot()
}

// Wait blocks until every issued request and every registered
// continuation has finished. Continuations must be registered
// before Wait is called.
func (c *Client) Wait() {
	c.requests.Wait()
	c.callbacks.Wait()
}

// Close stops the client from issuing new requests; they fail with
// ErrClientClosed. Requests and continuations already running are left
// to finish. Use Wait to block on them.
func (c *Client) Close() {
	c.requests.Shutdown()
}

// dispatch snapshots the default headers and starts the request
// on the request queue.
func (c *Client) dispatch(method, rawURL string, body *string) *Handle {
	if c.requests.IsShutdown() {
		err := &RequestError{Method: method, URL: rawURL, Err: ErrClientClosed}
		return newHandle(c, method, rawURL, async.Resolved(Response{}, error(err)))
	}

	call := request{
		method:  method,
		rawURL:  rawURL,
		headers: c.headers.Snapshot(),
		body:    body,
	}

	result := async.Go(context.Background(), c.requests, func(ctx context.Context) (Response, error) {
		return c.execute(ctx, call)
	})

	return newHandle(c, method, rawURL, result)
}
