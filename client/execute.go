package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/asynchttp/client/charset"
	"github.com/adamwoolhether/asynchttp/client/header"
)

// request is everything one execution needs, captured at dispatch time.
type request struct {
	method  string
	rawURL  string
	headers header.Snapshot
	body    *string
}

// execute performs one blocking request and turns every failure,
// panics included, into a *RequestError.
func (c *Client) execute(ctx context.Context, call request) (resp Response, err error) {
	ctx, span := c.tracer.Start(ctx, "asynchttp.execute", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.request.method", call.method),
		attribute.String("url.full", call.rawURL),
	)

	requestID := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		requestID = uuid.New().String()
	}
	log := c.logger.With("requestID", requestID, "method", call.method, "url", call.rawURL)

	start := time.Now()
	log.Debug("request started")

	var pc panics.Catcher
	pc.Try(func() {
		resp, err = c.roundTrip(ctx, log, call)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("%w: %w", ErrExecutorPanic, r.AsError())
	}

	if err != nil {
		err = &RequestError{Method: call.method, URL: call.rawURL, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		log.Error("request failed", "error", err, "since", time.Since(start).String())
		return Response{}, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	log.Debug("request completed", "status", resp.Status, "since", time.Since(start).String())

	return resp, nil
}

// roundTrip sends call over the wire and normalizes what comes back.
func (c *Client) roundTrip(ctx context.Context, log *slog.Logger, call request) (Response, error) {
	target := ParseURL(call.rawURL)

	var payload io.Reader
	if call.body != nil {
		payload = strings.NewReader(*call.body)
	}

	u, err := target.requestURL()
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, call.method, "", payload)
	if err != nil {
		return Response{}, fmt.Errorf("instantiating request: %w", err)
	}
	req.URL = u

	if target.usesDefaultPort() {
		req.Host = target.Host
	}
	call.headers.Apply(req.Header)
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if call.body != nil {
		req.Header.Set("Content-Type", c.contentType)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.c.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("exec http do: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading body: %w", err)
	}

	headers := header.Merge(resp.Header)

	return Response{
		URL:     call.rawURL,
		Body:    c.decode(log, raw, headers["Content-Type"]),
		Status:  resp.StatusCode,
		Headers: headers,
	}, nil
}

// decode converts raw to UTF-8 using the charset declared in contentType.
// A body that cannot be converted is passed through unchanged.
func (c *Client) decode(log *slog.Logger, raw []byte, contentType string) string {
	label := charset.FromContentType(contentType)
	if label == "" && c.detectCharset {
		label = charset.Detect(raw)
	}

	text, err := charset.Normalize(raw, label)
	if err != nil {
		log.Warn("charset normalization skipped", "charset", label, "error", err)
	}

	return text
}
