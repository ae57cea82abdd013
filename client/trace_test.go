package client_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/asynchttp/client"
)

// useTraceContext installs the W3C propagator for the duration of the test.
func useTraceContext(t *testing.T) {
	t.Helper()

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

// requestIDs returns the requestID attribute of every JSON log record in buf.
func requestIDs(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()

	var ids []string
	dec := json.NewDecoder(buf)
	for {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return ids
			}
			t.Fatalf("decoding log record: %v", err)
		}
		if id, ok := rec["requestID"].(string); ok {
			ids = append(ids, id)
		}
	}
}

func recordingTracer() (*tracetest.SpanRecorder, trace.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, tp.Tracer("client_test")
}

func TestClient_TracesRequest(t *testing.T) {
	useTraceContext(t)
	sr, tracer := recordingTracer()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var traceparent string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		traceparent = r.Header.Get("Traceparent")
		return &http.Response{
			StatusCode: http.StatusAccepted,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    r,
		}, nil
	})

	c := mustBuild(t, client.WithTransport(rt), client.WithTracer(tracer), client.WithLogger(logger))

	if _, err := await(t, c.Get("http://example.com/traced")); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	c.Wait()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name() != "asynchttp.execute" {
		t.Errorf("span name = %q, want %q", span.Name(), "asynchttp.execute")
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want %v", span.SpanKind(), trace.SpanKindClient)
	}
	if span.Status().Code == codes.Error {
		t.Errorf("expected span without error status, got %v", span.Status())
	}

	var status int64
	for _, attr := range span.Attributes() {
		if attr.Key == "http.response.status_code" {
			status = attr.Value.AsInt64()
		}
	}
	if status != http.StatusAccepted {
		t.Errorf("status attribute = %d, want %d", status, http.StatusAccepted)
	}

	traceID := span.SpanContext().TraceID().String()
	spanID := span.SpanContext().SpanID().String()
	if want := "00-" + traceID + "-" + spanID + "-01"; traceparent != want {
		t.Errorf("Traceparent = %q, want %q", traceparent, want)
	}

	ids := requestIDs(t, &logs)
	if len(ids) == 0 {
		t.Fatal("expected request logs")
	}
	for _, id := range ids {
		if id != traceID {
			t.Errorf("requestID = %q, want trace ID %q", id, traceID)
		}
	}
}

func TestClient_TracesFailure(t *testing.T) {
	sr, tracer := recordingTracer()

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})

	c := mustBuild(t, client.WithTransport(rt), client.WithTracer(tracer))

	if _, err := await(t, c.Get("http://example.com/")); err == nil {
		t.Fatal("expected error")
	}
	c.Wait()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	if code := spans[0].Status().Code; code != codes.Error {
		t.Errorf("span status = %v, want %v", code, codes.Error)
	}

	var recorded bool
	for _, ev := range spans[0].Events() {
		if ev.Name == "exception" {
			recorded = true
		}
	}
	if !recorded {
		t.Error("expected the failure to be recorded on the span")
	}
}

func TestClient_RequestIDWithoutTrace(t *testing.T) {
	useTraceContext(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var traceparent string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		traceparent = r.Header.Get("Traceparent")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    r,
		}, nil
	})

	c := mustBuild(t,
		client.WithTransport(rt),
		client.WithTracer(noop.NewTracerProvider().Tracer("")),
		client.WithLogger(logger),
	)

	if _, err := await(t, c.Get("http://example.com/")); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	c.Wait()

	if traceparent != "" {
		t.Errorf("expected no Traceparent without an active trace, got %q", traceparent)
	}

	ids := requestIDs(t, &logs)
	if len(ids) == 0 {
		t.Fatal("expected request logs")
	}
	if _, err := uuid.Parse(ids[0]); err != nil {
		t.Errorf("requestID %q is not a uuid: %v", ids[0], err)
	}
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Errorf("requestID changed within one request: %q then %q", ids[0], id)
		}
	}
}
