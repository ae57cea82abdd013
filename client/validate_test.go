package client_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/asynchttp/client"
)

func TestWithConfig_Invalid(t *testing.T) {
	testCases := map[string]struct {
		cfg      client.Config
		expField string
	}{
		"negativeTimeout": {
			cfg:      client.Config{Timeout: -time.Second},
			expField: "timeout",
		},
		"negativeMaxConcurrent": {
			cfg:      client.Config{MaxConcurrent: -1},
			expField: "maxConcurrent",
		},
		"contentTypeWithoutSubtype": {
			cfg:      client.Config{ContentType: "json"},
			expField: "contentType",
		},
		"burstWithoutRPS": {
			cfg:      client.Config{ThrottleBurst: 5},
			expField: "throttleRps",
		},
		"rpsWithoutBurst": {
			cfg:      client.Config{ThrottleRPS: 5},
			expField: "throttleBurst",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := client.Build(client.WithConfig(tc.cfg))
			if err == nil {
				t.Fatal("expected validation error")
			}

			var fe client.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}
			if _, ok := fe.Fields()[tc.expField]; !ok {
				t.Errorf("expected %q field error, got %v", tc.expField, fe.Fields())
			}
		})
	}
}

func TestWithConfig_Required(t *testing.T) {
	_, err := client.Build(client.WithConfig(client.Config{ThrottleBurst: 5}))

	var fe client.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	if msg := fe.Fields()["throttleRps"]; msg != "This field is required" {
		t.Errorf("throttleRps error = %q, want %q", msg, "This field is required")
	}
}

func TestWithConfig_Applied(t *testing.T) {
	var got *http.Request
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    r,
		}, nil
	})

	c, err := client.Build(
		client.WithTransport(rt),
		client.WithConfig(client.Config{
			UserAgent:            "configured/1.0",
			ContentType:          "text/plain",
			MaxConcurrent:        4,
			ThrottleRPS:          100,
			ThrottleBurst:        10,
			StrictErrorCallbacks: true,
			Headers:              map[string]string{"X-Config": "yes"},
		}),
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var onErrorCalls int
	h := c.Post("http://example.com/", "body").OnError(func(*client.Response, error) {
		onErrorCalls++
	})
	if _, err := await(t, h); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	c.Wait()

	if ua := got.Header.Get("User-Agent"); ua != "configured/1.0" {
		t.Errorf("expected configured User-Agent, got %q", ua)
	}
	if ct := got.Header.Get("Content-Type"); ct != "text/plain" {
		t.Errorf("expected configured Content-Type, got %q", ct)
	}
	if v := got.Header.Get("X-Config"); v != "yes" {
		t.Errorf("expected configured default header, got %q", v)
	}
	if onErrorCalls != 0 {
		t.Errorf("expected strict error callbacks, got %d calls on success", onErrorCalls)
	}
}

func TestWithConfig_Headers(t *testing.T) {
	testCases := map[string]struct {
		headers map[string]string
		wantErr bool
	}{
		"emptyName":  {headers: map[string]string{"": "x"}, wantErr: true},
		"emptyValue": {headers: map[string]string{"X-Ok": ""}, wantErr: true},
		"valid":      {headers: map[string]string{"X-Ok": "1"}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := client.Build(client.WithConfig(client.Config{Headers: tc.headers}))

			var fe client.FieldErrors
			switch {
			case tc.wantErr && !errors.As(err, &fe):
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			case !tc.wantErr && err != nil:
				t.Fatalf("expected no error, got: %v", err)
			}
		})
	}
}
