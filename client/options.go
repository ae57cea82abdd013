package client

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/asynchttp/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	maxConcurrent     int
	contentType       string
	strictOnError     bool
	detectCharset     bool
	onFault           func(error)
	headers           map[string]string
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// Without it, requests are bounded only by the transport's own limits.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to record one span per request.
// The default comes from the global otel TracerProvider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithMaxConcurrent caps the number of requests executing at once.
// Excess requests wait for a free slot. Zero means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(c *options) error {
		if n < 0 {
			return errors.New("max concurrent must not be negative")
		}
		c.maxConcurrent = n
		return nil
	}
}

// WithContentType overrides the "application/json" Content-Type sent with POST bodies.
func WithContentType(contentType string) Option {
	return func(c *options) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}
		c.contentType = contentType
		return nil
	}
}

// WithStrictErrorCallbacks makes [Handle.OnError] continuations run only
// when the request fails. By default they also run on success, receiving
// the Response.
func WithStrictErrorCallbacks() Option {
	return func(c *options) error {
		c.strictOnError = true
		return nil
	}
}

// WithCharsetDetection sniffs the encoding of responses that declare no
// charset, instead of treating them as UTF-8.
func WithCharsetDetection() Option {
	return func(c *options) error {
		c.detectCharset = true
		return nil
	}
}

// WithCallbackFaultHandler registers fn to receive panics recovered from
// continuations, wrapped in ErrCallbackPanic. fn runs on the callback's goroutine.
func WithCallbackFaultHandler(fn func(error)) Option {
	return func(c *options) error {
		if fn == nil {
			return errors.New("fault handler must not be nil")
		}
		c.onFault = fn
		return nil
	}
}

// WithDefaultHeaders seeds the client's header store.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *options) error {
		for k := range headers {
			if strings.TrimSpace(k) == "" {
				return errors.New("header name must not be empty")
			}
		}
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		maps.Copy(c.headers, headers)
		return nil
	}
}

// Config is a declarative alternative to the individual options,
// suitable for decoding from JSON. Zero values leave defaults in place.
type Config struct {
	Timeout              time.Duration     `json:"timeout" validate:"gte=0"`
	UserAgent            string            `json:"userAgent" validate:"omitempty,printascii"`
	ContentType          string            `json:"contentType" validate:"omitempty,contains=/"`
	MaxConcurrent        int               `json:"maxConcurrent" validate:"gte=0"`
	ThrottleRPS          int               `json:"throttleRps" validate:"required_with=ThrottleBurst,gte=0"`
	ThrottleBurst        int               `json:"throttleBurst" validate:"required_with=ThrottleRPS,gte=0"`
	NoFollowRedirects    bool              `json:"noFollowRedirects"`
	StrictErrorCallbacks bool              `json:"strictErrorCallbacks"`
	DetectCharset        bool              `json:"detectCharset"`
	Headers              map[string]string `json:"headers" validate:"dive,keys,required,endkeys,required"`
}

// WithConfig validates cfg and applies every field that is set.
// Validation failures are returned as [FieldErrors].
func WithConfig(cfg Config) Option {
	return func(c *options) error {
		if err := validateConfig(cfg); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		if cfg.Timeout > 0 {
			timeout := cfg.Timeout
			c.timeout = &timeout
		}
		if cfg.UserAgent != "" {
			c.userAgent = cfg.UserAgent
		}
		if cfg.ContentType != "" {
			c.contentType = cfg.ContentType
		}
		if cfg.MaxConcurrent > 0 {
			c.maxConcurrent = cfg.MaxConcurrent
		}
		if cfg.ThrottleRPS > 0 {
			c.throttle = &throttle.Config{RPS: cfg.ThrottleRPS, Burst: cfg.ThrottleBurst}
		}
		c.noFollowRedirects = c.noFollowRedirects || cfg.NoFollowRedirects
		c.strictOnError = c.strictOnError || cfg.StrictErrorCallbacks
		c.detectCharset = c.detectCharset || cfg.DetectCharset

		if len(cfg.Headers) > 0 {
			if c.headers == nil {
				c.headers = make(map[string]string, len(cfg.Headers))
			}
			maps.Copy(c.headers, cfg.Headers)
		}

		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
