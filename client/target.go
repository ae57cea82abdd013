package client

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var urlPattern = regexp.MustCompile(`^(https?)://([^/ :]+)(:(\d+))?(/[^ ]*)?$`)

// Target is a URL decomposed into the parts needed to reach a server.
type Target struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// ParseURL decomposes raw into a Target.
//
// Only "http" and "https" URLs are recognized. The port defaults to 80 or
// 443 by scheme and the path to "/"; the path keeps any query string as-is.
// Input that does not match degrades to {http, "", 80, "/"} instead of
// failing, leaving the empty host to be rejected by the transport.
func ParseURL(raw string) Target {
	t := Target{Scheme: "http", Port: 80, Path: "/"}

	m := urlPattern.FindStringSubmatch(raw)
	if m == nil {
		return t
	}

	port := defaultPort(m[1])
	if m[4] != "" {
		p, err := strconv.Atoi(m[4])
		if err != nil || p < 1 || p > 65535 {
			return t
		}
		port = p
	}

	t.Scheme = m[1]
	t.Host = m[2]
	t.Port = port
	if m[5] != "" {
		t.Path = m[5]
	}

	return t
}

// HostPort returns "host:port", or "" when the target has no host.
func (t Target) HostPort() string {
	if t.Host == "" {
		return ""
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String renders the URL the request is sent to.
func (t Target) String() string {
	return t.Scheme + "://" + t.HostPort() + t.Path
}

// requestURL builds the URL the request is sent to. Path travels in
// Opaque so it reaches the wire exactly as written, without escaping
// or normalization.
func (t Target) requestURL() (*url.URL, error) {
	if strings.ContainsFunc(t.Path, isCTL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, t.Path)
	}

	opaque := t.Path

	// A leading "//" would be read as an authority, so send the absolute form.
	if strings.HasPrefix(opaque, "//") {
		opaque = "//" + t.HostPort() + opaque
	}

	return &url.URL{Scheme: t.Scheme, Host: t.HostPort(), Opaque: opaque}, nil
}

func isCTL(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// usesDefaultPort reports whether the port is the scheme's default.
func (t Target) usesDefaultPort() bool {
	return t.Port == defaultPort(t.Scheme)
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}
