// Package asynchttp exposes the asynchronous client builder.
package asynchttp

import (
	"github.com/adamwoolhether/asynchttp/client"
)

// NewClient instantiates a new *client.Client with the provided options.
// If not specified, a fresh http.Client on http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
