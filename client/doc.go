// Package client provides an asynchronous HTTP client built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithUserAgent("myapp/1.0"),
//		client.WithMaxConcurrent(8),
//	)
//
// # Making Requests
//
// [Client.Get] and [Client.Post] return immediately with a [Handle].
// The request runs on its own goroutine; continuations registered on the
// Handle run once it settles:
//
//	c.AddHeader("Authorization", "Bearer "+token)
//
//	c.Post("https://api.example.com/v1/items", `{"name":"a"}`).
//		OnSuccess(func(resp client.Response) {
//			fmt.Println(resp.Status, resp.Body)
//		}).
//		OnError(func(resp *client.Response, err error) {
//			if err != nil {
//				log.Println(err)
//			}
//		})
//
// Each request captures the default headers at the moment it is issued,
// so later calls to [Client.AddHeader] or [Client.RemoveHeader] never
// reach requests already in flight.
//
// # Responses
//
// A [Response] body is always UTF-8: the charset declared in the
// response's Content-Type is decoded with the
// [github.com/adamwoolhether/asynchttp/client/charset] package. Repeated
// response headers are joined with ", ".
//
// # Error Continuations
//
// By default an [ErrorFunc] runs on success as well, receiving the Response
// with a nil error. Build the client with [WithStrictErrorCallbacks] to run
// it only on failure.
//
// # Blocking
//
// Callers that prefer to block can use [Handle.Await]:
//
//	resp, err := c.Get(u).Await(ctx)
package client
