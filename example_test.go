package asynchttp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/asynchttp"
	"github.com/adamwoolhether/asynchttp/client"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	c, err := asynchttp.NewClient(client.WithTimeout(5 * time.Second))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	resp, err := c.Get(ts.URL).Await(context.Background())
	if err != nil {
		fmt.Println("get error:", err)
		return
	}

	fmt.Println(resp.Status, resp.Body)
	// Output: 200 {"msg":"hello"}
}
