// Package edge models the request/response surface an edge runtime hands to
// the ingress and egress hooks. Hooks only see these interfaces, so they can be
// driven by the net/http Runtime in production and by MockRequest in tests.
package edge

import (
	"context"
	"net/http"
)

// Location is the geolocation the runtime attaches to an inbound request.
type Location struct {
	Country string
}

// Request is the read-only view of an inbound request.
type Request interface {
	Method() string
	Path() string
	// Header returns every value sent for name, or nil when the header is absent.
	Header(name string) []string
	// UserLocation returns nil when the runtime could not locate the client.
	UserLocation() *Location
}

// IngressRequest is a Request the ingress hook may answer directly.
type IngressRequest interface {
	Request
	RespondWith(status int, headers map[string]string, body string)
}

// EgressResponse is the outgoing response seen by the egress hook.
type EgressResponse interface {
	Status() int
	Header(name string) string
	SetHeader(name, value string)
}

// IngressHook runs once per inbound request.
type IngressHook func(ctx context.Context, req IngressRequest)

// EgressHook runs once per outgoing response, after the ingress hook.
type EgressHook func(ctx context.Context, req Request, resp EgressResponse)

// Response is the buffered result of RespondWith.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// Status implements EgressResponse.
func (r *Response) Status() int { return r.StatusCode }

// Header implements EgressResponse.
func (r *Response) Header(name string) string { return r.Headers.Get(name) }

// SetHeader implements EgressResponse.
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	r.Headers.Set(name, value)
}

func newResponse(status int, headers map[string]string, body string) *Response {
	resp := &Response{StatusCode: status, Headers: make(http.Header, len(headers)), Body: body}
	for k, v := range headers {
		resp.Headers.Set(k, v)
	}
	return resp
}
