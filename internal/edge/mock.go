package edge

import "net/http"

// MockRequest is an in-memory IngressRequest for tests. Like the Runtime, it
// keeps only the first response; Responses counts every RespondWith call.
type MockRequest struct {
	RequestMethod string
	RequestPath   string
	Headers       http.Header
	Location      *Location
	Response      *Response
	Responses     int
}

// NewMockRequest builds a GET MockRequest for path with the given single-valued headers.
func NewMockRequest(path string, headers map[string]string) *MockRequest {
	m := &MockRequest{RequestMethod: http.MethodGet, RequestPath: path, Headers: make(http.Header)}
	for k, v := range headers {
		m.Headers.Set(k, v)
	}
	return m
}

// Method returns RequestMethod.
func (m *MockRequest) Method() string { return m.RequestMethod }

// Path returns RequestPath.
func (m *MockRequest) Path() string { return m.RequestPath }

// Header returns every value of name in Headers.
func (m *MockRequest) Header(name string) []string { return m.Headers.Values(name) }

// UserLocation returns Location, which may be nil.
func (m *MockRequest) UserLocation() *Location { return m.Location }

// RespondWith records the first response it receives and ignores later ones.
func (m *MockRequest) RespondWith(status int, headers map[string]string, body string) {
	m.Responses++
	if m.Response != nil {
		return
	}
	m.Response = newResponse(status, headers, body)
}
