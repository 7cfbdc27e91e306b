package edge

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLocator map[string]string

func (s staticLocator) Country(ip net.IP) string { return s[ip.String()] }

func TestRuntime_IngressThenEgress(t *testing.T) {
	var seenLocation *Location
	ingress := func(_ context.Context, req IngressRequest) {
		seenLocation = req.UserLocation()
		req.RespondWith(http.StatusOK, map[string]string{"Content-Type": "text/html"}, "<p>"+req.Path()+"</p>")
	}
	egress := func(_ context.Context, _ Request, resp EgressResponse) {
		assert.Equal(t, http.StatusOK, resp.Status())
		resp.SetHeader("X-Test", "yes")
	}
	rt := NewRuntime(ingress, egress, staticLocator{"203.0.113.9": "DE"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "yes", rec.Header().Get("X-Test"))
	assert.Equal(t, "<p>/page</p>", rec.Body.String())
	require.NotNil(t, seenLocation)
	assert.Equal(t, "DE", seenLocation.Country)
}

func TestRuntime_NoLocation(t *testing.T) {
	var seen *Location
	located := true
	rt := NewRuntime(func(_ context.Context, req IngressRequest) {
		seen = req.UserLocation()
		located = seen != nil
		req.RespondWith(http.StatusNoContent, nil, "")
	}, nil, staticLocator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rt.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, located)
}

func TestRuntime_UnansweredRequest(t *testing.T) {
	egressCalled := false
	rt := NewRuntime(func(context.Context, IngressRequest) {}, func(_ context.Context, _ Request, resp EgressResponse) {
		egressCalled = true
		assert.Equal(t, http.StatusBadGateway, resp.Status())
	}, nil, nil)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, egressCalled)
}

func TestRuntime_FirstResponseWins(t *testing.T) {
	rt := NewRuntime(func(_ context.Context, req IngressRequest) {
		req.RespondWith(http.StatusOK, nil, "first")
		req.RespondWith(http.StatusInternalServerError, nil, "second")
	}, nil, nil, nil)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first", rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	assert.Equal(t, "192.0.2.4", ClientIP(req).String())

	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req).String())

	req.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Nil(t, ClientIP(req))
}

func TestHeaderValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Add("User-Agent", "first")
	req.Header.Add("User-Agent", "second")
	h := &httpRequest{r: req}

	assert.Equal(t, []string{"first", "second"}, h.Header("User-Agent"))
	assert.Empty(t, h.Header("X-User-ID"))
}

func TestRuntime_PassesMethod(t *testing.T) {
	var method string
	rt := NewRuntime(func(_ context.Context, req IngressRequest) {
		method = req.Method()
		req.RespondWith(http.StatusOK, nil, "")
	}, nil, nil, nil)

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.MethodPost, method)
}

func TestMockRequest_FirstResponseWins(t *testing.T) {
	req := NewMockRequest("/", nil)
	assert.Equal(t, http.MethodGet, req.Method())

	req.RespondWith(http.StatusOK, map[string]string{"Content-Type": "text/html"}, "first")
	req.RespondWith(http.StatusInternalServerError, nil, "second")

	require.NotNil(t, req.Response)
	assert.Equal(t, 2, req.Responses)
	assert.Equal(t, http.StatusOK, req.Response.StatusCode)
	assert.Equal(t, "first", req.Response.Body)
	assert.Equal(t, "text/html", req.Response.Header("Content-Type"))
}
