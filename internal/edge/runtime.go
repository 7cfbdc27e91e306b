package edge

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Locator resolves a client IP to an ISO country code. An empty result means
// the address could not be located.
type Locator interface {
	Country(ip net.IP) string
}

// Runtime adapts net/http to the hook interfaces. For every request it runs
// Ingress, then Egress on whatever Ingress answered, then writes the result.
type Runtime struct {
	Ingress IngressHook
	Egress  EgressHook
	Locator Locator
	Logger  *zap.Logger
}

// NewRuntime constructs a Runtime. locator may be nil.
func NewRuntime(ingress IngressHook, egress EgressHook, locator Locator, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{Ingress: ingress, Egress: egress, Locator: locator, Logger: logger}
}

// ServeHTTP implements http.Handler.
func (rt *Runtime) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &httpRequest{r: r, location: rt.locate(r)}

	if rt.Ingress != nil {
		rt.Ingress(r.Context(), req)
	}

	resp := req.resp
	if resp == nil {
		rt.Logger.Warn("ingress hook did not respond", zap.String("path", r.URL.Path))
		resp = newResponse(http.StatusBadGateway, map[string]string{"Content-Type": "text/plain"}, "no response from edge worker\n")
	}

	if rt.Egress != nil {
		rt.Egress(r.Context(), req, resp)
	}

	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write([]byte(resp.Body)); err != nil {
		rt.Logger.Warn("write response", zap.Error(err))
	}
}

func (rt *Runtime) locate(r *http.Request) *Location {
	if rt.Locator == nil {
		return nil
	}
	ip := ClientIP(r)
	if ip == nil {
		return nil
	}
	country := rt.Locator.Country(ip)
	if country == "" {
		return nil
	}
	return &Location{Country: country}
}

// ClientIP returns the first X-Forwarded-For address, falling back to RemoteAddr.
func ClientIP(r *http.Request) net.IP {
	ipStr := r.Header.Get("X-Forwarded-For")
	if ipStr == "" {
		ipStr = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ipStr); err == nil {
			ipStr = host
		}
	} else if idx := strings.Index(ipStr, ","); idx != -1 {
		ipStr = strings.TrimSpace(ipStr[:idx])
	}
	return net.ParseIP(strings.TrimSpace(ipStr))
}

// httpRequest wraps *http.Request as an IngressRequest.
type httpRequest struct {
	r        *http.Request
	location *Location
	resp     *Response
}

func (h *httpRequest) Method() string { return h.r.Method }

func (h *httpRequest) Path() string { return h.r.URL.Path }

func (h *httpRequest) Header(name string) []string {
	return h.r.Header.Values(name)
}

func (h *httpRequest) UserLocation() *Location { return h.location }

// RespondWith records the response. Only the first call takes effect.
func (h *httpRequest) RespondWith(status int, headers map[string]string, body string) {
	if h.resp != nil {
		return
	}
	h.resp = newResponse(status, headers, body)
}
