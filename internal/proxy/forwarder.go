package proxy

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/resolver"
)

// hopHeaders are the hop-by-hop headers stripped in both directions.
// Process-wide constant data; never mutated.
var hopHeaders = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailers":            {},
	"transfer-encoding":   {},
	"upgrade":             {},
}

// requestOnlyHeaders are additionally stripped from inbound requests.
// Host belongs to the upstream leg, content-length is recomputed by the
// transport, and authorization must come from the resolved target's
// injected headers, never forwarded verbatim.
var requestOnlyHeaders = map[string]struct{}{
	"host":           {},
	"content-length": {},
	"authorization":  {},
}

// DefaultDialTimeout bounds connection establishment and request write.
const DefaultDialTimeout = 10 * time.Second

// Forwarder performs the upstream call for a resolved target.
type Forwarder struct {
	client *http.Client
	logger observability.Logger
}

// Option is a functional option for configuring the forwarder.
type Option func(*Forwarder)

// WithLogger sets the logger for the forwarder.
func WithLogger(logger observability.Logger) Option {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for upstream calls.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Forwarder) {
		f.client = client
	}
}

// NewForwarder creates a forwarder. The default client bounds dialing
// and the TLS handshake but sets no overall request timeout: response
// bodies may stream for arbitrarily long.
func NewForwarder(dialTimeout time.Duration, opts ...Option) *Forwarder {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = dialTimeout

	f := &Forwarder{
		client: &http.Client{Transport: transport},
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Forward builds the outbound request from the inbound one, performs
// the upstream call, and returns the raw response. The caller owns the
// response body. Transport failures map to an UpstreamError; the
// inbound context cancels the in-flight call when the client goes away.
func (f *Forwarder) Forward(ctx context.Context, target *resolver.ResolvedTarget, pathSuffix string, inbound *http.Request) (*http.Response, error) {
	targetURL := JoinPath(target.BaseAddress, pathSuffix)

	body, err := io.ReadAll(inbound.Body)
	if err != nil {
		return nil, NewUpstreamError(targetURL, err)
	}

	// An absent body is forwarded as no body, not as an empty-string
	// body, so verbs like GET don't pick up Content-Length: 0.
	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	outbound, err := http.NewRequestWithContext(ctx, inbound.Method, targetURL, bodyReader)
	if err != nil {
		return nil, NewUpstreamError(targetURL, err)
	}

	outbound.URL.RawQuery = inbound.URL.RawQuery
	outbound.Header = FilterRequestHeaders(inbound.Header)

	// Injected headers are added last and win over client-supplied
	// survivors of the same name.
	for name, value := range target.Headers {
		outbound.Header.Set(name, value)
	}

	f.logger.Info("forwarding request",
		observability.String("method", inbound.Method),
		observability.String("target", targetURL),
	)

	start := time.Now()
	resp, err := f.client.Do(outbound)
	if err != nil {
		getForwarderMetrics().errorsTotal.Inc()
		f.logger.Error("upstream request failed",
			observability.String("target", targetURL),
			observability.Error(err),
		)
		return nil, NewUpstreamError(targetURL, err)
	}

	m := getForwarderMetrics()
	m.upstreamDuration.Observe(time.Since(start).Seconds())
	m.forwardsTotal.WithLabelValues(inbound.Method, strconv.Itoa(resp.StatusCode)).Inc()

	return resp, nil
}

// FilterRequestHeaders copies every inbound header except the
// hop-by-hop set and the request-specific exclusions, matching names
// case-insensitively.
func FilterRequestHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for name, values := range in {
		lower := strings.ToLower(name)
		if _, hop := hopHeaders[lower]; hop {
			continue
		}
		if _, skip := requestOnlyHeaders[lower]; skip {
			continue
		}
		for _, v := range values {
			out.Add(name, v)
		}
	}
	return out
}

// FilterResponseHeaders copies every backend response header except the
// hop-by-hop set. Content-type, content-length, content-disposition and
// all other end-to-end headers pass through verbatim.
func FilterResponseHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for name, values := range in {
		if _, hop := hopHeaders[strings.ToLower(name)]; hop {
			continue
		}
		for _, v := range values {
			out.Add(name, v)
		}
	}
	return out
}
