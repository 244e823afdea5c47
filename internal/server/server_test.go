package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	v1alpha1 "github.com/agenticmesh/agentgw/api/v1alpha1"
	"github.com/agenticmesh/agentgw/internal/config"
	"github.com/agenticmesh/agentgw/internal/health"
	"github.com/agenticmesh/agentgw/internal/proxy"
	"github.com/agenticmesh/agentgw/internal/resolver"
	"github.com/agenticmesh/agentgw/internal/secrets"
)

// fakeRegistry is an in-memory registry for tests.
type fakeRegistry struct {
	agents   map[string]*v1alpha1.AgentServer
	tools    map[string]*v1alpha1.ToolServer
	services []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		agents: make(map[string]*v1alpha1.AgentServer),
		tools:  make(map[string]*v1alpha1.ToolServer),
	}
}

func (f *fakeRegistry) GetAgentServer(_ context.Context, namespace, name string) (*v1alpha1.AgentServer, error) {
	if s, ok := f.agents[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("agentservers.agents.agenticmesh.io %q not found", name)
}

func (f *fakeRegistry) GetToolServer(_ context.Context, namespace, name string) (*v1alpha1.ToolServer, error) {
	if s, ok := f.tools[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("toolservers.agents.agenticmesh.io %q not found", name)
}

func (f *fakeRegistry) ListServiceNames(_ context.Context, _ string) ([]string, error) {
	return f.services, nil
}

func (f *fakeRegistry) DefaultNamespace() string { return "default" }

func (f *fakeRegistry) HealthCheck(_ context.Context) error { return nil }

// fakeSecrets is an in-memory secrets provider for tests.
type fakeSecrets struct {
	store map[string]*secrets.Secret
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{store: make(map[string]*secrets.Secret)}
}

func (f *fakeSecrets) Type() secrets.ProviderType { return "fake" }

func (f *fakeSecrets) GetSecret(_ context.Context, namespace, name string) (*secrets.Secret, error) {
	if s, ok := f.store[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, secrets.ErrSecretNotFound
}

func (f *fakeSecrets) HealthCheck(_ context.Context) error { return nil }

func (f *fakeSecrets) Close() error { return nil }

// newTestServer builds a server over the given fakes with metrics and
// access logging disabled.
func newTestServer(t *testing.T, reg *fakeRegistry, sp *fakeSecrets) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.AccessLogEnabled = false
	cfg.MetricsEnabled = false

	res := resolver.New(reg, sp)
	fwd := proxy.NewForwarder(time.Second)
	handler := NewProxyHandler(res, fwd, reg, nil)

	return NewServer(cfg, handler, health.NewChecker("test"), nil)
}

func doRequest(srv *Server, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for name, values := range header {
		req.Header[name] = values
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestProxyAgent_EndToEnd(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"hello"}`))
	}))
	defer backend.Close()

	reg := newFakeRegistry()
	reg.agents["default/chat"] = &v1alpha1.AgentServer{
		Spec: v1alpha1.AgentServerSpec{
			Headers: []v1alpha1.HeaderSpec{
				{
					Name: "Authorization",
					Value: v1alpha1.HeaderValueSource{
						ValueFrom: &v1alpha1.HeaderValueFrom{
							SecretKeyRef: &corev1.SecretKeySelector{
								LocalObjectReference: corev1.LocalObjectReference{Name: "creds"},
								Key:                  "token",
							},
						},
					},
				},
			},
		},
		Status: v1alpha1.AgentServerStatus{LastResolvedAddress: backend.URL},
	}

	sp := newFakeSecrets()
	sp.store["default/creds"] = &secrets.Secret{
		Name: "creds",
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{"token": []byte("Bearer test-token")},
	}

	srv := newTestServer(t, reg, sp)

	header := http.Header{}
	header.Set("Authorization", "Bearer client-token")
	header.Set("X-Custom", "kept")

	rec := doRequest(srv, http.MethodPost, "/proxy/agent/chat/v1/messages?stream=false",
		strings.NewReader(`{"q":"hi"}`), header)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"hello"}`, rec.Body.String())

	require.NotNil(t, captured)
	assert.Equal(t, "/v1/messages", captured.URL.Path)
	assert.Equal(t, "stream=false", captured.URL.RawQuery)
	// The secret-backed header replaces the client-supplied one.
	assert.Equal(t, "Bearer test-token", captured.Header.Get("Authorization"))
	assert.Equal(t, "kept", captured.Header.Get("X-Custom"))
}

func TestProxyAgent_NotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRegistry(), newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/agent/missing", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid resource agent missing")
}

func TestProxyAgent_NoResolvedAddress(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.agents["default/pending"] = &v1alpha1.AgentServer{}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/agent/pending", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "has no resolved address")
}

func TestProxyTool_EndToEnd(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("tool response"))
	}))
	defer backend.Close()

	reg := newFakeRegistry()
	reg.tools["default/search"] = &v1alpha1.ToolServer{
		Status: v1alpha1.ToolServerStatus{ResolvedAddress: backend.URL},
	}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/tool/search", nil, nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "tool response", rec.Body.String())
}

func TestProxyUnknownKind(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRegistry(), newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/model/gpt", nil, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown resource kind")
}

func TestProxyUnreachableBackend(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := backend.URL
	backend.Close()

	reg := newFakeRegistry()
	reg.tools["default/gone"] = &v1alpha1.ToolServer{
		Status: v1alpha1.ToolServerStatus{ResolvedAddress: addr},
	}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/tool/gone", nil, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to proxy request to server")
}

func TestProxyBackendStatusPassthrough(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer backend.Close()

	reg := newFakeRegistry()
	reg.tools["default/teapot"] = &v1alpha1.ToolServer{
		Status: v1alpha1.ToolServerStatus{ResolvedAddress: backend.URL},
	}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/tool/teapot", nil, nil)

	// Backend errors relay as-is, they are not wrapped in gateway errors.
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestProxyService_DNSName(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRegistry(), newFakeSecrets())

	// http://nonexistent-svc fails to dial, proving resolution happened
	// without a registry entry.
	rec := doRequest(srv, http.MethodGet, "/proxy/service/nonexistent-svc-agentgw-test", nil, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestProxyService_DeleteShortcut(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRegistry(), newFakeSecrets())

	rec := doRequest(srv, http.MethodDelete, "/proxy/services/nonexistent-svc-agentgw-test/items/1", nil, nil)

	// The route resolves and forwards; only the dial fails.
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListServices(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.services = []string{"postgres", "redis"}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/services", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ServiceListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"postgres", "redis"}, resp.Services)
	assert.Equal(t, "default", resp.Namespace)
}

func TestProxyNamespaceQueryParam(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	reg := newFakeRegistry()
	reg.agents["ops/chat"] = &v1alpha1.AgentServer{
		Status: v1alpha1.AgentServerStatus{LastResolvedAddress: backend.URL},
	}

	srv := newTestServer(t, reg, newFakeSecrets())

	rec := doRequest(srv, http.MethodGet, "/proxy/agent/chat?namespace=ops", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without the query param the default namespace misses.
	rec = doRequest(srv, http.MethodGet, "/proxy/agent/chat", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRegistry(), newFakeSecrets())

	for _, path := range []string{"/health", "/healthz", "/ready", "/readyz"} {
		rec := doRequest(srv, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.HTTPPort = 0 // not started, port unused
	cfg.AccessLogEnabled = false
	cfg.MetricsEnabled = false

	res := resolver.New(newFakeRegistry(), newFakeSecrets())
	fwd := proxy.NewForwarder(time.Second)
	handler := NewProxyHandler(res, fwd, newFakeRegistry(), nil)
	srv := NewServer(cfg, handler, nil, nil)

	assert.False(t, srv.IsRunning())
	assert.NoError(t, srv.Stop(context.Background()))
}
