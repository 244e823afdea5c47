//go:build functional
// +build functional

package functional

import (
	"context"
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
	"github.com/agenticmesh/agentgw/internal/server"
	"github.com/agenticmesh/agentgw/test/helpers"
)

// startGateway starts a full gateway over the given fakes on a free
// port and returns its base URL.
func startGateway(t *testing.T, reg *helpers.FakeRegistry, sp *helpers.FakeSecrets) string {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.HTTPPort = helpers.GetFreePort(t)
	cfg.Address = "127.0.0.1"
	cfg.AccessLogEnabled = false
	cfg.MetricsEnabled = false

	res := resolver.New(reg, sp)
	fwd := proxy.NewForwarder(time.Second)
	handler := server.NewProxyHandler(res, fwd, reg, nil)
	srv := server.NewServer(cfg, handler, health.NewChecker("functional"), nil)

	go func() {
		_ = srv.Start(context.Background())
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort)
	helpers.WaitForServer(t, addr, 5*time.Second)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return "http://" + addr
}

func TestFunctional_ProxyAgentFlow(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		auth := r.Header.Get("Authorization")
		_, _ = fmt.Fprintf(w, `{"path":%q,"auth":%q}`, r.URL.Path, auth)
	}))
	defer backend.Close()

	reg := helpers.NewFakeRegistry()
	reg.AddAgent("default", "chat", &v1alpha1.AgentServer{
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
	})

	sp := helpers.NewFakeSecrets()
	sp.Add("default", "creds", &secrets.Secret{
		Name: "creds",
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{"token": []byte("Bearer functional-token")},
	})

	base := startGateway(t, reg, sp)

	req, err := http.NewRequest(http.MethodPost, base+"/proxy/agent/chat/v1/messages",
		strings.NewReader(`{"q":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer client-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"path":"/v1/messages","auth":"Bearer functional-token"}`, string(body))
}

func TestFunctional_ErrorMapping(t *testing.T) {
	reg := helpers.NewFakeRegistry()
	reg.AddTool("default", "pending", &v1alpha1.ToolServer{})

	base := startGateway(t, reg, helpers.NewFakeSecrets())

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{name: "unknown kind", path: "/proxy/model/gpt", expected: http.StatusUnprocessableEntity},
		{name: "missing resource", path: "/proxy/agent/missing", expected: http.StatusBadRequest},
		{name: "unresolved resource", path: "/proxy/tool/pending", expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(base + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}

func TestFunctional_HealthAndReadiness(t *testing.T) {
	base := startGateway(t, helpers.NewFakeRegistry(), helpers.NewFakeSecrets())

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
