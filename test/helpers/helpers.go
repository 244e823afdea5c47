// Package helpers provides common test utilities for the gateway tests.
package helpers

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	v1alpha1 "github.com/agenticmesh/agentgw/api/v1alpha1"
	"github.com/agenticmesh/agentgw/internal/secrets"
)

// GetFreePort returns a free TCP port on localhost.
func GetFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// WaitForServer waits until a TCP connection to addr succeeds or the
// timeout elapses.
func WaitForServer(t *testing.T, addr string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready within %v", addr, timeout)
}

// FakeRegistry is an in-memory resource registry for tests.
type FakeRegistry struct {
	Agents   map[string]*v1alpha1.AgentServer
	Tools    map[string]*v1alpha1.ToolServer
	Services []string
}

// NewFakeRegistry creates an empty fake registry.
func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{
		Agents: make(map[string]*v1alpha1.AgentServer),
		Tools:  make(map[string]*v1alpha1.ToolServer),
	}
}

// AddAgent registers an agent server under namespace/name.
func (f *FakeRegistry) AddAgent(namespace, name string, server *v1alpha1.AgentServer) {
	f.Agents[namespace+"/"+name] = server
}

// AddTool registers a tool server under namespace/name.
func (f *FakeRegistry) AddTool(namespace, name string, server *v1alpha1.ToolServer) {
	f.Tools[namespace+"/"+name] = server
}

// GetAgentServer implements registry.Registry.
func (f *FakeRegistry) GetAgentServer(_ context.Context, namespace, name string) (*v1alpha1.AgentServer, error) {
	if s, ok := f.Agents[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("agentserver %s/%s not found", namespace, name)
}

// GetToolServer implements registry.Registry.
func (f *FakeRegistry) GetToolServer(_ context.Context, namespace, name string) (*v1alpha1.ToolServer, error) {
	if s, ok := f.Tools[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("toolserver %s/%s not found", namespace, name)
}

// ListServiceNames implements registry.Registry.
func (f *FakeRegistry) ListServiceNames(_ context.Context, _ string) ([]string, error) {
	return f.Services, nil
}

// DefaultNamespace implements registry.Registry.
func (f *FakeRegistry) DefaultNamespace() string { return "default" }

// HealthCheck implements registry.Registry.
func (f *FakeRegistry) HealthCheck(_ context.Context) error { return nil }

// FakeSecrets is an in-memory secrets provider for tests.
type FakeSecrets struct {
	Store map[string]*secrets.Secret
}

// NewFakeSecrets creates an empty fake secrets provider.
func NewFakeSecrets() *FakeSecrets {
	return &FakeSecrets{Store: make(map[string]*secrets.Secret)}
}

// Add registers a secret under namespace/name.
func (f *FakeSecrets) Add(namespace, name string, secret *secrets.Secret) {
	f.Store[namespace+"/"+name] = secret
}

// Type implements secrets.Provider.
func (f *FakeSecrets) Type() secrets.ProviderType { return "fake" }

// GetSecret implements secrets.Provider.
func (f *FakeSecrets) GetSecret(_ context.Context, namespace, name string) (*secrets.Secret, error) {
	if s, ok := f.Store[namespace+"/"+name]; ok {
		return s, nil
	}
	return nil, secrets.ErrSecretNotFound
}

// HealthCheck implements secrets.Provider.
func (f *FakeSecrets) HealthCheck(_ context.Context) error { return nil }

// Close implements secrets.Provider.
func (f *FakeSecrets) Close() error { return nil }
