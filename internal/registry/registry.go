// Package registry provides access to the cluster resource registry the
// gateway resolves proxy targets from: AgentServer and ToolServer custom
// resources and plain Kubernetes Services.
//
// Lookups are pure per-call fetches against the API server. There is no
// informer cache or memoization: every proxied request re-reads the
// resource so the gateway always forwards to the registry's current view
// of the backend. The interface shape admits a caching decorator later
// without touching callers.
package registry

import (
	"context"

	v1alpha1 "github.com/agenticmesh/agentgw/api/v1alpha1"
)

// Registry is the read-only view of the resource registry used during
// resolution.
type Registry interface {
	// GetAgentServer fetches an AgentServer by namespace and name.
	GetAgentServer(ctx context.Context, namespace, name string) (*v1alpha1.AgentServer, error)

	// GetToolServer fetches a ToolServer by namespace and name.
	GetToolServer(ctx context.Context, namespace, name string) (*v1alpha1.ToolServer, error)

	// ListServiceNames lists the names of Services in a namespace.
	ListServiceNames(ctx context.Context, namespace string) ([]string, error)

	// DefaultNamespace returns the namespace used when a request does
	// not select one.
	DefaultNamespace() string

	// HealthCheck checks registry connectivity.
	HealthCheck(ctx context.Context) error
}
