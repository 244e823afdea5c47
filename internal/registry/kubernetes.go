package registry

import (
	"context"
	"fmt"
	"os"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"go.uber.org/zap"

	v1alpha1 "github.com/agenticmesh/agentgw/api/v1alpha1"
)

// serviceAccountNamespaceFile is where the in-cluster serviceaccount
// namespace is mounted.
const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// KubeRegistry implements Registry over a Kubernetes API client.
type KubeRegistry struct {
	client           client.Client
	defaultNamespace string
	logger           *zap.Logger
}

// KubeRegistryConfig holds configuration for the Kubernetes registry.
type KubeRegistryConfig struct {
	// Client is the Kubernetes client.
	Client client.Client
	// DefaultNamespace is the fallback namespace when neither the
	// request nor the environment selects one.
	DefaultNamespace string
	// Logger is the logger instance.
	Logger *zap.Logger
}

// NewScheme builds the runtime scheme the registry client needs: the
// core types plus the gateway CRDs.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to register core types: %w", err)
	}
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to register gateway types: %w", err)
	}
	return scheme, nil
}

// NewKubeClient builds a controller-runtime client from the ambient
// kubeconfig (in-cluster config or $KUBECONFIG / ~/.kube/config).
func NewKubeClient() (client.Client, error) {
	restCfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}

	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}

	c, err := client.New(restCfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return c, nil
}

// NewKubeRegistry creates a new Kubernetes-backed registry.
func NewKubeRegistry(cfg *KubeRegistryConfig) (*KubeRegistry, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, fmt.Errorf("kubernetes client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KubeRegistry{
		client:           cfg.Client,
		defaultNamespace: currentNamespace(cfg.DefaultNamespace),
		logger:           logger,
	}, nil
}

// currentNamespace determines the default namespace: the POD_NAMESPACE
// environment variable, then the in-cluster serviceaccount namespace
// file, then the configured fallback.
func currentNamespace(fallback string) string {
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}

	if data, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns
		}
	}

	if fallback != "" {
		return fallback
	}
	return "default"
}

// GetAgentServer fetches an AgentServer by namespace and name.
func (r *KubeRegistry) GetAgentServer(ctx context.Context, namespace, name string) (*v1alpha1.AgentServer, error) {
	if namespace == "" {
		namespace = r.defaultNamespace
	}

	server := &v1alpha1.AgentServer{}
	if err := r.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, server); err != nil {
		return nil, fmt.Errorf("failed to get agent server %s/%s: %w", namespace, name, err)
	}

	return server, nil
}

// GetToolServer fetches a ToolServer by namespace and name.
func (r *KubeRegistry) GetToolServer(ctx context.Context, namespace, name string) (*v1alpha1.ToolServer, error) {
	if namespace == "" {
		namespace = r.defaultNamespace
	}

	server := &v1alpha1.ToolServer{}
	if err := r.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, server); err != nil {
		return nil, fmt.Errorf("failed to get tool server %s/%s: %w", namespace, name, err)
	}

	return server, nil
}

// ListServiceNames lists the names of Services in a namespace.
func (r *KubeRegistry) ListServiceNames(ctx context.Context, namespace string) ([]string, error) {
	if namespace == "" {
		namespace = r.defaultNamespace
	}

	serviceList := &corev1.ServiceList{}
	if err := r.client.List(ctx, serviceList, client.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("failed to list services in namespace %s: %w", namespace, err)
	}

	names := make([]string, 0, len(serviceList.Items))
	for _, svc := range serviceList.Items {
		names = append(names, svc.Name)
	}

	return names, nil
}

// DefaultNamespace returns the namespace used when a request does not
// select one.
func (r *KubeRegistry) DefaultNamespace() string {
	return r.defaultNamespace
}

// HealthCheck checks if the API server is reachable.
func (r *KubeRegistry) HealthCheck(ctx context.Context) error {
	serviceList := &corev1.ServiceList{}
	if err := r.client.List(ctx, serviceList, client.InNamespace(r.defaultNamespace), client.Limit(1)); err != nil {
		return fmt.Errorf("registry health check failed: %w", err)
	}
	return nil
}
