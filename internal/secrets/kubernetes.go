package secrets

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"go.uber.org/zap"
)

// KubernetesProviderConfig holds configuration for the Kubernetes secrets provider.
type KubernetesProviderConfig struct {
	// Client is the Kubernetes client.
	Client client.Client
	// DefaultNamespace is the namespace used when the caller passes an
	// empty namespace.
	DefaultNamespace string
	// Logger is the logger instance.
	Logger *zap.Logger
}

// KubernetesProvider implements the Provider interface using Kubernetes Secrets.
type KubernetesProvider struct {
	client           client.Client
	defaultNamespace string
	logger           *zap.Logger
}

// NewKubernetesProvider creates a new Kubernetes secrets provider.
func NewKubernetesProvider(cfg *KubernetesProviderConfig) (*KubernetesProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrProviderNotConfigured)
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: kubernetes client is required", ErrProviderNotConfigured)
	}

	defaultNs := cfg.DefaultNamespace
	if defaultNs == "" {
		defaultNs = "default"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KubernetesProvider{
		client:           cfg.Client,
		defaultNamespace: defaultNs,
		logger:           logger,
	}, nil
}

// Type returns the provider type.
func (p *KubernetesProvider) Type() ProviderType {
	return ProviderTypeKubernetes
}

// GetSecret retrieves a secret by namespace and name. The secret's type
// is reported as-is; callers decide how to treat non-Opaque types.
func (p *KubernetesProvider) GetSecret(ctx context.Context, namespace, name string) (*Secret, error) {
	start := time.Now()

	if namespace == "" {
		namespace = p.defaultNamespace
	}

	p.logger.Debug("getting Kubernetes secret",
		zap.String("namespace", namespace),
		zap.String("name", name),
	)

	secret := &corev1.Secret{}
	if err := p.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, secret); err != nil {
		if errors.IsNotFound(err) {
			RecordOperation(p.Type(), "get", time.Since(start), ErrSecretNotFound)
			return nil, fmt.Errorf("%w: %s/%s", ErrSecretNotFound, namespace, name)
		}
		p.logger.Error("failed to get secret",
			zap.String("namespace", namespace),
			zap.String("name", name),
			zap.Error(err),
		)
		RecordOperation(p.Type(), "get", time.Since(start), err)
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}

	RecordOperation(p.Type(), "get", time.Since(start), nil)

	return &Secret{
		Name:      name,
		Namespace: namespace,
		Type:      secret.Type,
		Data:      secret.Data,
	}, nil
}

// HealthCheck checks if the Kubernetes API is accessible.
func (p *KubernetesProvider) HealthCheck(ctx context.Context) error {
	secretList := &corev1.SecretList{}
	if err := p.client.List(ctx, secretList, client.InNamespace(p.defaultNamespace), client.Limit(1)); err != nil {
		return fmt.Errorf("kubernetes API health check failed: %w", err)
	}
	return nil
}

// Close cleans up provider resources.
func (p *KubernetesProvider) Close() error {
	return nil
}
