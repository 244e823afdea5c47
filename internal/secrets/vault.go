package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
	corev1 "k8s.io/api/core/v1"

	"go.uber.org/zap"
)

// VaultProviderConfig holds configuration for the Vault secrets provider.
type VaultProviderConfig struct {
	// Address is the Vault server address.
	Address string
	// Token is the Vault token used for authentication.
	Token string
	// MountPath is the KV v2 mount point. Default: "secret".
	MountPath string
	// Namespace is the Vault enterprise namespace, if any.
	Namespace string
	// Timeout is the request timeout for Vault API calls.
	Timeout time.Duration
	// MaxRetries is the number of retries for Vault API calls.
	MaxRetries int
	// Logger is the logger instance.
	Logger *zap.Logger
}

// VaultProvider implements the Provider interface using HashiCorp Vault
// KV v2. Secrets live under "<mount>/<namespace>/<name>" and are always
// reported as Opaque: Vault values are arbitrary credential blobs with
// no equivalent of Kubernetes secret types.
type VaultProvider struct {
	client    *vaultapi.Client
	mountPath string
	logger    *zap.Logger
}

// NewVaultProvider creates a new Vault secrets provider.
func NewVaultProvider(cfg *VaultProviderConfig) (*VaultProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrProviderNotConfigured)
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: vault address is required", ErrProviderNotConfigured)
	}

	apiCfg := vaultapi.DefaultConfig()
	apiCfg.Address = cfg.Address
	if cfg.Timeout > 0 {
		apiCfg.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries > 0 {
		apiCfg.MaxRetries = cfg.MaxRetries
	}

	client, err := vaultapi.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mountPath := cfg.MountPath
	if mountPath == "" {
		mountPath = "secret"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VaultProvider{
		client:    client,
		mountPath: mountPath,
		logger:    logger,
	}, nil
}

// Type returns the provider type.
func (p *VaultProvider) Type() ProviderType {
	return ProviderTypeVault
}

// GetSecret retrieves a secret from the KV v2 secrets engine.
func (p *VaultProvider) GetSecret(ctx context.Context, namespace, name string) (*Secret, error) {
	start := time.Now()

	path := name
	if namespace != "" {
		path = namespace + "/" + name
	}

	p.logger.Debug("getting Vault secret",
		zap.String("mount", p.mountPath),
		zap.String("path", path),
	)

	kvSecret, err := p.client.KVv2(p.mountPath).Get(ctx, path)
	if err != nil {
		if errors.Is(err, vaultapi.ErrSecretNotFound) {
			RecordOperation(p.Type(), "get", time.Since(start), ErrSecretNotFound)
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, path)
		}
		p.logger.Error("failed to get vault secret",
			zap.String("path", path),
			zap.Error(err),
		)
		RecordOperation(p.Type(), "get", time.Since(start), err)
		return nil, fmt.Errorf("failed to get vault secret %s: %w", path, err)
	}

	data := make(map[string][]byte, len(kvSecret.Data))
	for k, v := range kvSecret.Data {
		data[k] = []byte(fmt.Sprintf("%v", v))
	}

	RecordOperation(p.Type(), "get", time.Since(start), nil)

	return &Secret{
		Name:      name,
		Namespace: namespace,
		Type:      corev1.SecretTypeOpaque,
		Data:      data,
	}, nil
}

// HealthCheck checks if the Vault server is reachable.
func (p *VaultProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.Sys().HealthWithContext(ctx); err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	return nil
}

// Close cleans up provider resources.
func (p *VaultProvider) Close() error {
	return nil
}
