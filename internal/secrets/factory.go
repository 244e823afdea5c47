package secrets

import (
	"fmt"

	"go.uber.org/zap"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/agenticmesh/agentgw/internal/config"
)

// ProviderConfig holds configuration for creating providers.
type ProviderConfig struct {
	// Type is the provider type.
	Type ProviderType
	// KubeClient is the Kubernetes client (required for the kubernetes provider).
	KubeClient client.Client
	// Namespace is the default namespace for Kubernetes secrets.
	Namespace string
	// EnvPrefix is the prefix for environment variable secrets.
	EnvPrefix string
	// VaultConfig holds Vault-specific configuration.
	VaultConfig *VaultProviderConfig
	// Logger is the logger instance.
	Logger *zap.Logger
}

// NewProvider creates a new secrets provider based on config.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", ErrProviderNotConfigured)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case ProviderTypeKubernetes:
		return NewKubernetesProvider(&KubernetesProviderConfig{
			Client:           cfg.KubeClient,
			DefaultNamespace: cfg.Namespace,
			Logger:           logger,
		})

	case ProviderTypeVault:
		if cfg.VaultConfig == nil {
			return nil, fmt.Errorf("%w: vault config is required for vault provider", ErrProviderNotConfigured)
		}
		cfg.VaultConfig.Logger = logger
		return NewVaultProvider(cfg.VaultConfig)

	case ProviderTypeEnv:
		return NewEnvProvider(&EnvProviderConfig{
			Prefix: cfg.EnvPrefix,
			Logger: logger,
		})

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderType, cfg.Type)
	}
}

// NewProviderFromConfig builds a provider from the gateway configuration.
func NewProviderFromConfig(cfg *config.Config, kubeClient client.Client, logger *zap.Logger) (Provider, error) {
	providerType, err := ValidateProviderType(cfg.SecretsProvider)
	if err != nil {
		return nil, err
	}

	pc := &ProviderConfig{
		Type:       providerType,
		KubeClient: kubeClient,
		Namespace:  cfg.DefaultNamespace,
		EnvPrefix:  cfg.SecretsEnvPrefix,
		Logger:     logger,
	}

	if providerType == ProviderTypeVault {
		pc.VaultConfig = &VaultProviderConfig{
			Address:    cfg.VaultAddress,
			Token:      cfg.VaultToken,
			MountPath:  cfg.VaultMountPath,
			Namespace:  cfg.VaultNamespace,
			Timeout:    cfg.VaultTimeout,
			MaxRetries: cfg.VaultMaxRetries,
		}
	}

	return NewProvider(pc)
}
