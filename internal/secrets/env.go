package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"

	"go.uber.org/zap"
)

// DefaultEnvPrefix is the default prefix for environment variable secrets.
const DefaultEnvPrefix = "AGENTGW_SECRET_"

// EnvProviderConfig holds configuration for the environment variable
// secrets provider.
type EnvProviderConfig struct {
	// Prefix is the prefix for environment variables.
	// Default: "AGENTGW_SECRET_".
	Prefix string
	// Logger is the logger instance.
	Logger *zap.Logger
}

// EnvProvider implements the Provider interface using environment
// variables. A secret named "sec" in namespace "ns" maps to the env
// var "{PREFIX}NS_SEC". JSON-encoded values are parsed as a map of
// keys; plain values are stored under the key "value". Env secrets are
// always reported as Opaque. Intended for local development.
type EnvProvider struct {
	prefix string
	logger *zap.Logger
}

// NewEnvProvider creates a new environment variable secrets provider.
func NewEnvProvider(cfg *EnvProviderConfig) (*EnvProvider, error) {
	if cfg == nil {
		cfg = &EnvProviderConfig{}
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EnvProvider{
		prefix: prefix,
		logger: logger,
	}, nil
}

// Type returns the provider type.
func (p *EnvProvider) Type() ProviderType {
	return ProviderTypeEnv
}

// envName converts a namespace and secret name to an environment
// variable name: uppercased, with dashes, dots and slashes replaced by
// underscores, under the configured prefix.
func (p *EnvProvider) envName(namespace, name string) string {
	path := name
	if namespace != "" {
		path = namespace + "_" + name
	}

	path = strings.ToUpper(path)
	path = strings.ReplaceAll(path, "-", "_")
	path = strings.ReplaceAll(path, ".", "_")
	path = strings.ReplaceAll(path, "/", "_")

	return p.prefix + path
}

// GetSecret retrieves a secret from environment variables.
func (p *EnvProvider) GetSecret(ctx context.Context, namespace, name string) (*Secret, error) {
	start := time.Now()

	envVar := p.envName(namespace, name)

	p.logger.Debug("getting secret from environment variable",
		zap.String("envVar", envVar),
	)

	value, exists := os.LookupEnv(envVar)
	if !exists {
		RecordOperation(p.Type(), "get", time.Since(start), ErrSecretNotFound)
		return nil, fmt.Errorf("%w: environment variable %s not set", ErrSecretNotFound, envVar)
	}

	data := make(map[string][]byte)

	var jsonData map[string]interface{}
	if err := json.Unmarshal([]byte(value), &jsonData); err == nil {
		for k, v := range jsonData {
			data[k] = []byte(fmt.Sprintf("%v", v))
		}
	} else {
		data["value"] = []byte(value)
	}

	RecordOperation(p.Type(), "get", time.Since(start), nil)

	return &Secret{
		Name:      name,
		Namespace: namespace,
		Type:      corev1.SecretTypeOpaque,
		Data:      data,
	}, nil
}

// HealthCheck always succeeds: the process environment is always available.
func (p *EnvProvider) HealthCheck(ctx context.Context) error {
	return nil
}

// Close cleans up provider resources.
func (p *EnvProvider) Close() error {
	return nil
}
