// Package secrets provides a unified interface for fetching credential
// material, with support for Kubernetes Secrets, HashiCorp Vault, and
// environment variables as backends.
//
// Providers are pure per-call fetchers with no caching layer, so a
// caching decorator can be added later without touching the callers.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	corev1 "k8s.io/api/core/v1"
)

// ProviderType represents the type of secrets provider.
type ProviderType string

const (
	// ProviderTypeKubernetes uses Kubernetes Secrets as the backend.
	ProviderTypeKubernetes ProviderType = "kubernetes"
	// ProviderTypeVault uses HashiCorp Vault as the backend.
	ProviderTypeVault ProviderType = "vault"
	// ProviderTypeEnv uses environment variables as the backend.
	ProviderTypeEnv ProviderType = "env"
)

// Common errors for secrets providers.
var (
	// ErrSecretNotFound is returned when a secret is not found.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrProviderNotConfigured is returned when the provider is not properly configured.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrInvalidProviderType is returned when an unknown provider type is specified.
	ErrInvalidProviderType = errors.New("invalid provider type")
)

// Secret represents a fetched secret. Type carries the Kubernetes
// secret type; non-Kubernetes providers always report Opaque since
// their values are arbitrary credential blobs.
type Secret struct {
	// Name is the name of the secret.
	Name string
	// Namespace is the namespace of the secret (if applicable).
	Namespace string
	// Type is the secret type. Callers treat only Opaque values as
	// usable credential material.
	Type corev1.SecretType
	// Data contains the secret key-value pairs.
	Data map[string][]byte
}

// GetString returns a string value from the secret data.
func (s *Secret) GetString(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	v, ok := s.Data[key]
	if !ok {
		return "", false
	}
	return string(v), true
}

// Provider is the interface for secrets providers.
type Provider interface {
	// Type returns the provider type.
	Type() ProviderType

	// GetSecret retrieves a secret by namespace and name. The empty
	// namespace selects the provider's default namespace.
	GetSecret(ctx context.Context, namespace, name string) (*Secret, error)

	// HealthCheck checks provider connectivity.
	HealthCheck(ctx context.Context) error

	// Close cleans up provider resources.
	Close() error
}

// Prometheus metrics for secrets provider operations.
var (
	secretsOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agentgw",
			Subsystem: "secrets",
			Name:      "operation_duration_seconds",
			Help:      "Duration of secrets provider operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation", "result"},
	)

	secretsOperationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentgw",
			Subsystem: "secrets",
			Name:      "operation_total",
			Help:      "Total number of secrets provider operations",
		},
		[]string{"provider", "operation", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		secretsOperationDuration,
		secretsOperationTotal,
	)
}

// RecordOperation records metrics for a secrets provider operation.
func RecordOperation(provider ProviderType, operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	providerStr := string(provider)
	secretsOperationDuration.WithLabelValues(providerStr, operation, result).Observe(duration.Seconds())
	secretsOperationTotal.WithLabelValues(providerStr, operation, result).Inc()
}

// ValidateProviderType validates that the given string is a valid provider type.
func ValidateProviderType(providerType string) (ProviderType, error) {
	switch ProviderType(providerType) {
	case ProviderTypeKubernetes, ProviderTypeVault, ProviderTypeEnv:
		return ProviderType(providerType), nil
	default:
		return "", fmt.Errorf("%w: %s, must be one of: kubernetes, vault, env", ErrInvalidProviderType, providerType)
	}
}
