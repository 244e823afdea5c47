package resolver

import (
	"context"

	corev1 "k8s.io/api/core/v1"

	v1alpha1 "github.com/agenticmesh/agentgw/api/v1alpha1"
	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/secrets"
)

// HeaderAssembler turns declared header specs into a concrete header
// map, fetching secret-backed values through the secrets provider.
//
// Assembly is deliberately lenient: a missing secret or a secret of a
// non-Opaque type degrades to an empty header value with a warning log
// rather than failing resolution. A TLS-typed secret mistakenly
// referenced for an auth header therefore sends an empty token instead
// of erroring; the warning is the only signal of that misconfiguration.
type HeaderAssembler struct {
	secrets secrets.Provider
	logger  observability.Logger
}

// NewHeaderAssembler creates a new header assembler.
func NewHeaderAssembler(provider secrets.Provider, logger observability.Logger) *HeaderAssembler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &HeaderAssembler{
		secrets: provider,
		logger:  logger,
	}
}

// Assemble produces the header map for the given specs in declaration
// order; a later spec with the same header name overwrites an earlier
// one.
func (a *HeaderAssembler) Assemble(ctx context.Context, specs []v1alpha1.HeaderSpec, namespace string) map[string]string {
	headers := make(map[string]string, len(specs))

	for _, spec := range specs {
		headers[spec.Name] = a.headerValue(ctx, spec, namespace)
	}

	return headers
}

// headerValue resolves a single header spec to its concrete value.
func (a *HeaderAssembler) headerValue(ctx context.Context, spec v1alpha1.HeaderSpec, namespace string) string {
	if spec.Value.ValueFrom != nil && spec.Value.ValueFrom.SecretKeyRef != nil {
		return a.secretValue(ctx, spec.Name, spec.Value.ValueFrom.SecretKeyRef, namespace)
	}
	return spec.Value.Value
}

// secretValue fetches a secret-backed header value. Only Opaque secrets
// yield a value; everything else degrades to an empty string.
func (a *HeaderAssembler) secretValue(ctx context.Context, header string, ref *corev1.SecretKeySelector, namespace string) string {
	secret, err := a.secrets.GetSecret(ctx, namespace, ref.Name)
	if err != nil {
		a.logger.Warn("failed to fetch secret for header, using empty value",
			observability.String("header", header),
			observability.String("secret", ref.Name),
			observability.String("namespace", namespace),
			observability.Error(err),
		)
		return ""
	}

	if secret.Type != corev1.SecretTypeOpaque {
		a.logger.Warn("secret is not Opaque, using empty header value",
			observability.String("header", header),
			observability.String("secret", ref.Name),
			observability.String("type", string(secret.Type)),
		)
		return ""
	}

	value, ok := secret.GetString(ref.Key)
	if !ok {
		a.logger.Warn("secret key not found, using empty header value",
			observability.String("header", header),
			observability.String("secret", ref.Name),
			observability.String("key", ref.Key),
		)
		return ""
	}

	return value
}
