package resolver

import (
	"context"
	"fmt"

	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/registry"
	"github.com/agenticmesh/agentgw/internal/secrets"
)

// Kind is the category of backend being proxied to.
type Kind string

const (
	// KindAgent proxies to an AgentServer resource.
	KindAgent Kind = "agent"
	// KindTool proxies to a ToolServer resource.
	KindTool Kind = "tool"
	// KindService proxies to a plain cluster Service by name.
	KindService Kind = "service"
)

// ParseKind parses a path segment into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAgent, KindTool, KindService:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q, must be one of: agent, tool, service", ErrUnknownKind, s)
	}
}

// ResolvedTarget is the outcome of a successful resolution: a non-empty
// backend base address and the headers to inject when forwarding.
// Targets are built per request and never cached.
type ResolvedTarget struct {
	BaseAddress string
	Headers     map[string]string
}

// strategy resolves one resource kind.
type strategy interface {
	resolve(ctx context.Context, name, namespace string) (*ResolvedTarget, error)
}

// Resolver dispatches resolution over a closed table of kind strategies.
type Resolver struct {
	strategies map[Kind]strategy
	logger     observability.Logger
}

// Option is a functional option for configuring the resolver.
type Option func(*Resolver)

// WithLogger sets the logger for the resolver.
func WithLogger(logger observability.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver over the given registry and secrets provider.
func New(reg registry.Registry, secretsProvider secrets.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	assembler := NewHeaderAssembler(secretsProvider, r.logger)
	r.strategies = map[Kind]strategy{
		KindAgent:   &agentStrategy{registry: reg, headers: assembler},
		KindTool:    &toolStrategy{registry: reg, headers: assembler},
		KindService: &serviceStrategy{},
	}

	return r
}

// Resolve maps (kind, name, namespace) to a backend target. Failed
// registry fetches yield ErrInvalidResource; resources without a
// resolved address yield ErrNotResolved.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, name, namespace string) (*ResolvedTarget, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	target, err := s.resolve(ctx, name, namespace)
	if err != nil {
		r.logger.Debug("resolution failed",
			observability.String("kind", string(kind)),
			observability.String("name", name),
			observability.String("namespace", namespace),
			observability.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("resolved target",
		observability.String("kind", string(kind)),
		observability.String("name", name),
		observability.String("address", target.BaseAddress),
		observability.Int("injectedHeaders", len(target.Headers)),
	)

	return target, nil
}

// agentStrategy resolves AgentServer resources from the registry status
// field lastResolvedAddress.
type agentStrategy struct {
	registry registry.Registry
	headers  *HeaderAssembler
}

func (s *agentStrategy) resolve(ctx context.Context, name, namespace string) (*ResolvedTarget, error) {
	server, err := s.registry.GetAgentServer(ctx, namespace, name)
	if err != nil {
		return nil, NewInvalidResourceError(KindAgent, name, err)
	}

	headers := s.headers.Assemble(ctx, server.Spec.Headers, namespace)

	if server.Status.LastResolvedAddress == "" {
		return nil, NewNotResolvedError(KindAgent, name)
	}

	return &ResolvedTarget{
		BaseAddress: server.Status.LastResolvedAddress,
		Headers:     headers,
	}, nil
}

// toolStrategy resolves ToolServer resources from the registry status
// field resolvedAddress.
type toolStrategy struct {
	registry registry.Registry
	headers  *HeaderAssembler
}

func (s *toolStrategy) resolve(ctx context.Context, name, namespace string) (*ResolvedTarget, error) {
	server, err := s.registry.GetToolServer(ctx, namespace, name)
	if err != nil {
		return nil, NewInvalidResourceError(KindTool, name, err)
	}

	headers := s.headers.Assemble(ctx, server.Spec.Headers, namespace)

	if server.Status.ResolvedAddress == "" {
		return nil, NewNotResolvedError(KindTool, name)
	}

	return &ResolvedTarget{
		BaseAddress: server.Status.ResolvedAddress,
		Headers:     headers,
	}, nil
}

// serviceStrategy resolves plain cluster Services without a registry
// lookup: the base address is always http://<name>, trusting in-cluster
// DNS.
type serviceStrategy struct{}

func (s *serviceStrategy) resolve(_ context.Context, name, _ string) (*ResolvedTarget, error) {
	return &ResolvedTarget{
		BaseAddress: "http://" + name,
		Headers:     map[string]string{},
	}, nil
}
