package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/proxy"
	"github.com/agenticmesh/agentgw/internal/registry"
	"github.com/agenticmesh/agentgw/internal/resolver"
)

// ProxyHandler serves the /proxy API: target resolution, request
// forwarding, and service listing.
type ProxyHandler struct {
	resolver  *resolver.Resolver
	forwarder *proxy.Forwarder
	registry  registry.Registry
	logger    observability.Logger
}

// NewProxyHandler creates a proxy handler.
func NewProxyHandler(res *resolver.Resolver, fwd *proxy.Forwarder, reg registry.Registry, logger observability.Logger) *ProxyHandler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &ProxyHandler{
		resolver:  res,
		forwarder: fwd,
		registry:  reg,
		logger:    logger,
	}
}

// ServiceListResponse is the body of GET /proxy/services.
type ServiceListResponse struct {
	Services  []string `json:"services"`
	Namespace string   `json:"namespace"`
}

// ListServices handles GET /proxy/services.
func (h *ProxyHandler) ListServices(c *gin.Context) {
	namespace := h.namespaceFor(c)

	names, err := h.registry.ListServiceNames(c.Request.Context(), namespace)
	if err != nil {
		h.logger.Error("failed to list services",
			observability.String("namespace", namespace),
			observability.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list services",
		})
		return
	}

	c.JSON(http.StatusOK, ServiceListResponse{
		Services:  names,
		Namespace: namespace,
	})
}

// ProxyResource handles /proxy/:kind/:name and /proxy/:kind/:name/*path
// for the methods registered on those routes.
func (h *ProxyHandler) ProxyResource(c *gin.Context) {
	kind, err := resolver.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.proxy(c, kind, c.Param("name"))
}

// ProxyService handles /proxy/services/:name/*path for methods only
// supported on plain services.
func (h *ProxyHandler) ProxyService(c *gin.Context) {
	h.proxy(c, resolver.KindService, c.Param("name"))
}

// proxy resolves the target and forwards the inbound request to it,
// relaying the backend response.
func (h *ProxyHandler) proxy(c *gin.Context, kind resolver.Kind, name string) {
	ctx := c.Request.Context()
	namespace := h.namespaceFor(c)

	target, err := h.resolver.Resolve(ctx, kind, name, namespace)
	if err != nil {
		c.JSON(resolutionStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	pathSuffix := strings.TrimPrefix(c.Param("path"), "/")

	resp, err := h.forwarder.Forward(ctx, target, pathSuffix, c.Request)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	writeUpstreamResponse(c, resp, h.logger)
}

// namespaceFor returns the namespace the request selects, falling back
// to the registry default.
func (h *ProxyHandler) namespaceFor(c *gin.Context) string {
	if ns := c.Query("namespace"); ns != "" {
		return ns
	}
	return h.registry.DefaultNamespace()
}

// resolutionStatus maps a resolution failure to an HTTP status: failed
// fetches are the caller's fault, unresolved addresses are ours.
func resolutionStatus(err error) int {
	switch {
	case resolver.IsInvalidResource(err):
		return http.StatusBadRequest
	case resolver.IsNotResolved(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeUpstreamResponse relays the backend status, filtered headers and
// body to the client.
func writeUpstreamResponse(c *gin.Context, resp *http.Response, logger observability.Logger) {
	header := c.Writer.Header()
	for name, values := range proxy.FilterResponseHeaders(resp.Header) {
		header[name] = values
	}

	c.Status(resp.StatusCode)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Headers are already on the wire; all we can do is log and
		// let the client see the truncated body.
		logger.Warn("failed to relay upstream body",
			observability.Error(err),
		)
	}
}
