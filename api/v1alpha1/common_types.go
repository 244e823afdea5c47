package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
)

// HeaderSpec declares a header the gateway injects when forwarding
// requests to the server. The value is either a literal string or a
// reference to a key in a Kubernetes Secret.
type HeaderSpec struct {
	// Name is the HTTP header name.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`

	// Value is the source of the header value.
	// +kubebuilder:validation:Required
	Value HeaderValueSource `json:"value"`
}

// HeaderValueSource holds a literal value or a secret reference.
// Exactly one of Value or ValueFrom should be set; when both are set,
// ValueFrom wins.
type HeaderValueSource struct {
	// Value is a literal header value.
	// +optional
	Value string `json:"value,omitempty"`

	// ValueFrom selects the header value from another source.
	// +optional
	ValueFrom *HeaderValueFrom `json:"valueFrom,omitempty"`
}

// HeaderValueFrom selects a header value from an external source.
type HeaderValueFrom struct {
	// SecretKeyRef selects a key of a Secret in the server's namespace.
	// +optional
	SecretKeyRef *corev1.SecretKeySelector `json:"secretKeyRef,omitempty"`
}
