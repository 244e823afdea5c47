package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=as
// +kubebuilder:printcolumn:name="Address",type="string",JSONPath=".status.lastResolvedAddress"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// AgentServer is the Schema for the agentservers API.
// An AgentServer exposes an agent-to-agent endpoint inside the cluster;
// a controller resolves the live address and reports it in the status.
type AgentServer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AgentServerSpec   `json:"spec,omitempty"`
	Status AgentServerStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AgentServerList contains a list of AgentServer
type AgentServerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AgentServer `json:"items"`
}

// AgentServerSpec defines the desired state of AgentServer
type AgentServerSpec struct {
	// Address is an optional static address override. When set, the
	// controller resolves against it instead of service discovery.
	// +optional
	Address string `json:"address,omitempty"`

	// Headers are injected into every request the gateway forwards to
	// this server, typically authentication material.
	// +kubebuilder:validation:MaxItems=32
	// +optional
	Headers []HeaderSpec `json:"headers,omitempty"`

	// Description is a human-readable description of the server.
	// +optional
	Description string `json:"description,omitempty"`
}

// AgentServerStatus defines the observed state of AgentServer
type AgentServerStatus struct {
	// LastResolvedAddress is the most recently resolved base URL of the
	// server. Empty until the controller has resolved the server.
	// +optional
	LastResolvedAddress string `json:"lastResolvedAddress,omitempty"`

	// Conditions represent the latest available observations of the
	// server's state.
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

func init() {
	SchemeBuilder.Register(&AgentServer{}, &AgentServerList{})
}
