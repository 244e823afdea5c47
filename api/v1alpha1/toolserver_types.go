package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=ts
// +kubebuilder:printcolumn:name="Address",type="string",JSONPath=".status.resolvedAddress"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// ToolServer is the Schema for the toolservers API.
// A ToolServer exposes a tool-calling endpoint inside the cluster; a
// controller resolves the live address and reports it in the status.
type ToolServer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ToolServerSpec   `json:"spec,omitempty"`
	Status ToolServerStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ToolServerList contains a list of ToolServer
type ToolServerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ToolServer `json:"items"`
}

// ToolServerSpec defines the desired state of ToolServer
type ToolServerSpec struct {
	// Address is an optional static address override.
	// +optional
	Address string `json:"address,omitempty"`

	// Headers are injected into every request the gateway forwards to
	// this server.
	// +kubebuilder:validation:MaxItems=32
	// +optional
	Headers []HeaderSpec `json:"headers,omitempty"`

	// Description is a human-readable description of the server.
	// +optional
	Description string `json:"description,omitempty"`
}

// ToolServerStatus defines the observed state of ToolServer
type ToolServerStatus struct {
	// ResolvedAddress is the resolved base URL of the server. Empty
	// until the controller has resolved the server.
	// +optional
	ResolvedAddress string `json:"resolvedAddress,omitempty"`

	// Conditions represent the latest available observations of the
	// server's state.
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

func init() {
	SchemeBuilder.Register(&ToolServer{}, &ToolServerList{})
}
