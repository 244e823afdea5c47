// Package v1alpha1 contains API Schema definitions for the agentgw v1alpha1 API group.
// This package defines the Custom Resource Definitions (CRDs) the gateway resolves
// proxy targets from: AgentServer and ToolServer.
//
// +kubebuilder:object:generate=true
// +groupName=agents.agenticmesh.io
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion is group version used to register these objects
	GroupVersion = schema.GroupVersion{Group: "agents.agenticmesh.io", Version: "v1alpha1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)
