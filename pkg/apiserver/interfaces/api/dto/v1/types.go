package v1

import (
	"kubemin-workload/pkg/apiserver/domain/spec"
)

// Output formats accepted by the compile API.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// CompileWorkloadRequest compiles an edit-model config into a manifest.
type CompileWorkloadRequest struct {
	// Kind overrides config.kind when set
	Kind   string              `json:"kind,omitempty"`
	Config spec.WorkloadConfig `json:"config"`
	// SkipValidation compiles without the outer validation pass
	SkipValidation bool `json:"skipValidation,omitempty"`
}

// CompileWorkloadResponse carries the manifest both as a tree and as YAML text.
type CompileWorkloadResponse struct {
	Kind       string                 `json:"kind"`
	APIVersion string                 `json:"apiVersion"`
	Manifest   map[string]interface{} `json:"manifest"`
	YAML       string                 `json:"yaml"`
}

// DecompileWorkloadRequest recovers a config from a manifest. Exactly one
// of Manifest and YAML is expected; Manifest wins when both are set.
type DecompileWorkloadRequest struct {
	Manifest map[string]interface{} `json:"manifest,omitempty"`
	// YAML may hold several documents; only the first is decompiled
	YAML string `json:"yaml,omitempty"`
}

type DecompileWorkloadResponse struct {
	Kind   string               `json:"kind"`
	Config *spec.WorkloadConfig `json:"config"`
}

// KindBase describes one supported workload kind.
type KindBase struct {
	Kind        string `json:"kind"`
	APIVersion  string `json:"apiVersion"`
	HasReplicas bool   `json:"hasReplicas"`
	Batch       bool   `json:"batch"`
}

type ListKindsResponse struct {
	Kinds []KindBase `json:"kinds"`
}
