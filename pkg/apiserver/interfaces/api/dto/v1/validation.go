package v1

import (
	"kubemin-workload/pkg/apiserver/domain/spec"
)

// ValidationError represents a single validation error with field path and details
type ValidationError struct {
	// Field is the JSON path to the invalid field (e.g., "containers[0].image")
	Field string `json:"field"`
	// Code is the error code for programmatic handling
	Code string `json:"code"`
	// Message is the human-readable error description
	Message string `json:"message"`
}

// ValidateWorkloadRequest checks a config without compiling it.
type ValidateWorkloadRequest struct {
	Kind   string              `json:"kind,omitempty"`
	Config spec.WorkloadConfig `json:"config"`
}

// ValidateWorkloadResponse is returned by the validate API, and by the
// compile API when validation fails.
type ValidateWorkloadResponse struct {
	// Valid indicates whether the config passes all validations
	Valid bool `json:"valid"`
	// Errors contains all validation errors found during validation
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validation error codes
const (
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidValue         = "INVALID_VALUE"
	ErrCodeUnsupportedKind      = "UNSUPPORTED_KIND"

	// Metadata errors
	ErrCodeInvalidName      = "INVALID_NAME"
	ErrCodeInvalidNamespace = "INVALID_NAMESPACE"
	ErrCodeInvalidLabel     = "INVALID_LABEL"
	ErrCodeDuplicateKey     = "DUPLICATE_KEY"

	// Container errors
	ErrCodeMissingContainer   = "MISSING_CONTAINER"
	ErrCodeMissingImage       = "MISSING_IMAGE"
	ErrCodeDuplicateContainer = "DUPLICATE_CONTAINER"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeUnknownVolume      = "UNKNOWN_VOLUME"
	ErrCodeDuplicateVolume    = "DUPLICATE_VOLUME"

	// Scheduling errors
	ErrCodeInvalidAffinityValues = "INVALID_AFFINITY_VALUES"

	// Kind specific errors
	ErrCodeInvalidSchedule = "INVALID_SCHEDULE"
	ErrCodeInvalidDuration = "INVALID_DURATION"
)
