package bcode

// ErrInvalidRequestBody the request body could not be decoded
var ErrInvalidRequestBody = NewBcode(400, 10000, "the request body is not valid JSON")

// ErrWorkloadConfig workload config failed validation
var ErrWorkloadConfig = NewBcode(400, 10001, "workload config is invalid")

// ErrUnsupportedKind the requested kind is not one of the supported workloads
var ErrUnsupportedKind = NewBcode(400, 10002, "workload kind is not supported")

// ErrUnrecognizedManifest the manifest has no usable spec
var ErrUnrecognizedManifest = NewBcode(422, 10003, "manifest is not a recognizable workload")

// ErrManifestSyntax the manifest text is neither YAML nor JSON
var ErrManifestSyntax = NewBcode(400, 10004, "manifest text could not be parsed")

// ErrUnsupportedFormat the output format is neither json nor yaml
var ErrUnsupportedFormat = NewBcode(400, 10005, "output format must be json or yaml")

// ErrRequestTooLarge the request body exceeds the configured limit
var ErrRequestTooLarge = NewBcode(413, 10006, "the request body is too large")
