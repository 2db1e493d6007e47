// Package workload compiles the editable workload model into Kubernetes and
// Argo Rollouts manifest trees, and decompiles manifest trees back into the
// model.
//
// Every function here is pure: no I/O, no logging and no state shared
// between calls, so a Compiler may be used from any number of goroutines.
// Manifest trees only hold JSON compatible values (maps, slices, string,
// int64, float64, bool) so they can be wrapped in unstructured objects and
// deep copied.
package workload
