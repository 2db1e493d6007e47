package workload

import (
	"errors"

	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

var (
	// ErrUnsupportedKind is returned by Compile for a kind outside spec.Kinds.
	ErrUnsupportedKind = errors.New("unsupported workload kind")
	// ErrUnrecognizedManifest is returned by Decompile when the document has
	// no usable spec or metadata.
	ErrUnrecognizedManifest = errors.New("manifest is not a recognizable workload")
)

// Defaults are the placeholder values used when a config leaves a field out.
type Defaults struct {
	Name           string
	Namespace      string
	LabelKey       string
	LabelValue     string
	ContainerName  string
	InitName       string
	ContainerImage string
	Replicas       int32
	Schedule       string

	// CanarySteps are used when a canary strategy renders no steps.
	CanarySteps []spec.CanaryStep
	// Blue-green services default to the workload name plus these suffixes.
	ActiveServiceSuffix  string
	PreviewServiceSuffix string
}

// NewDefaults returns the stock defaults: a 20/50/80 canary with ten minute
// pauses, and <name>-active / <name>-preview blue-green services.
func NewDefaults() Defaults {
	return Defaults{
		Name:           "example",
		Namespace:      "default",
		LabelKey:       "app",
		LabelValue:     "app",
		ContainerName:  "main",
		InitName:       "init",
		ContainerImage: "nginx:latest",
		Replicas:       1,
		Schedule:       "0 0 * * *",
		CanarySteps: []spec.CanaryStep{
			{SetWeight: ptr.To[int32](20), Pause: &spec.PauseSpec{Duration: "10m"}},
			{SetWeight: ptr.To[int32](50), Pause: &spec.PauseSpec{Duration: "10m"}},
			{SetWeight: ptr.To[int32](80), Pause: &spec.PauseSpec{Duration: "10m"}},
		},
		ActiveServiceSuffix:  "-active",
		PreviewServiceSuffix: "-preview",
	}
}

// Compiler converts between workload configs and manifest trees. Its
// defaults are fixed at construction and it holds no other state.
type Compiler struct {
	defaults Defaults
}

// NewCompiler copies defaults into a new Compiler. Canary steps that
// render no primitive step are replaced by the NewDefaults plan, so a
// compiled canary always carries steps.
func NewCompiler(defaults Defaults) *Compiler {
	if len(BuildCanarySteps(defaults.CanarySteps)) == 0 {
		defaults.CanarySteps = NewDefaults().CanarySteps
	}
	steps := make([]spec.CanaryStep, len(defaults.CanarySteps))
	copy(steps, defaults.CanarySteps)
	defaults.CanarySteps = steps
	return &Compiler{defaults: defaults}
}

// DefaultCompiler uses NewDefaults.
var DefaultCompiler = NewCompiler(NewDefaults())
