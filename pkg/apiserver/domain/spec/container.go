package spec

import "k8s.io/apimachinery/pkg/util/intstr"

// ContainerSpec describes one container of the pod template.
type ContainerSpec struct {
	Name            string      `json:"name"`
	Image           string      `json:"image"`
	ImagePullPolicy string      `json:"imagePullPolicy,omitempty" validate:"omitempty,oneof=Always IfNotPresent Never"`
	Command         CommandText `json:"command,omitempty"`
	Args            CommandText `json:"args,omitempty"`
	WorkingDir      string      `json:"workingDir,omitempty"`

	Ports        []PortSpec        `json:"ports,omitempty" validate:"dive"`
	Env          []EnvVarSpec      `json:"env,omitempty" validate:"dive"`
	Resources    *ResourcesSpec    `json:"resources,omitempty"`
	VolumeMounts []VolumeMountSpec `json:"volumeMounts,omitempty" validate:"dive"`
	Lifecycle    *LifecycleSpec    `json:"lifecycle,omitempty"`

	StartupProbe   *ProbeSpec `json:"startupProbe,omitempty"`
	LivenessProbe  *ProbeSpec `json:"livenessProbe,omitempty"`
	ReadinessProbe *ProbeSpec `json:"readinessProbe,omitempty"`
}

type PortSpec struct {
	Name          string `json:"name,omitempty"`
	ContainerPort int32  `json:"containerPort" validate:"min=1,max=65535"`
	Protocol      string `json:"protocol,omitempty" validate:"omitempty,oneof=TCP UDP SCTP"`
}

// EnvVarSpec is either a literal Value or a ValueFrom reference.
type EnvVarSpec struct {
	Name      string            `json:"name" validate:"required"`
	Value     string            `json:"value,omitempty"`
	ValueFrom *EnvVarSourceSpec `json:"valueFrom,omitempty"`
}

// EnvVarSourceSpec selects one of four reference kinds. Only the first
// populated reference, in field order, is honored.
type EnvVarSourceSpec struct {
	ConfigMapKeyRef  *KeySelectorSpec           `json:"configMapKeyRef,omitempty"`
	SecretKeyRef     *KeySelectorSpec           `json:"secretKeyRef,omitempty"`
	FieldRef         *FieldSelectorSpec         `json:"fieldRef,omitempty"`
	ResourceFieldRef *ResourceFieldSelectorSpec `json:"resourceFieldRef,omitempty"`
}

type KeySelectorSpec struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type FieldSelectorSpec struct {
	FieldPath string `json:"fieldPath"`
}

type ResourceFieldSelectorSpec struct {
	ContainerName string `json:"containerName,omitempty"`
	Resource      string `json:"resource"`
}

// ResourcesSpec holds the whitelisted resource quantities.
type ResourcesSpec struct {
	Requests *ResourceRequestsSpec `json:"requests,omitempty"`
	Limits   *ResourceLimitsSpec   `json:"limits,omitempty"`
}

type ResourceRequestsSpec struct {
	CPU              string `json:"cpu,omitempty"`
	Memory           string `json:"memory,omitempty"`
	EphemeralStorage string `json:"ephemeral-storage,omitempty"`
}

type ResourceLimitsSpec struct {
	CPU              string `json:"cpu,omitempty"`
	Memory           string `json:"memory,omitempty"`
	EphemeralStorage string `json:"ephemeral-storage,omitempty"`
	GPU              string `json:"nvidia.com/gpu,omitempty"`
}

type VolumeMountSpec struct {
	Name      string `json:"name" validate:"required"`
	MountPath string `json:"mountPath" validate:"required"`
	SubPath   string `json:"subPath,omitempty"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}

type LifecycleSpec struct {
	PostStart *LifecycleHandlerSpec `json:"postStart,omitempty"`
	PreStop   *LifecycleHandlerSpec `json:"preStop,omitempty"`
}

// LifecycleHandlerSpec runs Exec when it yields a command, else HTTPGet.
type LifecycleHandlerSpec struct {
	Exec    *ExecSpec    `json:"exec,omitempty"`
	HTTPGet *HTTPGetSpec `json:"httpGet,omitempty"`
}

// ProbeType discriminates the check a probe performs.
type ProbeType string

const (
	ProbeHTTPGet   ProbeType = "httpGet"
	ProbeExec      ProbeType = "exec"
	ProbeTCPSocket ProbeType = "tcpSocket"
)

// ProbeSpec is a health check. Type selects which one of HTTPGet, Exec and
// TCPSocket is used; the others are ignored. An empty Type means httpGet.
type ProbeSpec struct {
	Enabled   bool           `json:"enabled"`
	Type      ProbeType      `json:"type,omitempty" validate:"omitempty,oneof=httpGet exec tcpSocket"`
	HTTPGet   *HTTPGetSpec   `json:"httpGet,omitempty"`
	Exec      *ExecSpec      `json:"exec,omitempty"`
	TCPSocket *TCPSocketSpec `json:"tcpSocket,omitempty"`

	InitialDelaySeconds *int32 `json:"initialDelaySeconds,omitempty"`
	PeriodSeconds       *int32 `json:"periodSeconds,omitempty"`
	TimeoutSeconds      *int32 `json:"timeoutSeconds,omitempty"`
	SuccessThreshold    *int32 `json:"successThreshold,omitempty"`
	FailureThreshold    *int32 `json:"failureThreshold,omitempty"`
}

// CheckType returns the effective discriminant.
func (p *ProbeSpec) CheckType() ProbeType {
	switch p.Type {
	case ProbeExec, ProbeTCPSocket:
		return p.Type
	default:
		return ProbeHTTPGet
	}
}

type HTTPGetSpec struct {
	Path   string             `json:"path,omitempty"`
	Port   intstr.IntOrString `json:"port"`
	Host   string             `json:"host,omitempty"`
	Scheme string             `json:"scheme,omitempty" validate:"omitempty,oneof=HTTP HTTPS"`
}

type ExecSpec struct {
	Command CommandText `json:"command"`
}

type TCPSocketSpec struct {
	Port intstr.IntOrString `json:"port"`
	Host string             `json:"host,omitempty"`
}
