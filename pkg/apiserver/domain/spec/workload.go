package spec

// This package defines the editable workload model. It is the flat,
// form-oriented view that the workload compiler turns into manifests and
// recovers from them.

import "k8s.io/apimachinery/pkg/util/intstr"

// WorkloadConfig is the root of the edit model.
type WorkloadConfig struct {
	Kind        Kind       `json:"kind,omitempty"`
	Name        string     `json:"name" validate:"omitempty,max=253"`
	Namespace   string     `json:"namespace,omitempty" validate:"omitempty,max=63"`
	Description string     `json:"description,omitempty"`
	Replicas    *int32     `json:"replicas,omitempty" validate:"omitempty,min=0"`
	Labels      []KeyValue `json:"labels,omitempty"`
	Annotations []KeyValue `json:"annotations,omitempty"`

	Containers       []ContainerSpec `json:"containers" validate:"dive"`
	InitContainers   []ContainerSpec `json:"initContainers,omitempty" validate:"dive"`
	Volumes          []VolumeSpec    `json:"volumes,omitempty" validate:"dive"`
	ImagePullSecrets []string        `json:"imagePullSecrets,omitempty"`

	Scheduling   *SchedulingSpec   `json:"scheduling,omitempty"`
	NodeSelector map[string]string `json:"nodeSelector,omitempty"`
	Tolerations  []TolerationSpec  `json:"tolerations,omitempty" validate:"dive"`

	// Deployment and Rollout
	Strategy                *UpdateStrategySpec `json:"strategy,omitempty"`
	MinReadySeconds         *int32              `json:"minReadySeconds,omitempty"`
	RevisionHistoryLimit    *int32              `json:"revisionHistoryLimit,omitempty"`
	ProgressDeadlineSeconds *int32              `json:"progressDeadlineSeconds,omitempty"`

	TerminationGracePeriodSeconds *int64         `json:"terminationGracePeriodSeconds,omitempty"`
	DNSPolicy                     string         `json:"dnsPolicy,omitempty" validate:"omitempty,oneof=ClusterFirst ClusterFirstWithHostNet Default None"`
	DNSConfig                     *DNSConfigSpec `json:"dnsConfig,omitempty"`
	HostNetwork                   bool           `json:"hostNetwork,omitempty"`

	// StatefulSet
	ServiceName         string `json:"serviceName,omitempty"`
	PodManagementPolicy string `json:"podManagementPolicy,omitempty" validate:"omitempty,oneof=OrderedReady Parallel"`

	// CronJob
	Schedule                   string `json:"schedule,omitempty"`
	Suspend                    *bool  `json:"suspend,omitempty"`
	ConcurrencyPolicy          string `json:"concurrencyPolicy,omitempty" validate:"omitempty,oneof=Allow Forbid Replace"`
	SuccessfulJobsHistoryLimit *int32 `json:"successfulJobsHistoryLimit,omitempty"`
	FailedJobsHistoryLimit     *int32 `json:"failedJobsHistoryLimit,omitempty"`

	// Job, and the job template of a CronJob
	Completions             *int32 `json:"completions,omitempty"`
	Parallelism             *int32 `json:"parallelism,omitempty"`
	BackoffLimit            *int32 `json:"backoffLimit,omitempty"`
	ActiveDeadlineSeconds   *int64 `json:"activeDeadlineSeconds,omitempty"`
	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`

	// Rollout
	RolloutStrategy *RolloutStrategySpec `json:"rolloutStrategy,omitempty"`
}

// TolerationSpec mirrors a pod toleration.
type TolerationSpec struct {
	Key               string `json:"key,omitempty"`
	Operator          string `json:"operator,omitempty" validate:"omitempty,oneof=Equal Exists"`
	Value             string `json:"value,omitempty"`
	Effect            string `json:"effect,omitempty" validate:"omitempty,oneof=NoSchedule PreferNoSchedule NoExecute"`
	TolerationSeconds *int64 `json:"tolerationSeconds,omitempty"`
}

// DNSConfigSpec mirrors the pod DNS config.
type DNSConfigSpec struct {
	Nameservers []string        `json:"nameservers,omitempty"`
	Searches    []string        `json:"searches,omitempty"`
	Options     []DNSOptionSpec `json:"options,omitempty"`
}

type DNSOptionSpec struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// UpdateStrategySpec is the Deployment update strategy.
type UpdateStrategySpec struct {
	Type          string             `json:"type" validate:"omitempty,oneof=RollingUpdate Recreate"`
	RollingUpdate *RollingUpdateSpec `json:"rollingUpdate,omitempty"`
}

type RollingUpdateSpec struct {
	MaxUnavailable *intstr.IntOrString `json:"maxUnavailable,omitempty"`
	MaxSurge       *intstr.IntOrString `json:"maxSurge,omitempty"`
}
