package spec

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind is the workload resource kind a config compiles to.
type Kind string

const (
	KindDeployment  Kind = "Deployment"
	KindStatefulSet Kind = "StatefulSet"
	KindDaemonSet   Kind = "DaemonSet"
	KindJob         Kind = "Job"
	KindCronJob     Kind = "CronJob"
	KindRollout     Kind = "Rollout"
)

// RolloutGroup is the API group of Argo Rollouts.
const RolloutGroup = "argoproj.io"

var kinds = []Kind{KindDeployment, KindStatefulSet, KindDaemonSet, KindJob, KindCronJob, KindRollout}

var kindVersions = map[Kind]schema.GroupVersion{
	KindDeployment:  {Group: "apps", Version: "v1"},
	KindStatefulSet: {Group: "apps", Version: "v1"},
	KindDaemonSet:   {Group: "apps", Version: "v1"},
	KindJob:         {Group: "batch", Version: "v1"},
	KindCronJob:     {Group: "batch", Version: "v1"},
	KindRollout:     {Group: RolloutGroup, Version: "v1alpha1"},
}

// Kinds returns every supported workload kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind matches a kind name case-insensitively.
func ParseKind(name string) (Kind, bool) {
	name = strings.TrimSpace(name)
	for _, k := range kinds {
		if strings.EqualFold(string(k), name) {
			return k, true
		}
	}
	return "", false
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	_, ok := kindVersions[k]
	return ok
}

// GroupVersionKind returns the manifest GVK for the kind. The zero value is
// returned for unsupported kinds.
func (k Kind) GroupVersionKind() schema.GroupVersionKind {
	gv, ok := kindVersions[k]
	if !ok {
		return schema.GroupVersionKind{}
	}
	return gv.WithKind(string(k))
}

// HasReplicas reports whether the kind carries a replica count.
func (k Kind) HasReplicas() bool {
	switch k {
	case KindDeployment, KindStatefulSet, KindRollout:
		return true
	default:
		return false
	}
}

// IsBatch reports whether pods of this kind run to completion.
func (k Kind) IsBatch() bool {
	return k == KindJob || k == KindCronJob
}
