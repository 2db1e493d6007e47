package workload

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

// kindBuilder knows where a kind keeps its pod template and which fields
// sit next to it.
type kindBuilder interface {
	Kind() spec.Kind
	// BuildSpec renders the resource spec.
	BuildSpec(ctx *buildContext) object
	// PodTemplate returns the pod template inside a resource spec.
	PodTemplate(resourceSpec object) object
	// ParseSpec copies the kind specific fields of a resource spec into cfg.
	ParseSpec(resourceSpec object, cfg *spec.WorkloadConfig)
}

var registry = make(map[spec.Kind]kindBuilder)

// register is only called from init; the registry is read-only afterwards.
func register(b kindBuilder) {
	if _, exists := registry[b.Kind()]; exists {
		panic(fmt.Sprintf("workload kind %q registered twice", b.Kind()))
	}
	registry[b.Kind()] = b
}

func init() {
	register(deploymentBuilder{})
	register(statefulSetBuilder{})
	register(daemonSetBuilder{})
	register(jobBuilder{})
	register(cronJobBuilder{})
	register(rolloutBuilder{})
}

// buildContext carries the resolved values shared by every kind.
type buildContext struct {
	compiler *Compiler
	cfg      *spec.WorkloadConfig
	name     string
	labels   map[string]string
}

// selector returns a new selector each call.
func (ctx *buildContext) selector() object {
	return object{"matchLabels": stringMap(ctx.labels)}
}

// podTemplate returns a new pod template each call. Batch kinds always get
// restartPolicy Never.
func (ctx *buildContext) podTemplate(batch bool) object {
	podSpec := ctx.compiler.buildPodSpec(ctx.cfg)
	if batch {
		podSpec["restartPolicy"] = string(corev1.RestartPolicyNever)
	}
	return object{
		"metadata": object{"labels": stringMap(ctx.labels)},
		"spec":     podSpec,
	}
}

func (ctx *buildContext) replicas() int64 {
	if ctx.cfg.Replicas != nil {
		return int64(*ctx.cfg.Replicas)
	}
	return int64(ctx.compiler.defaults.Replicas)
}

func templateAt(resourceSpec object) object {
	return getObject(resourceSpec, "template")
}

type deploymentBuilder struct{}

func (deploymentBuilder) Kind() spec.Kind { return spec.KindDeployment }

func (deploymentBuilder) BuildSpec(ctx *buildContext) object {
	cfg := ctx.cfg
	out := object{
		"replicas": ctx.replicas(),
		"selector": ctx.selector(),
		"template": ctx.podTemplate(false),
	}
	setObject(out, "strategy", buildDeploymentStrategy(cfg.Strategy))
	setInt32(out, "minReadySeconds", cfg.MinReadySeconds)
	setInt32(out, "revisionHistoryLimit", cfg.RevisionHistoryLimit)
	setInt32(out, "progressDeadlineSeconds", cfg.ProgressDeadlineSeconds)
	return out
}

func (deploymentBuilder) PodTemplate(resourceSpec object) object { return templateAt(resourceSpec) }

func (deploymentBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	cfg.Replicas = getInt32(m, "replicas")
	cfg.Strategy = parseDeploymentStrategy(getObject(m, "strategy"))
	cfg.MinReadySeconds = getInt32(m, "minReadySeconds")
	cfg.RevisionHistoryLimit = getInt32(m, "revisionHistoryLimit")
	cfg.ProgressDeadlineSeconds = getInt32(m, "progressDeadlineSeconds")
}

// buildDeploymentStrategy emits rollingUpdate only for the RollingUpdate type.
func buildDeploymentStrategy(s *spec.UpdateStrategySpec) object {
	if s == nil || s.Type == "" {
		return nil
	}
	out := object{"type": s.Type}
	if appsv1.DeploymentStrategyType(s.Type) == appsv1.RollingUpdateDeploymentStrategyType && s.RollingUpdate != nil {
		ru := object{}
		setIntOrString(ru, "maxUnavailable", s.RollingUpdate.MaxUnavailable)
		setIntOrString(ru, "maxSurge", s.RollingUpdate.MaxSurge)
		setObject(out, "rollingUpdate", ru)
	}
	return out
}

func parseDeploymentStrategy(m object) *spec.UpdateStrategySpec {
	if m == nil || getString(m, "type") == "" {
		return nil
	}
	s := &spec.UpdateStrategySpec{Type: getString(m, "type")}
	if ru := getObject(m, "rollingUpdate"); ru != nil {
		s.RollingUpdate = &spec.RollingUpdateSpec{
			MaxUnavailable: getIntOrString(ru, "maxUnavailable"),
			MaxSurge:       getIntOrString(ru, "maxSurge"),
		}
	}
	return s
}

type statefulSetBuilder struct{}

func (statefulSetBuilder) Kind() spec.Kind { return spec.KindStatefulSet }

func (statefulSetBuilder) BuildSpec(ctx *buildContext) object {
	out := object{
		"replicas":    ctx.replicas(),
		"serviceName": defaultOr(ctx.cfg.ServiceName, ctx.name),
		"selector":    ctx.selector(),
		"template":    ctx.podTemplate(false),
	}
	setString(out, "podManagementPolicy", ctx.cfg.PodManagementPolicy)
	setInt32(out, "minReadySeconds", ctx.cfg.MinReadySeconds)
	setInt32(out, "revisionHistoryLimit", ctx.cfg.RevisionHistoryLimit)
	return out
}

func (statefulSetBuilder) PodTemplate(resourceSpec object) object { return templateAt(resourceSpec) }

func (statefulSetBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	cfg.Replicas = getInt32(m, "replicas")
	cfg.ServiceName = getString(m, "serviceName")
	cfg.PodManagementPolicy = getString(m, "podManagementPolicy")
	cfg.MinReadySeconds = getInt32(m, "minReadySeconds")
	cfg.RevisionHistoryLimit = getInt32(m, "revisionHistoryLimit")
}

type daemonSetBuilder struct{}

func (daemonSetBuilder) Kind() spec.Kind { return spec.KindDaemonSet }

func (daemonSetBuilder) BuildSpec(ctx *buildContext) object {
	out := object{
		"selector": ctx.selector(),
		"template": ctx.podTemplate(false),
	}
	setInt32(out, "minReadySeconds", ctx.cfg.MinReadySeconds)
	setInt32(out, "revisionHistoryLimit", ctx.cfg.RevisionHistoryLimit)
	return out
}

func (daemonSetBuilder) PodTemplate(resourceSpec object) object { return templateAt(resourceSpec) }

func (daemonSetBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	cfg.MinReadySeconds = getInt32(m, "minReadySeconds")
	cfg.RevisionHistoryLimit = getInt32(m, "revisionHistoryLimit")
}

type jobBuilder struct{}

func (jobBuilder) Kind() spec.Kind { return spec.KindJob }

func (jobBuilder) BuildSpec(ctx *buildContext) object {
	out := object{"template": ctx.podTemplate(true)}
	setJobFields(out, ctx.cfg)
	return out
}

func (jobBuilder) PodTemplate(resourceSpec object) object { return templateAt(resourceSpec) }

func (jobBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	parseJobFields(m, cfg)
}

func setJobFields(out object, cfg *spec.WorkloadConfig) {
	setInt32(out, "completions", cfg.Completions)
	setInt32(out, "parallelism", cfg.Parallelism)
	setInt32(out, "backoffLimit", cfg.BackoffLimit)
	setInt64(out, "activeDeadlineSeconds", cfg.ActiveDeadlineSeconds)
	setInt32(out, "ttlSecondsAfterFinished", cfg.TTLSecondsAfterFinished)
}

func parseJobFields(m object, cfg *spec.WorkloadConfig) {
	cfg.Completions = getInt32(m, "completions")
	cfg.Parallelism = getInt32(m, "parallelism")
	cfg.BackoffLimit = getInt32(m, "backoffLimit")
	cfg.ActiveDeadlineSeconds = getInt64(m, "activeDeadlineSeconds")
	cfg.TTLSecondsAfterFinished = getInt32(m, "ttlSecondsAfterFinished")
}

type cronJobBuilder struct{}

func (cronJobBuilder) Kind() spec.Kind { return spec.KindCronJob }

func (cronJobBuilder) BuildSpec(ctx *buildContext) object {
	cfg := ctx.cfg
	jobSpec := object{"template": ctx.podTemplate(true)}
	setJobFields(jobSpec, cfg)

	out := object{
		"schedule":    defaultOr(cfg.Schedule, ctx.compiler.defaults.Schedule),
		"jobTemplate": object{"spec": jobSpec},
	}
	setBool(out, "suspend", cfg.Suspend)
	if cfg.ConcurrencyPolicy != "" {
		out["concurrencyPolicy"] = string(batchv1.ConcurrencyPolicy(cfg.ConcurrencyPolicy))
	}
	setInt32(out, "successfulJobsHistoryLimit", cfg.SuccessfulJobsHistoryLimit)
	setInt32(out, "failedJobsHistoryLimit", cfg.FailedJobsHistoryLimit)
	return out
}

func (cronJobBuilder) PodTemplate(resourceSpec object) object {
	return templateAt(getObject(getObject(resourceSpec, "jobTemplate"), "spec"))
}

func (cronJobBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	cfg.Schedule = getString(m, "schedule")
	cfg.Suspend = getBool(m, "suspend")
	cfg.ConcurrencyPolicy = getString(m, "concurrencyPolicy")
	cfg.SuccessfulJobsHistoryLimit = getInt32(m, "successfulJobsHistoryLimit")
	cfg.FailedJobsHistoryLimit = getInt32(m, "failedJobsHistoryLimit")
	parseJobFields(getObject(getObject(m, "jobTemplate"), "spec"), cfg)
}

type rolloutBuilder struct{}

func (rolloutBuilder) Kind() spec.Kind { return spec.KindRollout }

func (rolloutBuilder) BuildSpec(ctx *buildContext) object {
	cfg := ctx.cfg
	out := object{
		"replicas": ctx.replicas(),
		"selector": ctx.selector(),
		"template": ctx.podTemplate(false),
		"strategy": ctx.compiler.BuildRolloutStrategy(cfg.RolloutStrategy, ctx.name),
	}
	setInt32(out, "minReadySeconds", cfg.MinReadySeconds)
	setInt32(out, "revisionHistoryLimit", cfg.RevisionHistoryLimit)
	setInt32(out, "progressDeadlineSeconds", cfg.ProgressDeadlineSeconds)
	return out
}

func (rolloutBuilder) PodTemplate(resourceSpec object) object { return templateAt(resourceSpec) }

func (rolloutBuilder) ParseSpec(m object, cfg *spec.WorkloadConfig) {
	cfg.Replicas = getInt32(m, "replicas")
	cfg.RolloutStrategy = ParseRolloutStrategy(getObject(m, "strategy"))
	cfg.MinReadySeconds = getInt32(m, "minReadySeconds")
	cfg.RevisionHistoryLimit = getInt32(m, "revisionHistoryLimit")
	cfg.ProgressDeadlineSeconds = getInt32(m, "progressDeadlineSeconds")
}
