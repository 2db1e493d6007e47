package workload

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

// DescriptionAnnotation holds the workload description.
const DescriptionAnnotation = "description"

// Compile renders cfg as a manifest of the given kind. An empty kind falls
// back to cfg.Kind. The only error is an unsupported kind; missing optional
// fields are left out of the manifest.
func (c *Compiler) Compile(kind spec.Kind, cfg *spec.WorkloadConfig) (*unstructured.Unstructured, error) {
	if cfg == nil {
		cfg = &spec.WorkloadConfig{}
	}
	if kind == "" {
		kind = cfg.Kind
	}
	builder, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	ctx := &buildContext{
		compiler: c,
		cfg:      cfg,
		name:     defaultOr(cfg.Name, c.defaults.Name),
		labels:   c.labelSet(cfg),
	}
	obj := &unstructured.Unstructured{Object: object{
		"metadata": c.buildMetadata(ctx),
		"spec":     builder.BuildSpec(ctx),
	}}
	obj.SetGroupVersionKind(kind.GroupVersionKind())
	return obj, nil
}

// Compile renders cfg with DefaultCompiler.
func Compile(kind spec.Kind, cfg *spec.WorkloadConfig) (*unstructured.Unstructured, error) {
	return DefaultCompiler.Compile(kind, cfg)
}

// labelSet collects the label rows, skipping rows with an empty key or
// value. With no usable rows it is the single synthetic app label.
func (c *Compiler) labelSet(cfg *spec.WorkloadConfig) map[string]string {
	labels := rowsToMap(cfg.Labels)
	if len(labels) == 0 {
		labels = map[string]string{c.defaults.LabelKey: defaultOr(cfg.Name, c.defaults.LabelValue)}
	}
	return labels
}

func (c *Compiler) buildMetadata(ctx *buildContext) object {
	out := object{
		"name":      ctx.name,
		"namespace": defaultOr(ctx.cfg.Namespace, c.defaults.Namespace),
		"labels":    stringMap(ctx.labels),
	}
	annotations := rowsToMap(ctx.cfg.Annotations)
	if ctx.cfg.Description != "" {
		if annotations == nil {
			annotations = map[string]string{}
		}
		annotations[DescriptionAnnotation] = ctx.cfg.Description
	}
	setObject(out, "annotations", stringMap(annotations))
	return out
}

func rowsToMap(rows []spec.KeyValue) map[string]string {
	var out map[string]string
	for _, row := range rows {
		if row.Key == "" || row.Value == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(rows))
		}
		out[row.Key] = row.Value
	}
	return out
}

// Decompile recovers a workload config from a manifest tree. The kind is
// taken from the document or inferred from its shape. It returns
// ErrUnrecognizedManifest when spec is missing or not an object, or when
// metadata is present but not an object.
func (c *Compiler) Decompile(obj map[string]interface{}) (*spec.WorkloadConfig, error) {
	if obj == nil {
		return nil, ErrUnrecognizedManifest
	}
	resourceSpec, ok := obj["spec"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: spec is missing or not an object", ErrUnrecognizedManifest)
	}
	var metadata object
	if raw := obj["metadata"]; raw != nil {
		if metadata, ok = raw.(map[string]interface{}); !ok {
			return nil, fmt.Errorf("%w: metadata is not an object", ErrUnrecognizedManifest)
		}
	}

	kind := InferKind(obj)
	builder := registry[kind]
	cfg := &spec.WorkloadConfig{
		Kind:      kind,
		Name:      getString(metadata, "name"),
		Namespace: defaultOr(getString(metadata, "namespace"), c.defaults.Namespace),
	}
	annotations := getStringMap(metadata, "annotations")
	cfg.Description = annotations[DescriptionAnnotation]
	delete(annotations, DescriptionAnnotation)
	cfg.Labels = mapToRows(getStringMap(metadata, "labels"))
	cfg.Annotations = mapToRows(annotations)

	c.parsePodSpec(getObject(builder.PodTemplate(resourceSpec), "spec"), cfg)
	builder.ParseSpec(resourceSpec, cfg)
	return cfg, nil
}

// Decompile recovers a config with DefaultCompiler.
func Decompile(obj map[string]interface{}) (*spec.WorkloadConfig, error) {
	return DefaultCompiler.Decompile(obj)
}

// mapToRows returns the entries sorted by key.
func mapToRows(m map[string]string) []spec.KeyValue {
	if len(m) == 0 {
		return nil
	}
	tree := make(object, len(m))
	for k, v := range m {
		tree[k] = v
	}
	rows := make([]spec.KeyValue, 0, len(m))
	for _, k := range sortedKeys(tree) {
		rows = append(rows, spec.KeyValue{Key: k, Value: m[k]})
	}
	return rows
}

// IsRollout reports whether a manifest is an Argo Rollout. Fragments
// returned by some backends lack kind and apiVersion, so a canary or
// blueGreen strategy block counts as much as the kind does.
func IsRollout(obj map[string]interface{}) bool {
	if getString(obj, "kind") == string(spec.KindRollout) {
		return true
	}
	if strings.Contains(getString(obj, "apiVersion"), spec.RolloutGroup) {
		return true
	}
	strategy := getObject(getObject(obj, "spec"), "strategy")
	return strategy["canary"] != nil || strategy["blueGreen"] != nil
}

// InferKind returns the workload kind of a manifest. Rollout evidence comes
// first, then the kind field, then the shape of spec; Deployment is the
// fallback.
func InferKind(obj map[string]interface{}) spec.Kind {
	if IsRollout(obj) {
		return spec.KindRollout
	}
	if kind, ok := spec.ParseKind(getString(obj, "kind")); ok {
		return kind
	}
	resourceSpec := getObject(obj, "spec")
	switch {
	case resourceSpec["jobTemplate"] != nil || resourceSpec["schedule"] != nil:
		return spec.KindCronJob
	case hasAny(resourceSpec, "completions", "parallelism", "backoffLimit", "activeDeadlineSeconds", "ttlSecondsAfterFinished"):
		return spec.KindJob
	case hasAny(resourceSpec, "serviceName", "podManagementPolicy", "volumeClaimTemplates"):
		return spec.KindStatefulSet
	default:
		return spec.KindDeployment
	}
}

func hasAny(m object, keys ...string) bool {
	for _, k := range keys {
		if m[k] != nil {
			return true
		}
	}
	return false
}
