package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"kubemin-workload/pkg/apiserver/domain/spec"
	apisv1 "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
)

// configValidator runs the struct tag rules of the edit model followed by
// the cross-field rules that tags cannot express.
type configValidator struct {
	structValidate *validator.Validate
}

func newConfigValidator() *configValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &configValidator{structValidate: v}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func (v *configValidator) validate(kind spec.Kind, cfg *spec.WorkloadConfig) []apisv1.ValidationError {
	if cfg == nil {
		return []apisv1.ValidationError{{Field: "config", Code: apisv1.ErrCodeMissingRequiredField, Message: "config is required"}}
	}
	var errs []apisv1.ValidationError
	errs = append(errs, validateKind(kind)...)
	errs = append(errs, v.validateStruct(cfg)...)
	errs = append(errs, validateMetadata(cfg)...)
	volumes, volumeErrs := validateVolumes(cfg.Volumes)
	errs = append(errs, volumeErrs...)
	errs = append(errs, validateContainers(cfg, volumes)...)
	errs = append(errs, validateScheduling(cfg.Scheduling)...)
	errs = append(errs, validateKindFields(kind, cfg)...)
	return errs
}

func validateKind(kind spec.Kind) []apisv1.ValidationError {
	if kind == "" {
		return []apisv1.ValidationError{{Field: "kind", Code: apisv1.ErrCodeMissingRequiredField, Message: "kind is required"}}
	}
	if !kind.IsValid() {
		return []apisv1.ValidationError{{
			Field:   "kind",
			Code:    apisv1.ErrCodeUnsupportedKind,
			Message: fmt.Sprintf("kind %q is not one of %v", kind, spec.Kinds()),
		}}
	}
	return nil
}

func (v *configValidator) validateStruct(cfg *spec.WorkloadConfig) []apisv1.ValidationError {
	err := v.structValidate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []apisv1.ValidationError{{Field: "config", Code: apisv1.ErrCodeInvalidValue, Message: err.Error()}}
	}
	out := make([]apisv1.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		code := apisv1.ErrCodeInvalidValue
		if fe.Tag() == "required" {
			code = apisv1.ErrCodeMissingRequiredField
		}
		out = append(out, apisv1.ValidationError{Field: fieldPath(fe.Namespace()), Code: code, Message: tagMessage(fe)})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

func validateMetadata(cfg *spec.WorkloadConfig) []apisv1.ValidationError {
	var errs []apisv1.ValidationError
	if cfg.Name != "" {
		if msgs := validation.IsDNS1123Subdomain(cfg.Name); len(msgs) > 0 {
			errs = append(errs, apisv1.ValidationError{Field: "name", Code: apisv1.ErrCodeInvalidName, Message: strings.Join(msgs, "; ")})
		}
	}
	if cfg.Namespace != "" {
		if msgs := validation.IsDNS1123Label(cfg.Namespace); len(msgs) > 0 {
			errs = append(errs, apisv1.ValidationError{Field: "namespace", Code: apisv1.ErrCodeInvalidNamespace, Message: strings.Join(msgs, "; ")})
		}
	}
	errs = append(errs, validateRows("labels", cfg.Labels, true)...)
	errs = append(errs, validateRows("annotations", cfg.Annotations, false)...)
	for _, key := range sortedMapKeys(cfg.NodeSelector) {
		if msgs := validation.IsQualifiedName(key); len(msgs) > 0 {
			errs = append(errs, apisv1.ValidationError{
				Field:   fmt.Sprintf("nodeSelector[%s]", key),
				Code:    apisv1.ErrCodeInvalidLabel,
				Message: strings.Join(msgs, "; "),
			})
		}
	}
	return errs
}

// validateRows enforces unique keys in a key/value list. Rows left
// completely blank are ignored, matching what the compiler emits.
func validateRows(field string, rows []spec.KeyValue, labels bool) []apisv1.ValidationError {
	var errs []apisv1.ValidationError
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		path := fmt.Sprintf("%s[%d]", field, i)
		if row.Key == "" {
			if row.Value != "" {
				errs = append(errs, apisv1.ValidationError{Field: path + ".key", Code: apisv1.ErrCodeMissingRequiredField, Message: "key is required"})
			}
			continue
		}
		if first, dup := seen[row.Key]; dup {
			errs = append(errs, apisv1.ValidationError{
				Field:   path + ".key",
				Code:    apisv1.ErrCodeDuplicateKey,
				Message: fmt.Sprintf("key %q is already used by %s[%d]", row.Key, field, first),
			})
			continue
		}
		seen[row.Key] = i
		if msgs := validation.IsQualifiedName(row.Key); len(msgs) > 0 {
			errs = append(errs, apisv1.ValidationError{Field: path + ".key", Code: apisv1.ErrCodeInvalidLabel, Message: strings.Join(msgs, "; ")})
		}
		if labels {
			if msgs := validation.IsValidLabelValue(row.Value); len(msgs) > 0 {
				errs = append(errs, apisv1.ValidationError{Field: path + ".value", Code: apisv1.ErrCodeInvalidLabel, Message: strings.Join(msgs, "; ")})
			}
		}
	}
	return errs
}

// validateVolumes returns the declared volume names along with any errors.
func validateVolumes(volumes []spec.VolumeSpec) (map[string]bool, []apisv1.ValidationError) {
	var errs []apisv1.ValidationError
	names := make(map[string]bool, len(volumes))
	for i := range volumes {
		v := &volumes[i]
		path := fmt.Sprintf("volumes[%d]", i)
		if v.Name != "" {
			if names[v.Name] {
				errs = append(errs, apisv1.ValidationError{Field: path + ".name", Code: apisv1.ErrCodeDuplicateVolume, Message: fmt.Sprintf("volume %q is declared twice", v.Name)})
			}
			names[v.Name] = true
		}
		missing := func(field string) {
			errs = append(errs, apisv1.ValidationError{Field: path + "." + field, Code: apisv1.ErrCodeMissingRequiredField, Message: field + " is required"})
		}
		switch v.BackingType() {
		case spec.VolumeHostPath:
			if v.HostPath == nil || v.HostPath.Path == "" {
				missing("hostPath.path")
			}
		case spec.VolumeConfigMap:
			if v.ConfigMap == nil || v.ConfigMap.Name == "" {
				missing("configMap.name")
			}
		case spec.VolumeSecret:
			if v.Secret == nil || v.Secret.SecretName == "" {
				missing("secret.secretName")
			}
		case spec.VolumePersistentVolumeClaim:
			if v.PersistentVolumeClaim == nil || v.PersistentVolumeClaim.ClaimName == "" {
				missing("persistentVolumeClaim.claimName")
			}
		default:
			if v.EmptyDir != nil {
				errs = append(errs, validateQuantity(path+".emptyDir.sizeLimit", v.EmptyDir.SizeLimit)...)
			}
		}
	}
	return names, errs
}

func validateContainers(cfg *spec.WorkloadConfig, volumes map[string]bool) []apisv1.ValidationError {
	var errs []apisv1.ValidationError
	if len(cfg.Containers) == 0 {
		errs = append(errs, apisv1.ValidationError{Field: "containers", Code: apisv1.ErrCodeMissingContainer, Message: "at least one container is required"})
	}
	names := make(map[string]string)
	check := func(field string, containers []spec.ContainerSpec) {
		for i := range containers {
			c := &containers[i]
			path := fmt.Sprintf("%s[%d]", field, i)
			if strings.TrimSpace(c.Image) == "" {
				errs = append(errs, apisv1.ValidationError{Field: path + ".image", Code: apisv1.ErrCodeMissingImage, Message: "image is required"})
			}
			if c.Name != "" {
				if other, dup := names[c.Name]; dup {
					errs = append(errs, apisv1.ValidationError{
						Field:   path + ".name",
						Code:    apisv1.ErrCodeDuplicateContainer,
						Message: fmt.Sprintf("container name %q is already used by %s", c.Name, other),
					})
				} else if msgs := validation.IsDNS1123Label(c.Name); len(msgs) > 0 {
					errs = append(errs, apisv1.ValidationError{Field: path + ".name", Code: apisv1.ErrCodeInvalidName, Message: strings.Join(msgs, "; ")})
				}
				names[c.Name] = path
			}
			errs = append(errs, validateResources(path+".resources", c.Resources)...)
			for j, m := range c.VolumeMounts {
				if m.Name != "" && !volumes[m.Name] {
					errs = append(errs, apisv1.ValidationError{
						Field:   fmt.Sprintf("%s.volumeMounts[%d].name", path, j),
						Code:    apisv1.ErrCodeUnknownVolume,
						Message: fmt.Sprintf("volume %q is not declared", m.Name),
					})
				}
			}
		}
	}
	check("containers", cfg.Containers)
	check("initContainers", cfg.InitContainers)
	return errs
}

func validateResources(path string, r *spec.ResourcesSpec) []apisv1.ValidationError {
	if r == nil {
		return nil
	}
	var errs []apisv1.ValidationError
	if req := r.Requests; req != nil {
		errs = append(errs, validateQuantity(path+".requests.cpu", req.CPU)...)
		errs = append(errs, validateQuantity(path+".requests.memory", req.Memory)...)
		errs = append(errs, validateQuantity(path+".requests.ephemeral-storage", req.EphemeralStorage)...)
	}
	if lim := r.Limits; lim != nil {
		errs = append(errs, validateQuantity(path+".limits.cpu", lim.CPU)...)
		errs = append(errs, validateQuantity(path+".limits.memory", lim.Memory)...)
		errs = append(errs, validateQuantity(path+".limits.ephemeral-storage", lim.EphemeralStorage)...)
		errs = append(errs, validateQuantity(path+".limits.nvidia.com/gpu", lim.GPU)...)
	}
	return errs
}

func validateQuantity(field, value string) []apisv1.ValidationError {
	if value == "" {
		return nil
	}
	if _, err := resource.ParseQuantity(value); err != nil {
		return []apisv1.ValidationError{{Field: field, Code: apisv1.ErrCodeInvalidQuantity, Message: fmt.Sprintf("%q is not a quantity: %v", value, err)}}
	}
	return nil
}

func validateScheduling(s *spec.SchedulingSpec) []apisv1.ValidationError {
	if s.IsEmpty() {
		return nil
	}
	var errs []apisv1.ValidationError
	nodeRows := func(field string, rows []spec.NodeAffinityRow) {
		for i, row := range rows {
			if msg := affinityValuesProblem(row.Operator, row.Values); msg != "" {
				errs = append(errs, apisv1.ValidationError{Field: fmt.Sprintf("scheduling.%s[%d].values", field, i), Code: apisv1.ErrCodeInvalidAffinityValues, Message: msg})
			}
		}
	}
	podRows := func(field string, rows []spec.PodAffinityRow) {
		for i, row := range rows {
			if msg := affinityValuesProblem(row.Operator, row.LabelValues); msg != "" {
				errs = append(errs, apisv1.ValidationError{Field: fmt.Sprintf("scheduling.%s[%d].labelValues", field, i), Code: apisv1.ErrCodeInvalidAffinityValues, Message: msg})
			}
		}
	}
	nodeRows("nodeAffinityRequired", s.NodeAffinityRequired)
	nodeRows("nodeAffinityPreferred", s.NodeAffinityPreferred)
	podRows("podAffinityRequired", s.PodAffinityRequired)
	podRows("podAffinityPreferred", s.PodAffinityPreferred)
	podRows("podAntiAffinityRequired", s.PodAntiAffinityRequired)
	podRows("podAntiAffinityPreferred", s.PodAntiAffinityPreferred)
	return errs
}

// affinityValuesProblem applies the value count rules of label selector
// and node selector operators. An empty string means the row is fine.
func affinityValuesProblem(operator string, values spec.ValueList) string {
	switch operator {
	case "In", "NotIn":
		if len(values) == 0 {
			return fmt.Sprintf("operator %s needs at least one value", operator)
		}
	case "Exists", "DoesNotExist":
		if len(values) > 0 {
			return fmt.Sprintf("operator %s takes no values", operator)
		}
	case "Gt", "Lt":
		if len(values) != 1 {
			return fmt.Sprintf("operator %s needs exactly one value", operator)
		}
		if _, err := strconv.ParseInt(values[0], 10, 64); err != nil {
			return fmt.Sprintf("operator %s needs an integer value, got %q", operator, values[0])
		}
	}
	return ""
}

func validateKindFields(kind spec.Kind, cfg *spec.WorkloadConfig) []apisv1.ValidationError {
	var errs []apisv1.ValidationError
	switch kind {
	case spec.KindCronJob:
		if cfg.Schedule != "" {
			if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
				errs = append(errs, apisv1.ValidationError{Field: "schedule", Code: apisv1.ErrCodeInvalidSchedule, Message: err.Error()})
			}
		}
	case spec.KindRollout:
		r := cfg.RolloutStrategy
		if r == nil || r.StrategyType() != spec.RolloutCanary || r.Canary == nil {
			break
		}
		for i, step := range r.Canary.Steps {
			if step.Pause == nil || step.Pause.Indefinite() {
				continue
			}
			if !validPauseDuration(step.Pause.Duration) {
				errs = append(errs, apisv1.ValidationError{
					Field:   fmt.Sprintf("rolloutStrategy.canary.steps[%d].pause.duration", i),
					Code:    apisv1.ErrCodeInvalidDuration,
					Message: fmt.Sprintf("%q is neither a duration like 10m nor a number of seconds", step.Pause.Duration),
				})
			}
		}
	}
	return errs
}

// validPauseDuration accepts what Argo Rollouts accepts: a Go duration
// string or a bare number of seconds.
func validPauseDuration(d string) bool {
	if _, err := strconv.Atoi(d); err == nil {
		return true
	}
	_, err := time.ParseDuration(d)
	return err == nil
}

func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
