package workload

import (
	corev1 "k8s.io/api/core/v1"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

const (
	resourceGPU corev1.ResourceName = "nvidia.com/gpu"
)

// BuildContainer converts a container into its manifest form. Name and image
// fall back to defaultName and defaultImage; every other field is emitted
// only when it carries a value.
func BuildContainer(c *spec.ContainerSpec, defaultName, defaultImage string) map[string]interface{} {
	if c == nil {
		c = &spec.ContainerSpec{}
	}
	out := object{
		"name":  defaultOr(c.Name, defaultName),
		"image": defaultOr(c.Image, defaultImage),
	}
	setString(out, "imagePullPolicy", c.ImagePullPolicy)
	setStrings(out, "command", c.Command.Tokens())
	setStrings(out, "args", c.Args.Tokens())
	setString(out, "workingDir", c.WorkingDir)
	setList(out, "ports", buildPorts(c.Ports))
	setList(out, "env", buildEnv(c.Env))
	setObject(out, "resources", buildResources(c.Resources))
	setList(out, "volumeMounts", buildVolumeMounts(c.VolumeMounts))
	setObject(out, "lifecycle", buildLifecycle(c.Lifecycle))
	setObject(out, "startupProbe", BuildProbe(c.StartupProbe))
	setObject(out, "livenessProbe", BuildProbe(c.LivenessProbe))
	setObject(out, "readinessProbe", BuildProbe(c.ReadinessProbe))
	return out
}

func buildPorts(ports []spec.PortSpec) []interface{} {
	var out []interface{}
	for _, p := range ports {
		port := object{"containerPort": int64(p.ContainerPort)}
		setString(port, "name", p.Name)
		if p.Protocol != "" && corev1.Protocol(p.Protocol) != corev1.ProtocolTCP {
			port["protocol"] = p.Protocol
		}
		out = append(out, port)
	}
	return out
}

func buildEnv(env []spec.EnvVarSpec) []interface{} {
	var out []interface{}
	for _, e := range env {
		if e.Name == "" {
			continue
		}
		item := object{"name": e.Name}
		if from := buildEnvSource(e.ValueFrom); from != nil {
			item["valueFrom"] = from
		} else {
			setString(item, "value", e.Value)
		}
		out = append(out, item)
	}
	return out
}

func buildEnvSource(src *spec.EnvVarSourceSpec) object {
	if src == nil {
		return nil
	}
	switch {
	case src.ConfigMapKeyRef != nil:
		return object{"configMapKeyRef": object{"name": src.ConfigMapKeyRef.Name, "key": src.ConfigMapKeyRef.Key}}
	case src.SecretKeyRef != nil:
		return object{"secretKeyRef": object{"name": src.SecretKeyRef.Name, "key": src.SecretKeyRef.Key}}
	case src.FieldRef != nil:
		return object{"fieldRef": object{"fieldPath": src.FieldRef.FieldPath}}
	case src.ResourceFieldRef != nil:
		ref := object{"resource": src.ResourceFieldRef.Resource}
		setString(ref, "containerName", src.ResourceFieldRef.ContainerName)
		return object{"resourceFieldRef": ref}
	}
	return nil
}

// buildResources copies the whitelisted quantities only.
func buildResources(r *spec.ResourcesSpec) object {
	if r == nil {
		return nil
	}
	out := object{}
	if r.Requests != nil {
		requests := object{}
		setString(requests, string(corev1.ResourceCPU), r.Requests.CPU)
		setString(requests, string(corev1.ResourceMemory), r.Requests.Memory)
		setString(requests, string(corev1.ResourceEphemeralStorage), r.Requests.EphemeralStorage)
		setObject(out, "requests", requests)
	}
	if r.Limits != nil {
		limits := object{}
		setString(limits, string(corev1.ResourceCPU), r.Limits.CPU)
		setString(limits, string(corev1.ResourceMemory), r.Limits.Memory)
		setString(limits, string(corev1.ResourceEphemeralStorage), r.Limits.EphemeralStorage)
		setString(limits, string(resourceGPU), r.Limits.GPU)
		setObject(out, "limits", limits)
	}
	return out
}

func buildVolumeMounts(mounts []spec.VolumeMountSpec) []interface{} {
	var out []interface{}
	for _, vm := range mounts {
		mount := object{"name": vm.Name, "mountPath": vm.MountPath}
		setString(mount, "subPath", vm.SubPath)
		if vm.ReadOnly {
			mount["readOnly"] = true
		}
		out = append(out, mount)
	}
	return out
}

func buildLifecycle(l *spec.LifecycleSpec) object {
	if l == nil {
		return nil
	}
	out := object{}
	setObject(out, "postStart", buildLifecycleHandler(l.PostStart))
	setObject(out, "preStop", buildLifecycleHandler(l.PreStop))
	return out
}

func buildLifecycleHandler(h *spec.LifecycleHandlerSpec) object {
	if h == nil {
		return nil
	}
	if h.Exec != nil {
		if tokens := h.Exec.Command.Tokens(); len(tokens) > 0 {
			exec := object{}
			setStrings(exec, "command", tokens)
			return object{"exec": exec}
		}
	}
	if h.HTTPGet != nil {
		return object{"httpGet": buildHTTPGet(h.HTTPGet)}
	}
	return nil
}

// ParseContainer recovers a container from its manifest form. Unknown keys
// and unknown resource names are ignored.
func ParseContainer(m map[string]interface{}, defaultName string) spec.ContainerSpec {
	c := spec.ContainerSpec{
		Name:            defaultOr(getString(m, "name"), defaultName),
		Image:           getString(m, "image"),
		ImagePullPolicy: getString(m, "imagePullPolicy"),
		Command:         spec.CommandTextFromTokens(getStrings(m, "command")),
		Args:            spec.CommandTextFromTokens(getStrings(m, "args")),
		WorkingDir:      getString(m, "workingDir"),
		Ports:           parsePorts(getObjects(m, "ports")),
		Env:             parseEnv(getObjects(m, "env")),
		Resources:       parseResources(getObject(m, "resources")),
		VolumeMounts:    parseVolumeMounts(getObjects(m, "volumeMounts")),
		Lifecycle:       parseLifecycle(getObject(m, "lifecycle")),
		StartupProbe:    ParseProbe(getObject(m, "startupProbe")),
		LivenessProbe:   ParseProbe(getObject(m, "livenessProbe")),
		ReadinessProbe:  ParseProbe(getObject(m, "readinessProbe")),
	}
	return c
}

func parsePorts(items []object) []spec.PortSpec {
	var out []spec.PortSpec
	for _, item := range items {
		port := spec.PortSpec{
			Name:     getString(item, "name"),
			Protocol: getString(item, "protocol"),
		}
		if n := getInt32(item, "containerPort"); n != nil {
			port.ContainerPort = *n
		}
		out = append(out, port)
	}
	return out
}

func parseEnv(items []object) []spec.EnvVarSpec {
	var out []spec.EnvVarSpec
	for _, item := range items {
		e := spec.EnvVarSpec{Name: getString(item, "name"), Value: getString(item, "value")}
		if from := getObject(item, "valueFrom"); from != nil {
			e.ValueFrom = parseEnvSource(from)
		}
		out = append(out, e)
	}
	return out
}

func parseEnvSource(m object) *spec.EnvVarSourceSpec {
	src := &spec.EnvVarSourceSpec{}
	switch {
	case getObject(m, "configMapKeyRef") != nil:
		ref := getObject(m, "configMapKeyRef")
		src.ConfigMapKeyRef = &spec.KeySelectorSpec{Name: getString(ref, "name"), Key: getString(ref, "key")}
	case getObject(m, "secretKeyRef") != nil:
		ref := getObject(m, "secretKeyRef")
		src.SecretKeyRef = &spec.KeySelectorSpec{Name: getString(ref, "name"), Key: getString(ref, "key")}
	case getObject(m, "fieldRef") != nil:
		src.FieldRef = &spec.FieldSelectorSpec{FieldPath: getString(getObject(m, "fieldRef"), "fieldPath")}
	case getObject(m, "resourceFieldRef") != nil:
		ref := getObject(m, "resourceFieldRef")
		src.ResourceFieldRef = &spec.ResourceFieldSelectorSpec{
			ContainerName: getString(ref, "containerName"),
			Resource:      getString(ref, "resource"),
		}
	default:
		return nil
	}
	return src
}

func parseResources(m object) *spec.ResourcesSpec {
	if m == nil {
		return nil
	}
	r := &spec.ResourcesSpec{}
	if req := getObject(m, "requests"); req != nil {
		r.Requests = &spec.ResourceRequestsSpec{
			CPU:              getString(req, string(corev1.ResourceCPU)),
			Memory:           getString(req, string(corev1.ResourceMemory)),
			EphemeralStorage: getString(req, string(corev1.ResourceEphemeralStorage)),
		}
	}
	if lim := getObject(m, "limits"); lim != nil {
		r.Limits = &spec.ResourceLimitsSpec{
			CPU:              getString(lim, string(corev1.ResourceCPU)),
			Memory:           getString(lim, string(corev1.ResourceMemory)),
			EphemeralStorage: getString(lim, string(corev1.ResourceEphemeralStorage)),
			GPU:              getString(lim, string(resourceGPU)),
		}
	}
	if r.Requests == nil && r.Limits == nil {
		return nil
	}
	return r
}

func parseVolumeMounts(items []object) []spec.VolumeMountSpec {
	var out []spec.VolumeMountSpec
	for _, item := range items {
		vm := spec.VolumeMountSpec{
			Name:      getString(item, "name"),
			MountPath: getString(item, "mountPath"),
			SubPath:   getString(item, "subPath"),
		}
		if ro := getBool(item, "readOnly"); ro != nil {
			vm.ReadOnly = *ro
		}
		out = append(out, vm)
	}
	return out
}

func parseLifecycle(m object) *spec.LifecycleSpec {
	if m == nil {
		return nil
	}
	l := &spec.LifecycleSpec{
		PostStart: parseLifecycleHandler(getObject(m, "postStart")),
		PreStop:   parseLifecycleHandler(getObject(m, "preStop")),
	}
	if l.PostStart == nil && l.PreStop == nil {
		return nil
	}
	return l
}

func parseLifecycleHandler(m object) *spec.LifecycleHandlerSpec {
	if m == nil {
		return nil
	}
	if exec := getObject(m, "exec"); exec != nil {
		return &spec.LifecycleHandlerSpec{Exec: parseExec(exec)}
	}
	if h := parseHTTPGet(getObject(m, "httpGet")); h != nil {
		return &spec.LifecycleHandlerSpec{HTTPGet: h}
	}
	return nil
}
