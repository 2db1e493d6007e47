package workload

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

// buildPodSpec renders the pod spec shared by every kind. A config without
// containers gets one default container.
func (c *Compiler) buildPodSpec(cfg *spec.WorkloadConfig) object {
	out := object{}

	var containers []interface{}
	for i := range cfg.Containers {
		containers = append(containers, BuildContainer(&cfg.Containers[i], c.defaults.ContainerName, c.defaults.ContainerImage))
	}
	if len(containers) == 0 {
		containers = append(containers, BuildContainer(nil, c.defaults.ContainerName, c.defaults.ContainerImage))
	}
	out["containers"] = containers

	var initContainers []interface{}
	for i := range cfg.InitContainers {
		initContainers = append(initContainers, BuildContainer(&cfg.InitContainers[i], c.defaults.InitName, c.defaults.ContainerImage))
	}
	setList(out, "initContainers", initContainers)

	var volumes []interface{}
	for i := range cfg.Volumes {
		volumes = append(volumes, BuildVolume(&cfg.Volumes[i]))
	}
	setList(out, "volumes", volumes)

	setObject(out, "affinity", BuildAffinity(cfg.Scheduling))
	setObject(out, "nodeSelector", stringMap(cfg.NodeSelector))
	setList(out, "tolerations", buildTolerations(cfg.Tolerations))
	setString(out, "dnsPolicy", cfg.DNSPolicy)
	setObject(out, "dnsConfig", buildDNSConfig(cfg.DNSConfig))
	setInt64(out, "terminationGracePeriodSeconds", cfg.TerminationGracePeriodSeconds)
	if cfg.HostNetwork {
		out["hostNetwork"] = true
	}

	var pullSecrets []interface{}
	for _, name := range cfg.ImagePullSecrets {
		if name != "" {
			pullSecrets = append(pullSecrets, object{"name": name})
		}
	}
	setList(out, "imagePullSecrets", pullSecrets)
	return out
}

func buildTolerations(tolerations []spec.TolerationSpec) []interface{} {
	var out []interface{}
	for _, t := range tolerations {
		item, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&corev1.Toleration{
			Key:               t.Key,
			Operator:          corev1.TolerationOperator(t.Operator),
			Value:             t.Value,
			Effect:            corev1.TaintEffect(t.Effect),
			TolerationSeconds: t.TolerationSeconds,
		})
		if err != nil || len(item) == 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func buildDNSConfig(d *spec.DNSConfigSpec) object {
	if d == nil {
		return nil
	}
	cfg := &corev1.PodDNSConfig{Nameservers: d.Nameservers, Searches: d.Searches}
	for _, opt := range d.Options {
		cfg.Options = append(cfg.Options, corev1.PodDNSConfigOption{Name: opt.Name, Value: opt.Value})
	}
	out, err := runtime.DefaultUnstructuredConverter.ToUnstructured(cfg)
	if err != nil {
		return nil
	}
	return out
}

// parsePodSpec fills the pod level fields of cfg from a manifest pod spec.
func (c *Compiler) parsePodSpec(podSpec object, cfg *spec.WorkloadConfig) {
	for _, item := range getObjects(podSpec, "containers") {
		cfg.Containers = append(cfg.Containers, ParseContainer(item, c.defaults.ContainerName))
	}
	for _, item := range getObjects(podSpec, "initContainers") {
		cfg.InitContainers = append(cfg.InitContainers, ParseContainer(item, c.defaults.InitName))
	}
	for _, item := range getObjects(podSpec, "volumes") {
		cfg.Volumes = append(cfg.Volumes, ParseVolume(item))
	}
	for _, item := range getObjects(podSpec, "imagePullSecrets") {
		if name := getString(item, "name"); name != "" {
			cfg.ImagePullSecrets = append(cfg.ImagePullSecrets, name)
		}
	}
	cfg.Scheduling = ParseAffinity(getObject(podSpec, "affinity"))
	cfg.NodeSelector = getStringMap(podSpec, "nodeSelector")
	cfg.Tolerations = parseTolerations(getObjects(podSpec, "tolerations"))
	cfg.DNSPolicy = getString(podSpec, "dnsPolicy")
	cfg.DNSConfig = parseDNSConfig(getObject(podSpec, "dnsConfig"))
	cfg.TerminationGracePeriodSeconds = getInt64(podSpec, "terminationGracePeriodSeconds")
	if hostNetwork := getBool(podSpec, "hostNetwork"); hostNetwork != nil {
		cfg.HostNetwork = *hostNetwork
	}
}

// parseTolerations skips entries that do not decode as a toleration.
func parseTolerations(items []object) []spec.TolerationSpec {
	var out []spec.TolerationSpec
	for _, item := range items {
		var t corev1.Toleration
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(item, &t); err != nil {
			continue
		}
		out = append(out, spec.TolerationSpec{
			Key:               t.Key,
			Operator:          string(t.Operator),
			Value:             t.Value,
			Effect:            string(t.Effect),
			TolerationSeconds: t.TolerationSeconds,
		})
	}
	return out
}

func parseDNSConfig(m object) *spec.DNSConfigSpec {
	if m == nil {
		return nil
	}
	var cfg corev1.PodDNSConfig
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(m, &cfg); err != nil {
		return nil
	}
	out := &spec.DNSConfigSpec{Nameservers: cfg.Nameservers, Searches: cfg.Searches}
	for _, opt := range cfg.Options {
		out.Options = append(out.Options, spec.DNSOptionSpec{Name: opt.Name, Value: opt.Value})
	}
	return out
}
