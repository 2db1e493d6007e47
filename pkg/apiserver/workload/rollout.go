package workload

import (
	"kubemin-workload/pkg/apiserver/domain/spec"
)

// BuildRolloutStrategy renders a Rollout strategy. A nil strategy is the
// default canary; a blue-green strategy without an active service is the
// default blue-green for workloadName.
func (c *Compiler) BuildRolloutStrategy(r *spec.RolloutStrategySpec, workloadName string) map[string]interface{} {
	if r.StrategyType() == spec.RolloutBlueGreen {
		return object{"blueGreen": c.buildBlueGreen(r.BlueGreen, workloadName)}
	}
	var canary *spec.CanaryStrategySpec
	if r != nil {
		canary = r.Canary
	}
	return object{"canary": c.buildCanary(canary)}
}

// BuildRolloutStrategy renders r with DefaultCompiler.
func BuildRolloutStrategy(r *spec.RolloutStrategySpec, workloadName string) map[string]interface{} {
	return DefaultCompiler.BuildRolloutStrategy(r, workloadName)
}

func (c *Compiler) buildCanary(cs *spec.CanaryStrategySpec) object {
	if cs == nil {
		cs = &spec.CanaryStrategySpec{}
	}
	steps := BuildCanarySteps(cs.Steps)
	if len(steps) == 0 {
		steps = BuildCanarySteps(c.defaults.CanarySteps)
	}
	out := object{}
	setList(out, "steps", steps)
	setIntOrString(out, "maxSurge", cs.MaxSurge)
	setIntOrString(out, "maxUnavailable", cs.MaxUnavailable)
	setString(out, "stableService", cs.StableService)
	setString(out, "canaryService", cs.CanaryService)
	setObject(out, "trafficRouting", buildTrafficRouting(cs.TrafficRouting))
	setObject(out, "analysis", buildAnalysis(cs.Analysis))
	setObject(out, "canaryMetadata", buildPodMetadata(cs.CanaryMetadata))
	setObject(out, "stableMetadata", buildPodMetadata(cs.StableMetadata))
	setObject(out, "antiAffinity", buildRolloutAntiAffinity(cs.AntiAffinity))
	return out
}

func (c *Compiler) buildBlueGreen(bg *spec.BlueGreenStrategySpec, workloadName string) object {
	if bg == nil || bg.ActiveService == "" {
		return object{
			"activeService":        workloadName + c.defaults.ActiveServiceSuffix,
			"previewService":       workloadName + c.defaults.PreviewServiceSuffix,
			"autoPromotionEnabled": false,
		}
	}
	out := object{"activeService": bg.ActiveService}
	setString(out, "previewService", bg.PreviewService)
	setBool(out, "autoPromotionEnabled", bg.AutoPromotionEnabled)
	setInt32(out, "autoPromotionSeconds", bg.AutoPromotionSeconds)
	setInt32(out, "scaleDownDelaySeconds", bg.ScaleDownDelaySeconds)
	setInt32(out, "scaleDownDelayRevisionLimit", bg.ScaleDownDelayRevisionLimit)
	setInt32(out, "previewReplicaCount", bg.PreviewReplicaCount)
	setObject(out, "previewMetadata", buildPodMetadata(bg.PreviewMetadata))
	setObject(out, "activeMetadata", buildPodMetadata(bg.ActiveMetadata))
	setObject(out, "antiAffinity", buildRolloutAntiAffinity(bg.AntiAffinity))
	setObject(out, "prePromotionAnalysis", buildAnalysis(bg.PrePromotionAnalysis))
	setObject(out, "postPromotionAnalysis", buildAnalysis(bg.PostPromotionAnalysis))
	return out
}

func buildTrafficRouting(tr *spec.TrafficRouting) object {
	if tr == nil {
		return nil
	}
	out := object{}
	if tr.Nginx != nil && tr.Nginx.StableIngress != "" {
		nginx := object{"stableIngress": tr.Nginx.StableIngress}
		setString(nginx, "annotationPrefix", tr.Nginx.AnnotationPrefix)
		setObject(nginx, "additionalIngressAnnotations", stringMap(tr.Nginx.AdditionalIngressAnnotations))
		out["nginx"] = nginx
	}
	if tr.Istio != nil {
		istio := object{}
		if vs := tr.Istio.VirtualService; vs != nil {
			svc := object{"name": vs.Name}
			setStrings(svc, "routes", vs.Routes)
			istio["virtualService"] = svc
		}
		if dr := tr.Istio.DestinationRule; dr != nil {
			rule := object{"name": dr.Name}
			setString(rule, "canarySubsetName", dr.CanarySubsetName)
			setString(rule, "stableSubsetName", dr.StableSubsetName)
			istio["destinationRule"] = rule
		}
		setObject(out, "istio", istio)
	}
	if tr.ALB != nil && tr.ALB.Ingress != "" {
		alb := object{"ingress": tr.ALB.Ingress, "servicePort": int64(tr.ALB.ServicePort)}
		setString(alb, "annotationPrefix", tr.ALB.AnnotationPrefix)
		out["alb"] = alb
	}
	return out
}

func buildPodMetadata(pm *spec.PodMetadataSpec) object {
	if pm == nil {
		return nil
	}
	out := object{}
	setObject(out, "labels", stringMap(pm.Labels))
	setObject(out, "annotations", stringMap(pm.Annotations))
	return out
}

// buildRolloutAntiAffinity emits an empty required block when Required is
// set; its presence is the whole setting.
func buildRolloutAntiAffinity(a *spec.AntiAffinitySpec) object {
	switch {
	case a == nil:
		return nil
	case a.Required:
		return object{"requiredDuringSchedulingIgnoredDuringExecution": object{}}
	case a.PreferredWeight != nil:
		return object{"preferredDuringSchedulingIgnoredDuringExecution": object{"weight": int64(*a.PreferredWeight)}}
	}
	return nil
}

// ParseRolloutStrategy recovers a Rollout strategy. It returns nil when the
// strategy has neither a canary nor a blueGreen block.
func ParseRolloutStrategy(m map[string]interface{}) *spec.RolloutStrategySpec {
	if canary := getObject(m, "canary"); canary != nil {
		return &spec.RolloutStrategySpec{Type: spec.RolloutCanary, Canary: parseCanary(canary)}
	}
	if bg := getObject(m, "blueGreen"); bg != nil {
		return &spec.RolloutStrategySpec{Type: spec.RolloutBlueGreen, BlueGreen: parseBlueGreen(bg)}
	}
	return nil
}

func parseCanary(m object) *spec.CanaryStrategySpec {
	steps, _ := m["steps"].([]interface{})
	return &spec.CanaryStrategySpec{
		Steps:          ParseCanarySteps(steps),
		MaxSurge:       getIntOrString(m, "maxSurge"),
		MaxUnavailable: getIntOrString(m, "maxUnavailable"),
		StableService:  getString(m, "stableService"),
		CanaryService:  getString(m, "canaryService"),
		TrafficRouting: parseTrafficRouting(getObject(m, "trafficRouting")),
		Analysis:       parseAnalysis(getObject(m, "analysis")),
		CanaryMetadata: parsePodMetadata(getObject(m, "canaryMetadata")),
		StableMetadata: parsePodMetadata(getObject(m, "stableMetadata")),
		AntiAffinity:   parseRolloutAntiAffinity(getObject(m, "antiAffinity")),
	}
}

func parseBlueGreen(m object) *spec.BlueGreenStrategySpec {
	return &spec.BlueGreenStrategySpec{
		ActiveService:               getString(m, "activeService"),
		PreviewService:              getString(m, "previewService"),
		AutoPromotionEnabled:        getBool(m, "autoPromotionEnabled"),
		AutoPromotionSeconds:        getInt32(m, "autoPromotionSeconds"),
		ScaleDownDelaySeconds:       getInt32(m, "scaleDownDelaySeconds"),
		ScaleDownDelayRevisionLimit: getInt32(m, "scaleDownDelayRevisionLimit"),
		PreviewReplicaCount:         getInt32(m, "previewReplicaCount"),
		PreviewMetadata:             parsePodMetadata(getObject(m, "previewMetadata")),
		ActiveMetadata:              parsePodMetadata(getObject(m, "activeMetadata")),
		AntiAffinity:                parseRolloutAntiAffinity(getObject(m, "antiAffinity")),
		PrePromotionAnalysis:        parseAnalysis(getObject(m, "prePromotionAnalysis")),
		PostPromotionAnalysis:       parseAnalysis(getObject(m, "postPromotionAnalysis")),
	}
}

func parseTrafficRouting(m object) *spec.TrafficRouting {
	if m == nil {
		return nil
	}
	tr := &spec.TrafficRouting{}
	if nginx := getObject(m, "nginx"); nginx != nil {
		tr.Nginx = &spec.NginxTrafficRouting{
			StableIngress:                getString(nginx, "stableIngress"),
			AnnotationPrefix:             getString(nginx, "annotationPrefix"),
			AdditionalIngressAnnotations: getStringMap(nginx, "additionalIngressAnnotations"),
		}
	}
	if istio := getObject(m, "istio"); istio != nil {
		tr.Istio = &spec.IstioTrafficRouting{}
		if vs := getObject(istio, "virtualService"); vs != nil {
			tr.Istio.VirtualService = &spec.IstioVirtualService{Name: getString(vs, "name"), Routes: getStrings(vs, "routes")}
		}
		if dr := getObject(istio, "destinationRule"); dr != nil {
			tr.Istio.DestinationRule = &spec.IstioDestinationRule{
				Name:             getString(dr, "name"),
				CanarySubsetName: getString(dr, "canarySubsetName"),
				StableSubsetName: getString(dr, "stableSubsetName"),
			}
		}
	}
	if alb := getObject(m, "alb"); alb != nil {
		tr.ALB = &spec.ALBTrafficRouting{
			Ingress:          getString(alb, "ingress"),
			AnnotationPrefix: getString(alb, "annotationPrefix"),
		}
		if port := getInt32(alb, "servicePort"); port != nil {
			tr.ALB.ServicePort = *port
		}
	}
	return tr
}

func parsePodMetadata(m object) *spec.PodMetadataSpec {
	if m == nil {
		return nil
	}
	return &spec.PodMetadataSpec{
		Labels:      getStringMap(m, "labels"),
		Annotations: getStringMap(m, "annotations"),
	}
}

func parseRolloutAntiAffinity(m object) *spec.AntiAffinitySpec {
	if m == nil {
		return nil
	}
	if _, ok := m["requiredDuringSchedulingIgnoredDuringExecution"]; ok {
		return &spec.AntiAffinitySpec{Required: true}
	}
	if pref := getObject(m, "preferredDuringSchedulingIgnoredDuringExecution"); pref != nil {
		return &spec.AntiAffinitySpec{PreferredWeight: getInt32(pref, "weight")}
	}
	return nil
}
