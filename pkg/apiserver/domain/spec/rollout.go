package spec

import "k8s.io/apimachinery/pkg/util/intstr"

// RolloutStrategyType discriminates the Argo Rollouts strategy.
type RolloutStrategyType string

const (
	RolloutCanary    RolloutStrategyType = "Canary"
	RolloutBlueGreen RolloutStrategyType = "BlueGreen"
)

// RolloutStrategySpec selects Canary or BlueGreen by Type; an empty Type
// means Canary.
type RolloutStrategySpec struct {
	Type      RolloutStrategyType    `json:"type,omitempty" validate:"omitempty,oneof=Canary BlueGreen"`
	Canary    *CanaryStrategySpec    `json:"canary,omitempty"`
	BlueGreen *BlueGreenStrategySpec `json:"blueGreen,omitempty"`
}

// StrategyType returns the effective discriminant.
func (r *RolloutStrategySpec) StrategyType() RolloutStrategyType {
	if r != nil && r.Type == RolloutBlueGreen {
		return RolloutBlueGreen
	}
	return RolloutCanary
}

// CanaryStep is one compound step card. A SetWeight may be followed by a
// timed Pause in the same card; every populated field becomes its own
// primitive step in the manifest.
type CanaryStep struct {
	SetWeight      *int32              `json:"setWeight,omitempty" validate:"omitempty,min=0,max=100"`
	Pause          *PauseSpec          `json:"pause,omitempty"`
	SetCanaryScale *SetCanaryScaleSpec `json:"setCanaryScale,omitempty"`
	Analysis       *RolloutAnalysis    `json:"analysis,omitempty"`
}

// PauseSpec with an empty Duration pauses until manually promoted.
type PauseSpec struct {
	Duration string `json:"duration,omitempty"`
}

// Indefinite reports whether the pause waits for manual promotion.
func (p *PauseSpec) Indefinite() bool {
	return p.Duration == ""
}

type SetCanaryScaleSpec struct {
	Replicas           *int32 `json:"replicas,omitempty"`
	Weight             *int32 `json:"weight,omitempty"`
	MatchTrafficWeight bool   `json:"matchTrafficWeight,omitempty"`
}

type RolloutAnalysis struct {
	Templates    []AnalysisTemplateRef `json:"templates,omitempty"`
	Args         []AnalysisArg         `json:"args,omitempty"`
	StartingStep *int32                `json:"startingStep,omitempty"`
}

type AnalysisTemplateRef struct {
	TemplateName string `json:"templateName"`
}

type AnalysisArg struct {
	Name      string            `json:"name"`
	Value     string            `json:"value,omitempty"`
	ValueFrom *AnalysisArgSource `json:"valueFrom,omitempty"`
}

type AnalysisArgSource struct {
	PodTemplateHashValue string             `json:"podTemplateHashValue,omitempty"`
	FieldRef             *FieldSelectorSpec `json:"fieldRef,omitempty"`
}

type CanaryStrategySpec struct {
	Steps          []CanaryStep        `json:"steps,omitempty" validate:"dive"`
	MaxSurge       *intstr.IntOrString `json:"maxSurge,omitempty"`
	MaxUnavailable *intstr.IntOrString `json:"maxUnavailable,omitempty"`
	CanaryService  string              `json:"canaryService,omitempty"`
	StableService  string              `json:"stableService,omitempty"`
	TrafficRouting *TrafficRouting     `json:"trafficRouting,omitempty"`
	Analysis       *RolloutAnalysis    `json:"analysis,omitempty"`
	AntiAffinity   *AntiAffinitySpec   `json:"antiAffinity,omitempty"`
	CanaryMetadata *PodMetadataSpec    `json:"canaryMetadata,omitempty"`
	StableMetadata *PodMetadataSpec    `json:"stableMetadata,omitempty"`
}

type TrafficRouting struct {
	Nginx *NginxTrafficRouting `json:"nginx,omitempty"`
	Istio *IstioTrafficRouting `json:"istio,omitempty"`
	ALB   *ALBTrafficRouting   `json:"alb,omitempty"`
}

type NginxTrafficRouting struct {
	StableIngress                string            `json:"stableIngress"`
	AnnotationPrefix             string            `json:"annotationPrefix,omitempty"`
	AdditionalIngressAnnotations map[string]string `json:"additionalIngressAnnotations,omitempty"`
}

type IstioTrafficRouting struct {
	VirtualService  *IstioVirtualService  `json:"virtualService,omitempty"`
	DestinationRule *IstioDestinationRule `json:"destinationRule,omitempty"`
}

type IstioVirtualService struct {
	Name   string   `json:"name"`
	Routes []string `json:"routes,omitempty"`
}

type IstioDestinationRule struct {
	Name             string `json:"name"`
	CanarySubsetName string `json:"canarySubsetName,omitempty"`
	StableSubsetName string `json:"stableSubsetName,omitempty"`
}

type ALBTrafficRouting struct {
	Ingress          string `json:"ingress"`
	ServicePort      int32  `json:"servicePort"`
	AnnotationPrefix string `json:"annotationPrefix,omitempty"`
}

// AntiAffinitySpec spreads canary and stable pods apart. Required takes
// precedence over PreferredWeight.
type AntiAffinitySpec struct {
	Required        bool   `json:"required,omitempty"`
	PreferredWeight *int32 `json:"preferredWeight,omitempty" validate:"omitempty,min=1,max=100"`
}

type BlueGreenStrategySpec struct {
	ActiveService               string            `json:"activeService"`
	PreviewService              string            `json:"previewService,omitempty"`
	AutoPromotionEnabled        *bool             `json:"autoPromotionEnabled,omitempty"`
	AutoPromotionSeconds        *int32            `json:"autoPromotionSeconds,omitempty"`
	ScaleDownDelaySeconds       *int32            `json:"scaleDownDelaySeconds,omitempty"`
	ScaleDownDelayRevisionLimit *int32            `json:"scaleDownDelayRevisionLimit,omitempty"`
	PreviewReplicaCount         *int32            `json:"previewReplicaCount,omitempty"`
	PreviewMetadata             *PodMetadataSpec  `json:"previewMetadata,omitempty"`
	ActiveMetadata              *PodMetadataSpec  `json:"activeMetadata,omitempty"`
	AntiAffinity                *AntiAffinitySpec `json:"antiAffinity,omitempty"`
	PrePromotionAnalysis        *RolloutAnalysis  `json:"prePromotionAnalysis,omitempty"`
	PostPromotionAnalysis       *RolloutAnalysis  `json:"postPromotionAnalysis,omitempty"`
}
