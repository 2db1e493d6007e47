package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

var defaultCanaryPrimitives = []interface{}{
	weight(20), pause("10m"),
	weight(50), pause("10m"),
	weight(80), pause("10m"),
}

func TestBuildRolloutStrategyDefaultCanary(t *testing.T) {
	cases := map[string]*spec.RolloutStrategySpec{
		"nil strategy":        nil,
		"canary without body": {Type: spec.RolloutCanary},
		"canary without steps": {Type: spec.RolloutCanary, Canary: &spec.CanaryStrategySpec{
			Steps: []spec.CanaryStep{},
		}},
		"steps without primitives": {Canary: &spec.CanaryStrategySpec{
			Steps: []spec.CanaryStep{{}, {Analysis: &spec.RolloutAnalysis{}}},
		}},
	}
	for name, strategy := range cases {
		t.Run(name, func(t *testing.T) {
			got := BuildRolloutStrategy(strategy, "web")
			assert.Equal(t, map[string]interface{}{
				"canary": map[string]interface{}{"steps": defaultCanaryPrimitives},
			}, got)
		})
	}
}

func TestBuildRolloutStrategyDefaultStepsKeepOtherFields(t *testing.T) {
	got := BuildRolloutStrategy(&spec.RolloutStrategySpec{Canary: &spec.CanaryStrategySpec{
		StableService: "web-stable",
		CanaryService: "web-canary",
	}}, "web")
	canary := got["canary"].(map[string]interface{})
	assert.Equal(t, defaultCanaryPrimitives, canary["steps"])
	assert.Equal(t, "web-stable", canary["stableService"])
	assert.Equal(t, "web-canary", canary["canaryService"])
}

func TestNewCompilerKeepsCanaryStepsNonEmpty(t *testing.T) {
	custom := NewDefaults()
	custom.CanarySteps = []spec.CanaryStep{{}}
	got := NewCompiler(custom).BuildRolloutStrategy(&spec.RolloutStrategySpec{Canary: &spec.CanaryStrategySpec{
		Steps: []spec.CanaryStep{{}},
	}}, "web")
	assert.Equal(t, defaultCanaryPrimitives, got["canary"].(map[string]interface{})["steps"])

	custom.CanarySteps = []spec.CanaryStep{{SetWeight: ptr.To[int32](100)}}
	got = NewCompiler(custom).BuildRolloutStrategy(nil, "web")
	assert.Equal(t, []interface{}{weight(100)}, got["canary"].(map[string]interface{})["steps"])
}

func TestBuildRolloutStrategyDefaultBlueGreen(t *testing.T) {
	got := BuildRolloutStrategy(&spec.RolloutStrategySpec{Type: spec.RolloutBlueGreen}, "shop")
	assert.Equal(t, map[string]interface{}{
		"blueGreen": map[string]interface{}{
			"activeService":        "shop-active",
			"previewService":       "shop-preview",
			"autoPromotionEnabled": false,
		},
	}, got)

	custom := NewDefaults()
	custom.ActiveServiceSuffix = "-live"
	custom.PreviewServiceSuffix = "-next"
	got = NewCompiler(custom).BuildRolloutStrategy(&spec.RolloutStrategySpec{Type: spec.RolloutBlueGreen}, "shop")
	assert.Equal(t, "shop-live", got["blueGreen"].(map[string]interface{})["activeService"])
	assert.Equal(t, "shop-next", got["blueGreen"].(map[string]interface{})["previewService"])
}

func TestRolloutStrategyRoundTrip(t *testing.T) {
	maxSurge := intstr.FromString("25%")
	maxUnavailable := intstr.FromInt32(0)
	cases := map[string]*spec.RolloutStrategySpec{
		"canary": {
			Type: spec.RolloutCanary,
			Canary: &spec.CanaryStrategySpec{
				Steps: []spec.CanaryStep{
					{SetWeight: ptr.To[int32](10), Pause: &spec.PauseSpec{Duration: "1m"}},
					{Pause: &spec.PauseSpec{}},
				},
				MaxSurge:       &maxSurge,
				MaxUnavailable: &maxUnavailable,
				StableService:  "web-stable",
				CanaryService:  "web-canary",
				TrafficRouting: &spec.TrafficRouting{
					Nginx: &spec.NginxTrafficRouting{StableIngress: "web", AnnotationPrefix: "nginx.ingress.kubernetes.io",
						AdditionalIngressAnnotations: map[string]string{"canary-by-header": "X-Canary"}},
					Istio: &spec.IstioTrafficRouting{
						VirtualService:  &spec.IstioVirtualService{Name: "web-vs", Routes: []string{"primary"}},
						DestinationRule: &spec.IstioDestinationRule{Name: "web-dr", CanarySubsetName: "canary", StableSubsetName: "stable"},
					},
					ALB: &spec.ALBTrafficRouting{Ingress: "web-alb", ServicePort: 443},
				},
				Analysis: &spec.RolloutAnalysis{
					Templates:    []spec.AnalysisTemplateRef{{TemplateName: "success-rate"}},
					StartingStep: ptr.To[int32](2),
					Args: []spec.AnalysisArg{{Name: "hash", ValueFrom: &spec.AnalysisArgSource{
						PodTemplateHashValue: "Latest",
					}}},
				},
				AntiAffinity:   &spec.AntiAffinitySpec{PreferredWeight: ptr.To[int32](50)},
				CanaryMetadata: &spec.PodMetadataSpec{Labels: map[string]string{"role": "canary"}},
				StableMetadata: &spec.PodMetadataSpec{Annotations: map[string]string{"role": "stable"}},
			},
		},
		"blueGreen": {
			Type: spec.RolloutBlueGreen,
			BlueGreen: &spec.BlueGreenStrategySpec{
				ActiveService:               "shop",
				PreviewService:              "shop-preview",
				AutoPromotionEnabled:        ptr.To(true),
				AutoPromotionSeconds:        ptr.To[int32](60),
				ScaleDownDelaySeconds:       ptr.To[int32](30),
				ScaleDownDelayRevisionLimit: ptr.To[int32](2),
				PreviewReplicaCount:         ptr.To[int32](1),
				PreviewMetadata:             &spec.PodMetadataSpec{Labels: map[string]string{"role": "preview"}},
				ActiveMetadata:              &spec.PodMetadataSpec{Labels: map[string]string{"role": "active"}},
				AntiAffinity:                &spec.AntiAffinitySpec{Required: true},
				PrePromotionAnalysis: &spec.RolloutAnalysis{
					Templates: []spec.AnalysisTemplateRef{{TemplateName: "smoke"}},
					Args: []spec.AnalysisArg{{Name: "svc", ValueFrom: &spec.AnalysisArgSource{
						FieldRef: &spec.FieldSelectorSpec{FieldPath: "metadata.name"},
					}}},
				},
				PostPromotionAnalysis: &spec.RolloutAnalysis{Templates: []spec.AnalysisTemplateRef{{TemplateName: "load"}}},
			},
		},
	}
	for name, strategy := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, strategy, ParseRolloutStrategy(BuildRolloutStrategy(strategy, "unused")))
		})
	}
}

func TestBuildRolloutAntiAffinity(t *testing.T) {
	assert.Equal(t, map[string]interface{}{
		"requiredDuringSchedulingIgnoredDuringExecution": map[string]interface{}{},
	}, buildRolloutAntiAffinity(&spec.AntiAffinitySpec{Required: true, PreferredWeight: ptr.To[int32](1)}))
	assert.Nil(t, buildRolloutAntiAffinity(&spec.AntiAffinitySpec{}))
}

func TestParseRolloutStrategyUnknown(t *testing.T) {
	assert.Nil(t, ParseRolloutStrategy(nil))
	assert.Nil(t, ParseRolloutStrategy(map[string]interface{}{"type": "RollingUpdate"}))

	got := ParseRolloutStrategy(map[string]interface{}{"blueGreen": map[string]interface{}{"activeService": "a"}})
	require.NotNil(t, got)
	assert.Equal(t, spec.RolloutBlueGreen, got.StrategyType())
}
