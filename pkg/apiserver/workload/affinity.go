package workload

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

const defaultPreferredWeight int32 = 1

// BuildAffinity turns scheduling rows into a pod affinity block. All
// required node rows are ANDed inside one node selector term. Every other
// row becomes its own term: a weighted entry for preferred rows, a
// topology-scoped term for required pod rows. It returns nil when there
// are no rows.
func BuildAffinity(s *spec.SchedulingSpec) map[string]interface{} {
	if s.IsEmpty() {
		return nil
	}
	affinity := &corev1.Affinity{NodeAffinity: buildNodeAffinity(s)}

	required, preferred := buildPodAffinityTerms(s.PodAffinityRequired, s.PodAffinityPreferred)
	if len(required) > 0 || len(preferred) > 0 {
		affinity.PodAffinity = &corev1.PodAffinity{
			RequiredDuringSchedulingIgnoredDuringExecution:  required,
			PreferredDuringSchedulingIgnoredDuringExecution: preferred,
		}
	}
	required, preferred = buildPodAffinityTerms(s.PodAntiAffinityRequired, s.PodAntiAffinityPreferred)
	if len(required) > 0 || len(preferred) > 0 {
		affinity.PodAntiAffinity = &corev1.PodAntiAffinity{
			RequiredDuringSchedulingIgnoredDuringExecution:  required,
			PreferredDuringSchedulingIgnoredDuringExecution: preferred,
		}
	}

	out, err := runtime.DefaultUnstructuredConverter.ToUnstructured(affinity)
	if err != nil || len(out) == 0 {
		return nil
	}
	return out
}

func buildNodeAffinity(s *spec.SchedulingSpec) *corev1.NodeAffinity {
	if len(s.NodeAffinityRequired) == 0 && len(s.NodeAffinityPreferred) == 0 {
		return nil
	}
	na := &corev1.NodeAffinity{}
	if len(s.NodeAffinityRequired) > 0 {
		term := corev1.NodeSelectorTerm{}
		for _, row := range s.NodeAffinityRequired {
			term.MatchExpressions = append(term.MatchExpressions, nodeRequirement(row))
		}
		na.RequiredDuringSchedulingIgnoredDuringExecution = &corev1.NodeSelector{
			NodeSelectorTerms: []corev1.NodeSelectorTerm{term},
		}
	}
	for _, row := range s.NodeAffinityPreferred {
		na.PreferredDuringSchedulingIgnoredDuringExecution = append(na.PreferredDuringSchedulingIgnoredDuringExecution,
			corev1.PreferredSchedulingTerm{
				Weight:     weightOrDefault(row.Weight),
				Preference: corev1.NodeSelectorTerm{MatchExpressions: []corev1.NodeSelectorRequirement{nodeRequirement(row)}},
			})
	}
	return na
}

func nodeRequirement(row spec.NodeAffinityRow) corev1.NodeSelectorRequirement {
	return corev1.NodeSelectorRequirement{
		Key:      row.Key,
		Operator: corev1.NodeSelectorOperator(row.Operator),
		Values:   row.Values,
	}
}

func buildPodAffinityTerms(requiredRows, preferredRows []spec.PodAffinityRow) ([]corev1.PodAffinityTerm, []corev1.WeightedPodAffinityTerm) {
	var required []corev1.PodAffinityTerm
	for _, row := range requiredRows {
		required = append(required, podAffinityTerm(row))
	}
	var preferred []corev1.WeightedPodAffinityTerm
	for _, row := range preferredRows {
		preferred = append(preferred, corev1.WeightedPodAffinityTerm{
			Weight:          weightOrDefault(row.Weight),
			PodAffinityTerm: podAffinityTerm(row),
		})
	}
	return required, preferred
}

func podAffinityTerm(row spec.PodAffinityRow) corev1.PodAffinityTerm {
	return corev1.PodAffinityTerm{
		TopologyKey: row.TopologyKey,
		LabelSelector: &metav1.LabelSelector{
			MatchExpressions: []metav1.LabelSelectorRequirement{{
				Key:      row.LabelKey,
				Operator: metav1.LabelSelectorOperator(row.Operator),
				Values:   row.LabelValues,
			}},
		},
	}
}

func weightOrDefault(w int32) int32 {
	if w <= 0 {
		return defaultPreferredWeight
	}
	return w
}

// ParseAffinity flattens a pod affinity block into scheduling rows, one row
// per match expression. matchLabels entries become In rows with a single
// value, so they come back from BuildAffinity as match expressions. Each
// term is decoded on its own and a term that cannot be decoded is skipped.
func ParseAffinity(m map[string]interface{}) *spec.SchedulingSpec {
	if len(m) == 0 {
		return nil
	}
	s := &spec.SchedulingSpec{}
	if na := getObject(m, "nodeAffinity"); na != nil {
		required := getObject(na, "requiredDuringSchedulingIgnoredDuringExecution")
		for _, raw := range getObjects(required, "nodeSelectorTerms") {
			term := corev1.NodeSelectorTerm{}
			if !decodeTerm(raw, &term) {
				continue
			}
			for _, expr := range term.MatchExpressions {
				s.NodeAffinityRequired = append(s.NodeAffinityRequired, nodeRow(0, expr))
			}
		}
		for _, raw := range getObjects(na, "preferredDuringSchedulingIgnoredDuringExecution") {
			pref := corev1.PreferredSchedulingTerm{}
			if !decodeTerm(raw, &pref) {
				continue
			}
			for _, expr := range pref.Preference.MatchExpressions {
				s.NodeAffinityPreferred = append(s.NodeAffinityPreferred, nodeRow(pref.Weight, expr))
			}
		}
	}
	if pa := getObject(m, "podAffinity"); pa != nil {
		s.PodAffinityRequired = flattenPodTerms(getObjects(pa, "requiredDuringSchedulingIgnoredDuringExecution"))
		s.PodAffinityPreferred = flattenWeightedPodTerms(getObjects(pa, "preferredDuringSchedulingIgnoredDuringExecution"))
	}
	if paa := getObject(m, "podAntiAffinity"); paa != nil {
		s.PodAntiAffinityRequired = flattenPodTerms(getObjects(paa, "requiredDuringSchedulingIgnoredDuringExecution"))
		s.PodAntiAffinityPreferred = flattenWeightedPodTerms(getObjects(paa, "preferredDuringSchedulingIgnoredDuringExecution"))
	}
	if s.IsEmpty() {
		return nil
	}
	return s
}

func decodeTerm(raw object, into interface{}) bool {
	return runtime.DefaultUnstructuredConverter.FromUnstructured(raw, into) == nil
}

func nodeRow(weight int32, expr corev1.NodeSelectorRequirement) spec.NodeAffinityRow {
	return spec.NodeAffinityRow{
		Weight:   weight,
		Key:      expr.Key,
		Operator: string(expr.Operator),
		Values:   spec.ValueList(expr.Values),
	}
}

func flattenPodTerms(terms []object) []spec.PodAffinityRow {
	var rows []spec.PodAffinityRow
	for _, raw := range terms {
		term := corev1.PodAffinityTerm{}
		if decodeTerm(raw, &term) {
			rows = append(rows, podRows(0, term)...)
		}
	}
	return rows
}

func flattenWeightedPodTerms(terms []object) []spec.PodAffinityRow {
	var rows []spec.PodAffinityRow
	for _, raw := range terms {
		term := corev1.WeightedPodAffinityTerm{}
		if decodeTerm(raw, &term) {
			rows = append(rows, podRows(term.Weight, term.PodAffinityTerm)...)
		}
	}
	return rows
}

func podRows(weight int32, term corev1.PodAffinityTerm) []spec.PodAffinityRow {
	if term.LabelSelector == nil {
		return nil
	}
	var rows []spec.PodAffinityRow
	for _, expr := range term.LabelSelector.MatchExpressions {
		rows = append(rows, spec.PodAffinityRow{
			Weight:      weight,
			TopologyKey: term.TopologyKey,
			LabelKey:    expr.Key,
			Operator:    string(expr.Operator),
			LabelValues: spec.ValueList(expr.Values),
		})
	}
	labels := make(object, len(term.LabelSelector.MatchLabels))
	for k, v := range term.LabelSelector.MatchLabels {
		labels[k] = v
	}
	for _, k := range sortedKeys(labels) {
		rows = append(rows, spec.PodAffinityRow{
			Weight:      weight,
			TopologyKey: term.TopologyKey,
			LabelKey:    k,
			Operator:    string(metav1.LabelSelectorOpIn),
			LabelValues: spec.ValueList{term.LabelSelector.MatchLabels[k]},
		})
	}
	return rows
}
