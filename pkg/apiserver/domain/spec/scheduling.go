package spec

// SchedulingSpec is the row form of pod affinity. Every row carries exactly
// one match expression. All required node rows are ANDed into a single node
// selector term; multiple OR'd node term groups cannot be expressed here.
type SchedulingSpec struct {
	NodeAffinityRequired     []NodeAffinityRow `json:"nodeAffinityRequired,omitempty" validate:"dive"`
	NodeAffinityPreferred    []NodeAffinityRow `json:"nodeAffinityPreferred,omitempty" validate:"dive"`
	PodAffinityRequired      []PodAffinityRow  `json:"podAffinityRequired,omitempty" validate:"dive"`
	PodAffinityPreferred     []PodAffinityRow  `json:"podAffinityPreferred,omitempty" validate:"dive"`
	PodAntiAffinityRequired  []PodAffinityRow  `json:"podAntiAffinityRequired,omitempty" validate:"dive"`
	PodAntiAffinityPreferred []PodAffinityRow  `json:"podAntiAffinityPreferred,omitempty" validate:"dive"`
}

// IsEmpty reports whether no row is present.
func (s *SchedulingSpec) IsEmpty() bool {
	return s == nil || len(s.NodeAffinityRequired)+len(s.NodeAffinityPreferred)+
		len(s.PodAffinityRequired)+len(s.PodAffinityPreferred)+
		len(s.PodAntiAffinityRequired)+len(s.PodAntiAffinityPreferred) == 0
}

// NodeAffinityRow is one node match expression. Weight is used by preferred rows.
type NodeAffinityRow struct {
	Weight   int32     `json:"weight,omitempty" validate:"omitempty,min=1,max=100"`
	Key      string    `json:"key" validate:"required"`
	Operator string    `json:"operator" validate:"oneof=In NotIn Exists DoesNotExist Gt Lt"`
	Values   ValueList `json:"values,omitempty"`
}

// PodAffinityRow is one topology-scoped label match expression.
type PodAffinityRow struct {
	Weight      int32     `json:"weight,omitempty" validate:"omitempty,min=1,max=100"`
	TopologyKey string    `json:"topologyKey" validate:"required"`
	LabelKey    string    `json:"labelKey" validate:"required"`
	Operator    string    `json:"operator" validate:"oneof=In NotIn Exists DoesNotExist"`
	LabelValues ValueList `json:"labelValues,omitempty"`
}
