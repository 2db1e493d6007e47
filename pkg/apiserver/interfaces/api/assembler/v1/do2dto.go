package v1

import (
	"kubemin-workload/pkg/apiserver/domain/spec"
	apisv1 "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
)

// ConvertKindToBase assemble a workload kind to DTO
func ConvertKindToBase(kind spec.Kind) apisv1.KindBase {
	return apisv1.KindBase{
		Kind:        string(kind),
		APIVersion:  kind.GroupVersionKind().GroupVersion().String(),
		HasReplicas: kind.HasReplicas(),
		Batch:       kind.IsBatch(),
	}
}

// ConvertKindsToList assemble every supported kind, in enumeration order.
func ConvertKindsToList(kinds []spec.Kind) *apisv1.ListKindsResponse {
	resp := &apisv1.ListKindsResponse{Kinds: make([]apisv1.KindBase, 0, len(kinds))}
	for _, kind := range kinds {
		resp.Kinds = append(resp.Kinds, ConvertKindToBase(kind))
	}
	return resp
}
