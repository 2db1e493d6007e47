package workload

import (
	"kubemin-workload/pkg/apiserver/domain/spec"
)

// BuildVolume converts a volume into its manifest form. Only the backing
// block named by the volume type is emitted. A tagged volume without its
// backing block falls back to emptyDir, which is always emitted, as an
// empty object when it has no settings.
func BuildVolume(v *spec.VolumeSpec) map[string]interface{} {
	out := object{"name": v.Name}
	switch {
	case v.BackingType() == spec.VolumeHostPath && v.HostPath != nil:
		hp := object{"path": v.HostPath.Path}
		setString(hp, "type", v.HostPath.Type)
		out["hostPath"] = hp
	case v.BackingType() == spec.VolumeConfigMap && v.ConfigMap != nil:
		cm := object{"name": v.ConfigMap.Name}
		setList(cm, "items", buildKeyToPaths(v.ConfigMap.Items))
		setInt32(cm, "defaultMode", v.ConfigMap.DefaultMode)
		out["configMap"] = cm
	case v.BackingType() == spec.VolumeSecret && v.Secret != nil:
		sec := object{"secretName": v.Secret.SecretName}
		setList(sec, "items", buildKeyToPaths(v.Secret.Items))
		setInt32(sec, "defaultMode", v.Secret.DefaultMode)
		out["secret"] = sec
	case v.BackingType() == spec.VolumePersistentVolumeClaim && v.PersistentVolumeClaim != nil:
		pvc := object{"claimName": v.PersistentVolumeClaim.ClaimName}
		if v.PersistentVolumeClaim.ReadOnly {
			pvc["readOnly"] = true
		}
		out["persistentVolumeClaim"] = pvc
	default:
		ed := object{}
		if v.BackingType() == spec.VolumeEmptyDir && v.EmptyDir != nil {
			setString(ed, "medium", v.EmptyDir.Medium)
			setString(ed, "sizeLimit", v.EmptyDir.SizeLimit)
		}
		out["emptyDir"] = ed
	}
	return out
}

func buildKeyToPaths(items []spec.KeyToPathSpec) []interface{} {
	var out []interface{}
	for _, item := range items {
		out = append(out, object{"key": item.Key, "path": item.Path})
	}
	return out
}

// volumeProbeOrder is the order in which backing blocks are looked for when
// a manifest volume is parsed. A volume with none of them is an emptyDir.
var volumeProbeOrder = []spec.VolumeType{
	spec.VolumeHostPath,
	spec.VolumeConfigMap,
	spec.VolumeSecret,
	spec.VolumePersistentVolumeClaim,
}

// InferVolumeType returns the backing type of a manifest volume.
func InferVolumeType(m map[string]interface{}) spec.VolumeType {
	for _, t := range volumeProbeOrder {
		if m[string(t)] != nil {
			return t
		}
	}
	return spec.VolumeEmptyDir
}

// ParseVolume recovers a volume from its manifest form. Only the inferred
// backing block is read.
func ParseVolume(m map[string]interface{}) spec.VolumeSpec {
	v := spec.VolumeSpec{Name: getString(m, "name"), Type: InferVolumeType(m)}
	block := getObject(m, string(v.Type))
	switch v.Type {
	case spec.VolumeHostPath:
		v.HostPath = &spec.HostPathSpec{Path: getString(block, "path"), Type: getString(block, "type")}
	case spec.VolumeConfigMap:
		v.ConfigMap = &spec.ConfigMapVolumeSpec{
			Name:        getString(block, "name"),
			Items:       parseKeyToPaths(getObjects(block, "items")),
			DefaultMode: getInt32(block, "defaultMode"),
		}
	case spec.VolumeSecret:
		v.Secret = &spec.SecretVolumeSpec{
			SecretName:  getString(block, "secretName"),
			Items:       parseKeyToPaths(getObjects(block, "items")),
			DefaultMode: getInt32(block, "defaultMode"),
		}
	case spec.VolumePersistentVolumeClaim:
		v.PersistentVolumeClaim = &spec.ClaimVolumeSpec{ClaimName: getString(block, "claimName")}
		if ro := getBool(block, "readOnly"); ro != nil {
			v.PersistentVolumeClaim.ReadOnly = *ro
		}
	default:
		if medium, size := getString(block, "medium"), getString(block, "sizeLimit"); medium != "" || size != "" {
			v.EmptyDir = &spec.EmptyDirSpec{Medium: medium, SizeLimit: size}
		}
	}
	return v
}

func parseKeyToPaths(items []object) []spec.KeyToPathSpec {
	var out []spec.KeyToPathSpec
	for _, item := range items {
		out = append(out, spec.KeyToPathSpec{Key: getString(item, "key"), Path: getString(item, "path")})
	}
	return out
}
