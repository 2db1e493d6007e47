package spec

// VolumeType discriminates the backing store of a volume.
type VolumeType string

const (
	VolumeEmptyDir              VolumeType = "emptyDir"
	VolumeHostPath              VolumeType = "hostPath"
	VolumeConfigMap             VolumeType = "configMap"
	VolumeSecret                VolumeType = "secret"
	VolumePersistentVolumeClaim VolumeType = "persistentVolumeClaim"
)

// VolumeSpec is one pod volume. Type selects which backing block is used;
// an empty or unknown Type means emptyDir.
type VolumeSpec struct {
	Name string     `json:"name" validate:"required"`
	Type VolumeType `json:"type,omitempty" validate:"omitempty,oneof=emptyDir hostPath configMap secret persistentVolumeClaim"`

	EmptyDir              *EmptyDirSpec        `json:"emptyDir,omitempty"`
	HostPath              *HostPathSpec        `json:"hostPath,omitempty"`
	ConfigMap             *ConfigMapVolumeSpec `json:"configMap,omitempty"`
	Secret                *SecretVolumeSpec    `json:"secret,omitempty"`
	PersistentVolumeClaim *ClaimVolumeSpec     `json:"persistentVolumeClaim,omitempty"`
}

// BackingType returns the effective discriminant.
func (v *VolumeSpec) BackingType() VolumeType {
	switch v.Type {
	case VolumeHostPath, VolumeConfigMap, VolumeSecret, VolumePersistentVolumeClaim:
		return v.Type
	default:
		return VolumeEmptyDir
	}
}

type EmptyDirSpec struct {
	Medium    string `json:"medium,omitempty"`
	SizeLimit string `json:"sizeLimit,omitempty"`
}

type HostPathSpec struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

type KeyToPathSpec struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

type ConfigMapVolumeSpec struct {
	Name        string          `json:"name"`
	Items       []KeyToPathSpec `json:"items,omitempty"`
	DefaultMode *int32          `json:"defaultMode,omitempty"`
}

type SecretVolumeSpec struct {
	SecretName  string          `json:"secretName"`
	Items       []KeyToPathSpec `json:"items,omitempty"`
	DefaultMode *int32          `json:"defaultMode,omitempty"`
}

type ClaimVolumeSpec struct {
	ClaimName string `json:"claimName"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}
