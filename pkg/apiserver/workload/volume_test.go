package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

func TestBuildVolume(t *testing.T) {
	cases := map[string]struct {
		in   spec.VolumeSpec
		want map[string]interface{}
	}{
		"emptyDir without settings": {
			in:   spec.VolumeSpec{Name: "tmp"},
			want: map[string]interface{}{"name": "tmp", "emptyDir": map[string]interface{}{}},
		},
		"emptyDir in memory": {
			in: spec.VolumeSpec{Name: "shm", Type: spec.VolumeEmptyDir,
				EmptyDir: &spec.EmptyDirSpec{Medium: "Memory", SizeLimit: "64Mi"}},
			want: map[string]interface{}{"name": "shm",
				"emptyDir": map[string]interface{}{"medium": "Memory", "sizeLimit": "64Mi"}},
		},
		"hostPath": {
			in: spec.VolumeSpec{Name: "logs", Type: spec.VolumeHostPath,
				HostPath: &spec.HostPathSpec{Path: "/var/log", Type: "Directory"}},
			want: map[string]interface{}{"name": "logs",
				"hostPath": map[string]interface{}{"path": "/var/log", "type": "Directory"}},
		},
		"configMap with items": {
			in: spec.VolumeSpec{Name: "conf", Type: spec.VolumeConfigMap,
				ConfigMap: &spec.ConfigMapVolumeSpec{Name: "app-conf", DefaultMode: ptr.To[int32](420),
					Items: []spec.KeyToPathSpec{{Key: "app.yaml", Path: "app.yaml"}}}},
			want: map[string]interface{}{"name": "conf", "configMap": map[string]interface{}{
				"name":        "app-conf",
				"defaultMode": int64(420),
				"items":       []interface{}{map[string]interface{}{"key": "app.yaml", "path": "app.yaml"}},
			}},
		},
		"secret": {
			in: spec.VolumeSpec{Name: "tls", Type: spec.VolumeSecret,
				Secret: &spec.SecretVolumeSpec{SecretName: "web-tls"}},
			want: map[string]interface{}{"name": "tls",
				"secret": map[string]interface{}{"secretName": "web-tls"}},
		},
		"persistentVolumeClaim": {
			in: spec.VolumeSpec{Name: "data", Type: spec.VolumePersistentVolumeClaim,
				PersistentVolumeClaim: &spec.ClaimVolumeSpec{ClaimName: "data-pvc", ReadOnly: true}},
			want: map[string]interface{}{"name": "data",
				"persistentVolumeClaim": map[string]interface{}{"claimName": "data-pvc", "readOnly": true}},
		},
		"hostPath without block": {
			in:   spec.VolumeSpec{Name: "logs", Type: spec.VolumeHostPath},
			want: map[string]interface{}{"name": "logs", "emptyDir": map[string]interface{}{}},
		},
		"configMap without block": {
			in:   spec.VolumeSpec{Name: "conf", Type: spec.VolumeConfigMap},
			want: map[string]interface{}{"name": "conf", "emptyDir": map[string]interface{}{}},
		},
		"secret without block": {
			in: spec.VolumeSpec{Name: "tls", Type: spec.VolumeSecret,
				EmptyDir: &spec.EmptyDirSpec{Medium: "Memory"}},
			want: map[string]interface{}{"name": "tls", "emptyDir": map[string]interface{}{}},
		},
		"persistentVolumeClaim without block": {
			in:   spec.VolumeSpec{Name: "data", Type: spec.VolumePersistentVolumeClaim},
			want: map[string]interface{}{"name": "data", "emptyDir": map[string]interface{}{}},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildVolume(&tc.in))
		})
	}
}

func TestBuildVolumeOnlyUsesTaggedBacking(t *testing.T) {
	got := BuildVolume(&spec.VolumeSpec{
		Name:      "conf",
		Type:      spec.VolumeConfigMap,
		EmptyDir:  &spec.EmptyDirSpec{Medium: "Memory"},
		ConfigMap: &spec.ConfigMapVolumeSpec{Name: "conf"},
		Secret:    &spec.SecretVolumeSpec{SecretName: "conf"},
	})
	assert.Equal(t, map[string]interface{}{"name": "conf", "configMap": map[string]interface{}{"name": "conf"}}, got)
}

func TestInferVolumeTypeOrder(t *testing.T) {
	block := map[string]interface{}{}
	cases := []struct {
		in   map[string]interface{}
		want spec.VolumeType
	}{
		{in: map[string]interface{}{"hostPath": block, "configMap": block, "emptyDir": block}, want: spec.VolumeHostPath},
		{in: map[string]interface{}{"configMap": block, "secret": block}, want: spec.VolumeConfigMap},
		{in: map[string]interface{}{"secret": block, "persistentVolumeClaim": block}, want: spec.VolumeSecret},
		{in: map[string]interface{}{"persistentVolumeClaim": block, "emptyDir": block}, want: spec.VolumePersistentVolumeClaim},
		{in: map[string]interface{}{"emptyDir": block}, want: spec.VolumeEmptyDir},
		{in: map[string]interface{}{"nfs": block}, want: spec.VolumeEmptyDir},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InferVolumeType(tc.in))
	}
}

func TestVolumeRoundTrip(t *testing.T) {
	volumes := []spec.VolumeSpec{
		{Name: "tmp", Type: spec.VolumeEmptyDir},
		{Name: "shm", Type: spec.VolumeEmptyDir, EmptyDir: &spec.EmptyDirSpec{Medium: "Memory"}},
		{Name: "logs", Type: spec.VolumeHostPath, HostPath: &spec.HostPathSpec{Path: "/var/log"}},
		{Name: "conf", Type: spec.VolumeConfigMap, ConfigMap: &spec.ConfigMapVolumeSpec{Name: "conf",
			Items: []spec.KeyToPathSpec{{Key: "a", Path: "b"}}}},
		{Name: "tls", Type: spec.VolumeSecret, Secret: &spec.SecretVolumeSpec{SecretName: "tls", DefaultMode: ptr.To[int32](256)}},
		{Name: "data", Type: spec.VolumePersistentVolumeClaim, PersistentVolumeClaim: &spec.ClaimVolumeSpec{ClaimName: "data"}},
	}
	for _, v := range volumes {
		t.Run(v.Name, func(t *testing.T) {
			assert.Equal(t, v, ParseVolume(BuildVolume(&v)))
		})
	}
}
