package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/config"
	"kubemin-workload/pkg/apiserver/domain/spec"
	apisv1 "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
	"kubemin-workload/pkg/apiserver/utils/bcode"
	"kubemin-workload/pkg/apiserver/workload"
)

func newTestService() WorkloadService {
	return NewWorkloadService(*config.NewConfig())
}

func TestCompileRendersYAML(t *testing.T) {
	svc := newTestService()
	resp, err := svc.Compile(context.Background(), apisv1.CompileWorkloadRequest{
		Kind: "deployment",
		Config: spec.WorkloadConfig{
			Name:       "api",
			Replicas:   ptr.To[int32](2),
			Containers: []spec.ContainerSpec{{Name: "api", Image: "api:1.0"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Deployment", resp.Kind)
	assert.Equal(t, "apps/v1", resp.APIVersion)
	assert.True(t, strings.HasPrefix(resp.YAML, "apiVersion: apps/v1\nkind: Deployment\n"))
	assert.Contains(t, resp.YAML, "replicas: 2")
	assert.EqualValues(t, 2, resp.Manifest["spec"].(map[string]interface{})["replicas"])
}

func TestCompileUsesConfiguredDefaults(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Compiler.Image = "busybox:1.36"
	cfg.Compiler.Namespace = "sandbox"
	svc := NewWorkloadService(*cfg)

	resp, err := svc.Compile(context.Background(), apisv1.CompileWorkloadRequest{Config: spec.WorkloadConfig{Kind: spec.KindJob}})
	require.NoError(t, err)
	assert.Contains(t, resp.YAML, "image: busybox:1.36")
	assert.Contains(t, resp.YAML, "namespace: sandbox")
}

func TestCompileUnsupportedKind(t *testing.T) {
	_, err := newTestService().Compile(context.Background(), apisv1.CompileWorkloadRequest{Kind: "ReplicaSet"})
	require.ErrorIs(t, err, workload.ErrUnsupportedKind)
}

func TestDecompileFromYAML(t *testing.T) {
	resp, err := newTestService().Decompile(context.Background(), apisv1.DecompileWorkloadRequest{YAML: `
metadata:
  name: shop
spec:
  replicas: 3
  strategy:
    blueGreen:
      activeService: shop
  template:
    spec:
      containers:
      - name: shop
        image: shop:2
`})
	require.NoError(t, err)
	assert.Equal(t, "Rollout", resp.Kind)
	assert.Equal(t, ptr.To[int32](3), resp.Config.Replicas)
	assert.Equal(t, "shop", resp.Config.RolloutStrategy.BlueGreen.ActiveService)
}

func TestDecompilePrefersManifestTree(t *testing.T) {
	resp, err := newTestService().Decompile(context.Background(), apisv1.DecompileWorkloadRequest{
		Manifest: map[string]interface{}{"kind": "DaemonSet", "spec": map[string]interface{}{}},
		YAML:     "kind: Job\nspec: {}\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "DaemonSet", resp.Kind)
}

func TestDecompileErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Decompile(ctx, apisv1.DecompileWorkloadRequest{})
	assert.ErrorIs(t, err, workload.ErrUnrecognizedManifest)

	_, err = svc.Decompile(ctx, apisv1.DecompileWorkloadRequest{YAML: "# only a comment\n"})
	assert.ErrorIs(t, err, workload.ErrUnrecognizedManifest)

	_, err = svc.Decompile(ctx, apisv1.DecompileWorkloadRequest{YAML: "spec: [oops"})
	var code *bcode.Bcode
	require.True(t, errors.As(err, &code))
	assert.Equal(t, bcode.ErrManifestSyntax, code)

	_, err = svc.Decompile(ctx, apisv1.DecompileWorkloadRequest{YAML: "kind: Deployment\n"})
	assert.ErrorIs(t, err, workload.ErrUnrecognizedManifest)
}

func TestCompileDecompileThroughText(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := spec.WorkloadConfig{
		Kind:      spec.KindCronJob,
		Name:      "report",
		Namespace: "batch",
		Labels:    []spec.KeyValue{{Key: "app", Value: "report"}},
		Schedule:  "0 3 * * *",
		Containers: []spec.ContainerSpec{{
			Name:    "report",
			Image:   "report:2",
			Command: "report\n--daily",
		}},
	}
	compiled, err := svc.Compile(ctx, apisv1.CompileWorkloadRequest{Config: in})
	require.NoError(t, err)

	out, err := svc.Decompile(ctx, apisv1.DecompileWorkloadRequest{YAML: compiled.YAML})
	require.NoError(t, err)
	assert.Equal(t, &in, out.Config)
}

func TestListKinds(t *testing.T) {
	resp := newTestService().ListKinds(context.Background())
	require.Len(t, resp.Kinds, len(spec.Kinds()))
	assert.Equal(t, "Rollout", resp.Kinds[5].Kind)
}

func TestResolveKind(t *testing.T) {
	assert.Equal(t, spec.KindStatefulSet, resolveKind("statefulset", nil))
	assert.Equal(t, spec.KindJob, resolveKind("", &spec.WorkloadConfig{Kind: spec.KindJob}))
	assert.Equal(t, spec.Kind("Pod"), resolveKind("Pod", nil))
	assert.Equal(t, spec.Kind(""), resolveKind("", nil))
}
