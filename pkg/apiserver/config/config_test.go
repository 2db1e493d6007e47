package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
	"kubemin-workload/pkg/apiserver/workload"
)

func TestNewConfigIsValid(t *testing.T) {
	cfg := NewConfig()
	require.Empty(t, cfg.Validate())
}

func TestNewConfigMatchesCompilerDefaults(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, workload.NewDefaults(), cfg.Compiler.Defaults())
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.BindAddr = " "
	cfg.Compiler.Image = ""
	cfg.Compiler.Schedule = "every day"
	cfg.Compiler.CanaryWeights = []int{10, 120}
	cfg.Compiler.CanaryPause = "ten minutes"
	require.Len(t, cfg.Validate(), 5)
}

func TestValidateJaegerEndpoint(t *testing.T) {
	cfg := NewConfig()
	require.False(t, cfg.TracingEnabled())

	cfg.JaegerEndpoint = "localhost:4318"
	require.Len(t, cfg.Validate(), 1)

	cfg.JaegerEndpoint = "http://localhost:4318/v1/traces"
	require.Empty(t, cfg.Validate())
	require.True(t, cfg.TracingEnabled())
}

func TestCompilerDefaultsIndefinitePause(t *testing.T) {
	cfg := NewConfig()
	cfg.Compiler.CanaryWeights = []int{30}
	cfg.Compiler.CanaryPause = ""

	d := cfg.Compiler.Defaults()
	require.Equal(t, []spec.CanaryStep{{SetWeight: ptr.To[int32](30), Pause: &spec.PauseSpec{}}}, d.CanarySteps)
}

func TestAddFlags(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs, cfg)

	require.NoError(t, fs.Parse([]string{
		"--bind-addr=127.0.0.1:9000",
		"--compiler-default-image=busybox:1.36",
		"--compiler-canary-weights=10,90",
		"--cors-allowed-origins=https://a.example,https://b.example",
		"--jaeger-endpoint=http://jaeger:4318/v1/traces",
	}))
	require.Equal(t, "http://jaeger:4318/v1/traces", cfg.JaegerEndpoint)
	require.Equal(t, "127.0.0.1:9000", cfg.BindAddr)
	require.Equal(t, "busybox:1.36", cfg.Compiler.Image)
	require.Equal(t, []int{10, 90}, cfg.Compiler.CanaryWeights)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
