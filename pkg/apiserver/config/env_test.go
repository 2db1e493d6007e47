package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	require.Equal(t, "KUBEMIN_BIND_ADDR", EnvKey(EnvPrefix, "bind-addr"))
	require.Equal(t, "KUBEMIN_COMPILER_DEFAULT_IMAGE", EnvKey("kubemin", "compiler-default-image"))
	require.Equal(t, "LOG_DIR", EnvKey("", "log.dir"))
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs, cfg)
	require.NoError(t, fs.Parse([]string{"--bind-addr=127.0.0.1:1"}))

	t.Setenv("KUBEMIN_BIND_ADDR", "0.0.0.0:2")
	t.Setenv("KUBEMIN_COMPILER_DEFAULT_REPLICAS", "3")

	applied, err := ApplyEnvOverrides(fs, EnvPrefix)
	require.NoError(t, err)
	require.Equal(t, []string{"KUBEMIN_COMPILER_DEFAULT_REPLICAS"}, applied)
	require.Equal(t, "127.0.0.1:1", cfg.BindAddr)
	require.EqualValues(t, 3, cfg.Compiler.Replicas)
}

func TestApplyEnvOverridesReportsBadValues(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs, cfg)

	t.Setenv("KUBEMIN_ENABLE_GZIP", "sometimes")
	_, err := ApplyEnvOverrides(fs, EnvPrefix)
	require.ErrorContains(t, err, "KUBEMIN_ENABLE_GZIP")
}
