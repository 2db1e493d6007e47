package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"kubemin-workload/cmd/server/app/options"
	"kubemin-workload/pkg/apiserver/config"
)

const (
	configFlag     = "config"
	configFileName = ".kubemin-workload"
)

// NewCommand builds the root command with the serve, compile, decompile and
// kinds subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubemin-workload",
		Short: "Compile workload configs into Kubernetes and Argo Rollouts manifests, and back",
		Long: `kubemin-workload turns the flat workload config edited in the console into
Deployment, StatefulSet, DaemonSet, Job, CronJob or Rollout manifests, and
recovers the config from an existing manifest.

Flags may also be set through KUBEMIN_* environment variables or a YAML
config file whose keys are flag names. Precedence: flag, environment, file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd.Flags())
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.String(configFlag, "", "config file (default is $HOME/"+configFileName+".yaml)")
	pfs.AddGoFlagSet(options.KlogFlags())

	cmd.AddCommand(
		newServeCommand(),
		newCompileCommand(),
		newDecompileCommand(),
		newKindsCommand(),
	)
	return cmd
}

// loadSettings fills flags left unset on the command line, first from the
// environment and then from the config file.
func loadSettings(fs *pflag.FlagSet) error {
	applied, err := config.ApplyEnvOverrides(fs, config.EnvPrefix)
	if err != nil {
		return err
	}
	for _, key := range applied {
		klog.V(2).InfoS("Applied environment override", "env", key)
	}

	path, _ := fs.GetString(configFlag)
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(configFileName)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	klog.V(2).InfoS("Using config file", "path", v.ConfigFileUsed())
	return applyConfigValues(fs, v)
}

// applyConfigValues sets every unchanged flag whose name is a key of v.
func applyConfigValues(fs *pflag.FlagSet, v *viper.Viper) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == configFlag || !v.IsSet(f.Name) {
			return
		}
		raw := v.Get(f.Name)
		var val string
		switch f.Value.Type() {
		case "stringSlice", "stringArray", "intSlice", "int32Slice":
			val = strings.Join(cast.ToStringSlice(raw), ",")
		default:
			val = cast.ToString(raw)
		}
		if err := fs.Set(f.Name, val); err != nil {
			errs = append(errs, fmt.Errorf("config key %q: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}
