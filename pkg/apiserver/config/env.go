package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to flag names when looking up environment overrides.
const EnvPrefix = "KUBEMIN"

// ApplyEnvOverrides sets every flag not given on the command line from the
// matching environment variable, e.g. --compiler-default-image from
// KUBEMIN_COMPILER_DEFAULT_IMAGE. It returns the variables it applied.
func ApplyEnvOverrides(fs *pflag.FlagSet, prefix string) ([]string, error) {
	var (
		applied []string
		errs    []error
	)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		envKey := EnvKey(prefix, f.Name)
		val, ok := os.LookupEnv(envKey)
		if !ok {
			return
		}
		if err := fs.Set(f.Name, val); err != nil {
			errs = append(errs, fmt.Errorf("apply %s to flag --%s: %w", envKey, f.Name, err))
			return
		}
		applied = append(applied, envKey)
	})
	return applied, errors.Join(errs...)
}

// EnvKey returns the environment variable consulted for a flag.
func EnvKey(prefix, name string) string {
	canonical := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	if strings.TrimSpace(prefix) == "" {
		return canonical
	}
	return strings.ToUpper(prefix) + "_" + canonical
}
