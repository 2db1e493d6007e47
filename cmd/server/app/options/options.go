package options

import (
	"flag"

	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/klog/v2"

	"kubemin-workload/pkg/apiserver/config"
)

// ServerRunOptions contains everything necessary to create and run api server
type ServerRunOptions struct {
	GenericServerRunOptions *config.Config
}

// NewServerRunOptions creates a new ServerRunOptions object with default parameters
func NewServerRunOptions() *ServerRunOptions {
	s := &ServerRunOptions{
		GenericServerRunOptions: config.NewConfig(),
	}
	return s
}

// Validate reports every invalid option.
func (s *ServerRunOptions) Validate() []error {
	return s.GenericServerRunOptions.Validate()
}

// Flags returns the flag sets of the serve command.
func (s *ServerRunOptions) Flags() (fss cliflag.NamedFlagSets) {
	s.GenericServerRunOptions.AddFlags(fss.FlagSet("generic"), s.GenericServerRunOptions)
	return fss
}

// CompilerFlags returns only the compiler default flags, used by the offline
// compile and decompile commands.
func (s *ServerRunOptions) CompilerFlags() (fss cliflag.NamedFlagSets) {
	c := &s.GenericServerRunOptions.Compiler
	c.AddFlags(fss.FlagSet("compiler"), c)
	return fss
}

// KlogFlags returns a fresh go flag set carrying the klog flags.
func KlogFlags() *flag.FlagSet {
	local := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(local)
	return local
}
