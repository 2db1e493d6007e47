package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
	"kubemin-workload/pkg/apiserver/workload"
)

type Config struct {
	// api server bind address
	BindAddr string

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout time.Duration

	// MaxBodyBytes limits the size of compile and decompile requests
	MaxBodyBytes int64

	// EnableGzip compresses responses for clients that accept gzip
	EnableGzip bool

	// MaxLogAge is how long rotated klog files are kept; zero disables cleanup
	MaxLogAge time.Duration

	// ProfilingAddr starts a pprof server when not empty
	ProfilingAddr string

	// JaegerEndpoint is the OTLP/HTTP traces URL of the Jaeger collector;
	// tracing is disabled when it is empty
	JaegerEndpoint string

	CORS CORSConfig

	// Compiler holds the placeholder values used for missing config fields
	Compiler CompilerConfig
}

// CORSConfig controls cross-origin access to the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CompilerConfig mirrors workload.Defaults in flag-friendly form.
type CompilerConfig struct {
	Name                 string
	Namespace            string
	ContainerName        string
	InitContainerName    string
	Image                string
	Replicas             int32
	Schedule             string
	CanaryWeights        []int
	CanaryPause          string
	ActiveServiceSuffix  string
	PreviewServiceSuffix string
}

func NewConfig() *Config {
	d := workload.NewDefaults()
	return &Config{
		BindAddr:        DefaultBindAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		EnableGzip:      true,
		MaxLogAge:       DefaultMaxLogAge,
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         12 * time.Hour,
		},
		Compiler: CompilerConfig{
			Name:                 d.Name,
			Namespace:            d.Namespace,
			ContainerName:        d.ContainerName,
			InitContainerName:    d.InitName,
			Image:                d.ContainerImage,
			Replicas:             d.Replicas,
			Schedule:             d.Schedule,
			CanaryWeights:        append([]int(nil), DefaultCanaryWeights...),
			CanaryPause:          DefaultCanaryPause,
			ActiveServiceSuffix:  d.ActiveServiceSuffix,
			PreviewServiceSuffix: d.PreviewServiceSuffix,
		},
	}
}

// Validate reports every invalid setting rather than stopping at the first.
func (c *Config) Validate() []error {
	var errs []error
	if strings.TrimSpace(c.BindAddr) == "" {
		errs = append(errs, fmt.Errorf("bind-addr must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max-body-bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.JaegerEndpoint != "" {
		if u, err := url.Parse(c.JaegerEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("jaeger-endpoint %q must be an absolute URL", c.JaegerEndpoint))
		}
	}
	errs = append(errs, c.Compiler.validate()...)
	return errs
}

// TracingEnabled reports whether requests are traced.
func (c *Config) TracingEnabled() bool {
	return c.JaegerEndpoint != ""
}

func (c *CompilerConfig) validate() []error {
	var errs []error
	if strings.TrimSpace(c.Image) == "" {
		errs = append(errs, fmt.Errorf("compiler-default-image must not be empty"))
	}
	if c.Replicas < 0 {
		errs = append(errs, fmt.Errorf("compiler-default-replicas must not be negative, got %d", c.Replicas))
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("compiler-default-schedule %q: %w", c.Schedule, err))
	}
	for _, w := range c.CanaryWeights {
		if w < 0 || w > maxCanaryWeight {
			errs = append(errs, fmt.Errorf("compiler-canary-weights: weight %d is outside 0..%d", w, maxCanaryWeight))
		}
	}
	if c.CanaryPause != "" {
		if _, err := time.ParseDuration(c.CanaryPause); err != nil {
			errs = append(errs, fmt.Errorf("compiler-canary-pause %q: %w", c.CanaryPause, err))
		}
	}
	return errs
}

// Defaults converts the compiler settings into workload.Defaults. An empty
// CanaryPause gives indefinite pauses.
func (c *CompilerConfig) Defaults() workload.Defaults {
	d := workload.NewDefaults()
	d.Name = c.Name
	d.Namespace = c.Namespace
	d.ContainerName = c.ContainerName
	d.InitName = c.InitContainerName
	d.ContainerImage = c.Image
	d.Replicas = c.Replicas
	d.Schedule = c.Schedule
	d.ActiveServiceSuffix = c.ActiveServiceSuffix
	d.PreviewServiceSuffix = c.PreviewServiceSuffix

	d.CanarySteps = nil
	for _, w := range c.CanaryWeights {
		d.CanarySteps = append(d.CanarySteps, spec.CanaryStep{
			SetWeight: ptr.To(int32(w)),
			Pause:     &spec.PauseSpec{Duration: c.CanaryPause},
		})
	}
	return d
}

// AddFlags adds flags to the specified FlagSet
func (c *Config) AddFlags(fs *pflag.FlagSet, configParameter *Config) {
	fs.StringVar(&c.BindAddr, "bind-addr", configParameter.BindAddr, "The bind address used to serve the http APIs.")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", configParameter.ShutdownTimeout, "How long to wait for in-flight requests on shutdown.")
	fs.Int64Var(&c.MaxBodyBytes, "max-body-bytes", configParameter.MaxBodyBytes, "Maximum size of a compile or decompile request body.")
	fs.BoolVar(&c.EnableGzip, "enable-gzip", configParameter.EnableGzip, "Compress responses for clients that accept gzip.")
	fs.DurationVar(&c.MaxLogAge, "max-log-age", configParameter.MaxLogAge, "Delete klog files under --log_dir older than this; 0 disables cleanup.")
	fs.StringVar(&c.ProfilingAddr, "profiling-addr", configParameter.ProfilingAddr, "If not empty, start the profiling server at the given address.")
	fs.StringVar(&c.JaegerEndpoint, "jaeger-endpoint", configParameter.JaegerEndpoint, "OTLP/HTTP traces URL of the Jaeger collector, e.g. http://localhost:4318/v1/traces. Tracing is disabled when empty.")
	c.CORS.AddFlags(fs, &configParameter.CORS)
	c.Compiler.AddFlags(fs, &configParameter.Compiler)
}

// AddFlags registers the CORS flags.
func (c *CORSConfig) AddFlags(fs *pflag.FlagSet, p *CORSConfig) {
	fs.StringSliceVar(&c.AllowedOrigins, "cors-allowed-origins", p.AllowedOrigins, "Origins allowed to call the API; * allows any.")
	fs.StringSliceVar(&c.AllowedMethods, "cors-allowed-methods", p.AllowedMethods, "Methods allowed for cross-origin requests.")
	fs.StringSliceVar(&c.AllowedHeaders, "cors-allowed-headers", p.AllowedHeaders, "Request headers allowed for cross-origin requests.")
	fs.StringSliceVar(&c.ExposedHeaders, "cors-exposed-headers", p.ExposedHeaders, "Response headers exposed to cross-origin callers.")
	fs.BoolVar(&c.AllowCredentials, "cors-allow-credentials", p.AllowCredentials, "Allow credentials on cross-origin requests.")
	fs.DurationVar(&c.MaxAge, "cors-max-age", p.MaxAge, "How long browsers may cache a preflight response.")
}

// AddFlags registers the compiler default flags. They are shared by the
// serve, compile and decompile commands.
func (c *CompilerConfig) AddFlags(fs *pflag.FlagSet, p *CompilerConfig) {
	fs.StringVar(&c.Name, "compiler-default-name", p.Name, "Workload name used when a config has none.")
	fs.StringVar(&c.Namespace, "compiler-default-namespace", p.Namespace, "Namespace used when a config or manifest has none.")
	fs.StringVar(&c.ContainerName, "compiler-container-name", p.ContainerName, "Name given to unnamed containers.")
	fs.StringVar(&c.InitContainerName, "compiler-init-container-name", p.InitContainerName, "Name given to unnamed init containers.")
	fs.StringVar(&c.Image, "compiler-default-image", p.Image, "Image used for containers without one.")
	fs.Int32Var(&c.Replicas, "compiler-default-replicas", p.Replicas, "Replica count used when a config has none.")
	fs.StringVar(&c.Schedule, "compiler-default-schedule", p.Schedule, "CronJob schedule used when a config has none.")
	fs.IntSliceVar(&c.CanaryWeights, "compiler-canary-weights", p.CanaryWeights, "setWeight values of the default canary plan.")
	fs.StringVar(&c.CanaryPause, "compiler-canary-pause", p.CanaryPause, "Pause after each default canary weight; empty pauses indefinitely.")
	fs.StringVar(&c.ActiveServiceSuffix, "compiler-active-service-suffix", p.ActiveServiceSuffix, "Suffix of the default blue-green active service.")
	fs.StringVar(&c.PreviewServiceSuffix, "compiler-preview-service-suffix", p.PreviewServiceSuffix, "Suffix of the default blue-green preview service.")
}
