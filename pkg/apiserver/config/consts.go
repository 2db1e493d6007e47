package config

import "time"

const (
	// DefaultBindAddr is where the HTTP API listens unless overridden.
	DefaultBindAddr = "0.0.0.0:8000"
	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultMaxLogAge is how long klog files under --log_dir are kept.
	DefaultMaxLogAge = 7 * 24 * time.Hour
	// DefaultMaxBodyBytes caps compile and decompile request bodies.
	DefaultMaxBodyBytes = 4 << 20

	// DefaultCanaryPause is the pause inserted after each default canary weight.
	DefaultCanaryPause = "10m"

	maxCanaryWeight = 100
)

// DefaultCanaryWeights are the setWeight values of the default canary plan.
var DefaultCanaryWeights = []int{20, 50, 80}
