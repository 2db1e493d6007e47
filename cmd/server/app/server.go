package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"kubemin-workload/cmd/server/app/options"
	server "kubemin-workload/pkg/apiserver"
	"kubemin-workload/pkg/apiserver/utils"
	"kubemin-workload/pkg/apiserver/utils/profiling"
	"kubemin-workload/pkg/tracing"
)

func newServeCommand() *cobra.Command {
	s := options.NewServerRunOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile and decompile HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := s.Validate(); len(errs) > 0 {
				return utilerrors.NewAggregate(errs)
			}
			return Run(cmd.Context(), s, flagValue(cmd, "log_dir"))
		},
	}

	fs := cmd.Flags()
	for _, set := range s.Flags().FlagSets {
		fs.AddFlagSet(set)
	}
	return cmd
}

// Run runs the API server until it fails or the process is asked to stop.
func Run(ctx context.Context, s *options.ServerRunOptions, logDir string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := s.GenericServerRunOptions
	errChan := make(chan error, 1)

	go profiling.StartProfilingServer(ctx, cfg.ProfilingAddr, errChan)

	// Ensure the log directory exists before starting services that log to files.
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %s: %w", logDir, err)
		}
	}
	if cfg.MaxLogAge > 0 {
		utils.StartLogCleanup(ctx, logDir, cfg.MaxLogAge)
	}

	if cfg.TracingEnabled() {
		klog.InfoS("Distributed tracing enabled", "jaegerEndpoint", cfg.JaegerEndpoint)
		shutdown, err := tracing.InitTracerProvider(ctx, tracing.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			return fmt.Errorf("failed to init tracer provider: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				klog.ErrorS(err, "Failed to shutdown tracer provider")
			}
		}()
	}

	klog.InfoS("Starting kubemin-workload API server", "bindAddr", cfg.BindAddr, "defaultImage", cfg.Compiler.Image)
	done := make(chan error, 1)
	go func() {
		done <- server.New(*cfg).Run(ctx, errChan)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to run apiserver: %w", err)
		}
		klog.Info("Received shutdown signal, exited gracefully")
	case err := <-errChan:
		klog.Errorf("Received an error: %s, exiting gracefully...", err.Error())
		cancel()
		<-done
		return err
	}
	klog.Infof("See you next time!")
	klog.Flush()
	return nil
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}
