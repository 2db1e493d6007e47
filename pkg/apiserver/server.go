package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"k8s.io/klog/v2"

	"kubemin-workload/pkg/apiserver/config"
	"kubemin-workload/pkg/apiserver/domain/service"
	"kubemin-workload/pkg/apiserver/interfaces/api"
	"kubemin-workload/pkg/apiserver/interfaces/api/middleware"
	"kubemin-workload/pkg/apiserver/utils/container"
	"kubemin-workload/pkg/tracing"
)

// APIServer interface for call api server
type APIServer interface {
	Run(context.Context, chan error) error
}

// restServer rest server
type restServer struct {
	webContainer  *gin.Engine
	beanContainer *container.Container
	cfg           config.Config
	health        *api.Health
	// listener overrides BindAddr when set
	listener net.Listener
}

// New create api server with config data
func New(cfg config.Config) (a APIServer) {
	s := &restServer{
		webContainer:  gin.New(),
		beanContainer: container.NewContainer(),
		cfg:           cfg,
		health:        api.NewHealth(),
	}
	return s
}

func (s *restServer) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.webContainer.ServeHTTP(res, req)
}

func (s *restServer) buildIoCContainer() error {
	if err := s.beanContainer.ProvideWithName("RestServer", s); err != nil {
		return fmt.Errorf("fail to provides the RestServer bean to the container: %w", err)
	}

	// provide config for downstream components that need it (inject by type)
	if err := s.beanContainer.Provides(&s.cfg); err != nil {
		return fmt.Errorf("fail to provides the config bean to the container: %w", err)
	}

	services := service.InitServiceBean(s.cfg)
	for _, svc := range services {
		if err := s.beanContainer.Provides(svc); err != nil {
			return fmt.Errorf("fail to provides the service bean to the container: %w", err)
		}
	}

	// interfaces
	if err := s.beanContainer.Provides(api.InitAPIBean()...); err != nil {
		return fmt.Errorf("fail to provides the api bean to the container: %w", err)
	}
	if err := s.beanContainer.Provides(s.health); err != nil {
		return fmt.Errorf("fail to provides the health bean to the container: %w", err)
	}

	if err := s.beanContainer.Populate(); err != nil {
		return fmt.Errorf("fail to populate the bean container: %w", err)
	}
	return nil
}

func (s *restServer) RegisterAPIRoute() {
	s.webContainer.Use(gin.Recovery())
	s.webContainer.Use(middleware.RequestID())

	// Enable CORS for browser clients
	s.webContainer.Use(middleware.CORS(s.cfg.CORS))

	// Enable tracing middleware if configured
	if s.cfg.TracingEnabled() {
		s.webContainer.Use(otelgin.Middleware(tracing.ServiceName))
	}

	// Always enable request logging
	s.webContainer.Use(middleware.Logging())

	if s.cfg.EnableGzip {
		s.webContainer.Use(middleware.Gzip())
	}
	if s.cfg.MaxBodyBytes > 0 {
		s.webContainer.Use(middleware.BodyLimit(s.cfg.MaxBodyBytes))
	}

	// probes are served at the root, outside the API prefix
	s.health.RegisterRoutes(&s.webContainer.RouterGroup)

	apis := api.GetRegisteredAPI()
	for _, prefix := range api.GetAPIPrefix() {
		group := s.webContainer.Group(prefix)
		for _, api := range apis {
			api.RegisterRoutes(group)
		}
	}
}

func (s *restServer) startHTTP(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.BindAddr,
		Handler:           s,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln := s.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", s.cfg.BindAddr); err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.BindAddr, err)
		}
	}
	klog.InfoS("HTTP APIs are being served", "addr", ln.Addr().String())

	// Graceful shutdown handler
	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)
		<-ctx.Done()
		klog.Info("HTTP server shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("HTTP server graceful shutdown error: %v", err)
			// Force close if graceful shutdown fails
			if closeErr := server.Close(); closeErr != nil {
				klog.Errorf("HTTP server force close error: %v", closeErr)
			}
			return
		}
		klog.Info("HTTP server graceful shutdown completed")
	}()

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdownComplete
		klog.Info("HTTP server closed normally")
		return nil
	}
	return err
}

// Run wires the handlers and serves until ctx is canceled.
func (s *restServer) Run(ctx context.Context, errChan chan error) error {
	if err := s.buildIoCContainer(); err != nil {
		return err
	}
	s.RegisterAPIRoute()
	return s.startHTTP(ctx)
}
