package profiling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"k8s.io/klog/v2"
)

// NewProfilingHandler create a profiling handler
func NewProfilingHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/mem/stat", func(writer http.ResponseWriter, request *http.Request) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(ms)
	})
	mux.HandleFunc("/gc", func(writer http.ResponseWriter, request *http.Request) {
		runtime.GC()
	})
	return mux
}

// StartProfilingServer serves the profiling handler on addr until ctx is
// canceled. An empty addr disables it. A listen failure is sent to errChan.
func StartProfilingServer(ctx context.Context, addr string, errChan chan<- error) {
	if addr == "" {
		return
	}
	klog.Infof("start profiling server at %s", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewProfilingHandler(),
		ReadHeaderTimeout: 2 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- err
	}
}
