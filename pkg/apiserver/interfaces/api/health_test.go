package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"kubemin-workload/pkg/apiserver/config"
	"kubemin-workload/pkg/apiserver/domain/service"
)

func serveHealth(h *Health, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestHealthCheck(t *testing.T) {
	for _, path := range []string{"/health", "/healthz"} {
		resp := serveHealth(NewHealth(), path)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "healthy")
	}
}

func TestReadinessCheckNotWired(t *testing.T) {
	resp := serveHealth(NewHealth(), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.Contains(t, resp.Body.String(), "not ready")
}

func TestReadinessCheckReady(t *testing.T) {
	h := &Health{WorkloadService: service.NewWorkloadService(*config.NewConfig())}
	for _, path := range []string{"/ready", "/readyz"} {
		resp := serveHealth(h, path)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"ready"`)
	}
}
