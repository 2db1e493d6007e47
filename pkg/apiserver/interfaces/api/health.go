package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"kubemin-workload/pkg/apiserver/domain/service"
)

// Health provides the probe endpoints. It is mounted at the server root
// rather than under the API prefix.
type Health struct {
	WorkloadService service.WorkloadService `inject:""`
}

// NewHealth creates the probe handler.
func NewHealth() *Health {
	return &Health{}
}

// RegisterRoutes registers health check endpoints.
func (h *Health) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/health", h.healthCheck)
	group.GET("/healthz", h.healthCheck)
	group.GET("/ready", h.readinessCheck)
	group.GET("/readyz", h.readinessCheck)
}

// healthCheck always returns OK while the process serves requests.
func (h *Health) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// readinessCheck reports ready once the workload service has been wired
// and knows at least one kind.
func (h *Health) readinessCheck(c *gin.Context) {
	if h.WorkloadService == nil {
		klog.V(4).Info("readiness check failed: workload service is not wired")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "workload service unavailable",
		})
		return
	}
	if kinds := h.WorkloadService.ListKinds(c.Request.Context()); kinds == nil || len(kinds.Kinds) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "no workload kinds registered",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
