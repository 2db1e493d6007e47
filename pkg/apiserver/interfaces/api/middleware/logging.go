package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "requestID"
)

// RequestID reuses the caller's X-Request-Id or assigns a new UUID, and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// Logging logs one line per request along with the trace and span ids of a
// traced request. Health probes are logged at V(4) only.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger := klog.V(0)
		if isProbePath(path) {
			logger = klog.V(4)
		}
		ids := append([]interface{}{"requestID", c.GetString(RequestIDKey)}, traceFields(c.Request.Context())...)
		logger.InfoS("HTTP request", append([]interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
			"bytes", c.Writer.Size(),
		}, ids...)...)
		for _, err := range c.Errors {
			klog.ErrorS(err.Err, "HTTP handler error", append([]interface{}{"path", path}, ids...)...)
		}
	}
}

// traceFields returns the traceID and spanID key/value pairs of the span in
// ctx, or nothing when the request is not traced.
func traceFields(ctx context.Context) []interface{} {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []interface{}{"traceID", sc.TraceID().String(), "spanID", sc.SpanID().String()}
}
