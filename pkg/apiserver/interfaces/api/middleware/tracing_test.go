package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceFieldsUntraced(t *testing.T) {
	assert.Nil(t, traceFields(context.Background()))
}

func TestLoggingSeesIncomingTrace(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(
		otelgin.Middleware("kubemin-workload-test",
			otelgin.WithTracerProvider(tp),
			otelgin.WithPropagators(propagation.TraceContext{})),
		RequestID(),
		Logging(),
	)
	var fields []interface{}
	r.GET("/ping", func(c *gin.Context) {
		fields = traceFields(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, fields, 4)
	assert.Equal(t, "traceID", fields[0])
	assert.Equal(t, traceID, fields[1])
	assert.Equal(t, "spanID", fields[2])
	assert.NotEqual(t, "00f067aa0ba902b7", fields[3])
}
