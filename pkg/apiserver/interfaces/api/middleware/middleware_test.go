package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubemin-workload/pkg/apiserver/config"
)

func newRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestRequestIDAssignsAndEchoes(t *testing.T) {
	r := newRouter(RequestID(), Logging())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	_, err := uuid.Parse(resp.Header().Get(RequestIDHeader))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, "caller-id", resp.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://ui.example"},
		MaxAge:         time.Hour,
	}))

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://UI.example")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.Equal(t, "https://UI.example", resp.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", resp.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("preflight from other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same origin request", func(t *testing.T) {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://any.example")

	resp := httptest.NewRecorder()
	newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"*"}})).ServeHTTP(resp, req)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = httptest.NewRecorder()
	newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})).ServeHTTP(resp, req)
	assert.Equal(t, "https://any.example", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))
}

func TestGzip(t *testing.T) {
	r := newRouter(Gzip())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, "gzip", resp.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Empty(t, resp.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", resp.Body.String())
}

func TestBodyLimit(t *testing.T) {
	r := newRouter(BodyLimit(8))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, "short", resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}
