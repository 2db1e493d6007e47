package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var gzipPool = sync.Pool{
	New: func() interface{} { return gzip.NewWriter(nil) },
}

// Gzip compresses responses for clients that accept gzip. HEAD requests,
// health probes and responses that already carry an encoding pass through.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead ||
			isProbePath(c.Request.URL.Path) ||
			!strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") ||
			c.Writer.Header().Get("Content-Encoding") != "" {
			c.Next()
			return
		}

		gz := gzipPool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		defer gzipPool.Put(gz)

		h := c.Writer.Header()
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{ResponseWriter: c.Writer, gz: gz}
		defer func() {
			h.Del("Content-Length")
			_ = gz.Close()
		}()
		c.Next()
	}
}

type gzipWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if !w.Written() {
		w.WriteHeader(http.StatusOK)
	}
	return w.gz.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func isProbePath(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/health", "/healthz", "/ready", "/readyz", "/api/v1/health", "/api/v1/healthz", "/api/v1/ready", "/api/v1/readyz":
		return true
	}
	return false
}
