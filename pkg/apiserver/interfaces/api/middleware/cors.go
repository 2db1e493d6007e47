package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kubemin-workload/pkg/apiserver/config"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Accept", "Origin", RequestIDHeader}
)

// CORS answers preflight requests and decorates cross-origin responses. A
// "*" origin allows any caller; with credentials enabled the caller's
// origin is reflected instead of "*".
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cleanList(cfg.AllowedOrigins, nil)
	anyOrigin := slices.Contains(origins, "*")

	static := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(cleanList(cfg.AllowedMethods, defaultCORSMethods), ", "),
		"Access-Control-Allow-Headers":  strings.Join(cleanList(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
		"Access-Control-Expose-Headers": strings.Join(cleanList(cfg.ExposedHeaders, []string{RequestIDHeader}), ", "),
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		switch {
		case origin == "":
		case anyOrigin && cfg.AllowCredentials:
			allowed = origin
		case anyOrigin:
			allowed = "*"
		case slices.ContainsFunc(origins, func(o string) bool { return strings.EqualFold(o, origin) }):
			allowed = origin
		}

		if allowed == "" {
			if origin != "" && c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		if allowed != "*" {
			h.Add("Vary", "Origin")
		}
		for k, v := range static {
			if v != "" {
				h.Set(k, v)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func cleanList(values, fallback []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 && fallback != nil {
		return fallback
	}
	return out
}
