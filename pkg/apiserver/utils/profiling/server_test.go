package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfilingHandler(t *testing.T) {
	h := NewProfilingHandler()

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/mem/stat", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	require.Contains(t, stats, "HeapAlloc")

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}
