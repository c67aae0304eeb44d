package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceTestRouter(cfg TraceConfig, logs *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(logs)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(TraceMiddleware(cfg, logger))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/boom", func(c *gin.Context) { c.String(http.StatusBadRequest, "boom") })
	router.GET("/health/liveness", func(c *gin.Context) { c.String(http.StatusOK, "up") })
	return router
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	var logs bytes.Buffer
	router := traceTestRouter(TraceConfig{Enabled: true, HeaderName: "X-Request-Id"}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-Id", "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, logs.String(), "trace-123")
	assert.Contains(t, logs.String(), "RECEIVED")
	assert.Contains(t, logs.String(), "FINISHED")
	assert.Contains(t, logs.String(), "COMPLETE")
}

func TestTraceIDIsSynthesizedWhenHeaderAbsent(t *testing.T) {
	var logs bytes.Buffer
	router := traceTestRouter(TraceConfig{Enabled: true, HeaderName: "X-Request-Id"}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// missing header never fails the request; a fallback id is assigned
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestErrorStatusIsClassifiedAsFailed(t *testing.T) {
	var logs bytes.Buffer
	router := traceTestRouter(TraceConfig{Enabled: true, HeaderName: "X-Request-Id"}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Contains(t, logs.String(), "FAILED")
	assert.Contains(t, logs.String(), "ERROR")
	assert.Contains(t, logs.String(), "durationMillis")
}

func TestExcludedPathSkipsTracing(t *testing.T) {
	var logs bytes.Buffer
	router := traceTestRouter(TraceConfig{
		Enabled:      true,
		HeaderName:   "X-Request-Id",
		ExcludePaths: []string{"/health/**"},
	}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/health/liveness", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, logs.String())
}

func TestDisabledPipelinePassesThrough(t *testing.T) {
	var logs bytes.Buffer
	router := traceTestRouter(TraceConfig{Enabled: false, HeaderName: "X-Request-Id"}, &logs)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-Id", "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, logs.String())
}

func TestPathExcluded(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/health/**", "/health/liveness", true},
		{"/health/**", "/health", true},
		{"/health/**", "/healthz", false},
		{"/v1/*", "/v1/preferences", true},
		{"/v1/*", "/v1/preferences/deep", false},
		{"/metrics", "/metrics", true},
		{"/metrics", "/v1/preferences", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, pathExcluded([]string{tc.pattern}, tc.path),
			"pattern %s path %s", tc.pattern, tc.path)
	}
}
