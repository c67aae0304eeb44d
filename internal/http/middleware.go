package http

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TraceConfig controls the request tracing middleware.
type TraceConfig struct {
	// Enabled turns the whole pipeline off when false.
	Enabled bool
	// HeaderName is the request/response header carrying the trace id.
	HeaderName string
	// ExcludePaths lists path globs that skip tracing entirely.
	// A pattern ending in "/**" matches the whole subtree.
	ExcludePaths []string
}

// TraceMiddleware wraps every request with a trace id and structured
// request/response logging. The trace header is optional input: when absent
// a fresh id is synthesized. The inbound or synthesized id is echoed on the
// response header either way. The middleware never touches the body.
func TraceMiddleware(cfg TraceConfig, logger *logrus.Logger) gin.HandlerFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-Id"
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || pathExcluded(cfg.ExcludePaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		traceID := strings.TrimSpace(c.GetHeader(headerName))
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Writer.Header().Set(headerName, traceID)

		fields := logrus.Fields{
			"traceId": traceID,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  "REQUEST",
		}
		logger.WithFields(fields).Info("RECEIVED")

		start := time.Now()
		c.Next()

		httpStatus := c.Writer.Status()
		fields["httpStatus"] = httpStatus
		fields["durationMillis"] = time.Since(start).Milliseconds()

		if httpStatus >= http.StatusBadRequest {
			fields["status"] = "ERROR"
			logger.WithFields(fields).Warn("FAILED")
		} else {
			fields["status"] = "COMPLETE"
			logger.WithFields(fields).Info("FINISHED")
		}
	}
}

func pathExcluded(patterns []string, requestPath string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if subtree, found := strings.CutSuffix(pattern, "/**"); found {
			if requestPath == subtree || strings.HasPrefix(requestPath, subtree+"/") {
				return true
			}
			continue
		}
		if ok, err := path.Match(pattern, requestPath); err == nil && ok {
			return true
		}
	}
	return false
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-Id")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
