package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"prefs-service/internal/auth"
	"prefs-service/internal/problem"
	"prefs-service/internal/service"
)

// Handler wires HTTP routes to the preferences service.
type Handler struct {
	prefs     service.PreferencesService
	jwtSecret string
	trace     TraceConfig
	logger    *logrus.Logger
}

func NewHandler(prefs service.PreferencesService, jwtSecret string, trace TraceConfig, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		prefs:     prefs,
		jwtSecret: jwtSecret,
		trace:     trace,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(TraceMiddleware(h.trace, h.logger))

	// health endpoints are open by platform convention
	health := router.Group("/health")
	{
		health.GET("/liveness", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "UP"})
		})
		health.GET("/readiness", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "UP"})
		})
	}

	v1 := router.Group("/v1", auth.Middleware(h.jwtSecret))
	{
		v1.GET("/preferences", h.getPreferences)
		v1.POST("/preferences", h.savePreferences)
		v1.PUT("/preferences", h.savePreferences)
	}
}

// PreferencesBody is the wire form of a preference document. Properties is
// passed through opaquely.
type PreferencesBody struct {
	Properties json.RawMessage `json:"properties"`
}

func (h *Handler) getPreferences(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	prefs, err := h.prefs.Get(c.Request.Context(), userID)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, PreferencesBody{Properties: prefs.Properties})
}

func (h *Handler) savePreferences(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	var body PreferencesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		problem.Abort(c, problem.Validation("request body must be a JSON object with a properties field"))
		return
	}

	prefs, err := h.prefs.Save(c.Request.Context(), userID, body.Properties)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, PreferencesBody{Properties: prefs.Properties})
}
