package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Pinger reports whether a dependency is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether an optional upstream service is healthy.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	store  Pinger
	ocr    HealthChecker
	logger *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler. ocr may be nil.
func NewReadyHandler(store Pinger, ocr HealthChecker, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		store:  store,
		ocr:    ocr,
		logger: logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. The data store must answer a ping.
// The OCR service state is reported but does not affect readiness.
func (h *ReadyHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "data store unreachable",
		})
		return
	}

	body := gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.ocr != nil {
		body["ocrService"] = "healthy"
		if err := h.ocr.HealthCheck(ctx); err != nil {
			h.logger.Warn("ocr service unhealthy", zap.Error(err))
			body["ocrService"] = "unavailable"
		}
	}
	c.JSON(http.StatusOK, body)
}
