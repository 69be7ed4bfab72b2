package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"go.uber.org/zap"
)

// QueueStatus is the view of the event queue the handlers need.
type QueueStatus interface {
	HealthCheck() string
	GetQueueStats() (map[string]interface{}, error)
}

// CacheStatus is the view of the result cache the handlers need.
type CacheStatus interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

type ImageHandler struct {
	service  *derivative.Service
	checkers []storage.HealthChecker
	queue    QueueStatus
	cache    CacheStatus
	logger   *zap.Logger
}

// NewImageHandler wires the handlers. queue and cache may be nil.
func NewImageHandler(
	service *derivative.Service,
	checkers []storage.HealthChecker,
	queue QueueStatus,
	cache CacheStatus,
	logger *zap.Logger,
) *ImageHandler {
	return &ImageHandler{
		service:  service,
		checkers: checkers,
		queue:    queue,
		cache:    cache,
		logger:   logger,
	}
}

// === MAIN API ENDPOINTS ===

func (h *ImageHandler) ResizeImage(c *gin.Context) {
	h.handleDerivative(c, derivative.VariantResize)
}

func (h *ImageHandler) BlurImage(c *gin.Context) {
	h.handleDerivative(c, derivative.VariantBlur)
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.collectHealth(c.Request.Context())
	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if h.cache != nil {
		cacheStats, err := h.cache.Stats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
