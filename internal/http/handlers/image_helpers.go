package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"go.uber.org/zap"
)

type derivativeQuery struct {
	Token       string `form:"token"`
	Key         string `form:"key"`
	Size        string `form:"size"`
	NoCache     string `form:"no_cache"`
	CheckExists string `form:"check_exists"`
}

// === REQUEST PARSING ===

func (q derivativeQuery) request() derivative.Request {
	return derivative.Request{
		Token:       q.Token,
		Key:         q.Key,
		Size:        q.Size,
		NoCache:     derivative.ParseFlag(q.NoCache),
		CheckExists: derivative.ParseFlag(q.CheckExists),
	}
}

func (h *ImageHandler) handleDerivative(c *gin.Context, variant derivative.Variant) {
	var query derivativeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Debug("Invalid query", zap.Error(err))
		c.JSON(http.StatusBadRequest, "Invalid query.")
		return
	}

	resp := h.service.Handle(c.Request.Context(), variant, query.request())
	h.writeResponse(c, resp)
}

// === RESPONSES ===

func (h *ImageHandler) writeResponse(c *gin.Context, resp *derivative.Response) {
	contentType := ""
	for k, v := range resp.Headers {
		if k == "Content-Type" {
			contentType = v
			continue
		}
		c.Header(k, v)
	}

	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// === UTILITY METHODS ===

func (h *ImageHandler) collectHealth(ctx context.Context) map[string]string {
	services := make(map[string]string)
	for _, checker := range h.checkers {
		for name, status := range checker.HealthCheck(ctx) {
			services[name] = status
		}
	}

	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = "not configured"
	}

	return services
}

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
