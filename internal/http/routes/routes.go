package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-derivative/internal/http/handlers"
	"github.com/phambaophuc/image-derivative/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler   *handlers.ImageHandler
	allowedOrigins []string
	logger         *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler:   imageHandler,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.allowedOrigins))
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images")
		{
			images.GET("/resize", r.imageHandler.ResizeImage)
			images.GET("/blur", r.imageHandler.BlurImage)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image derivative service is running",
		})
	})

	return router
}
