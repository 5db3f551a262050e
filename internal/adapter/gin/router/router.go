package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-console/internal/adapter/gin/handler"
	"user-crud-console/internal/adapter/gin/middleware"
	"user-crud-console/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter may be nil.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(logger.AccessLog(log))
	router.Use(rateLimiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	// jsonplaceholder serves /users at the root, so the console can point at either
	userHandler.Register(router)

	return router
}
