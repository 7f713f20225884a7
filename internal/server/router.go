package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursesmith-backend/internal/handlers"
	"github.com/yungbote/coursesmith-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	ProductHandler *handlers.ProductHandler
	ExportHandler  *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Products
	protected.GET("/products", cfg.ProductHandler.ListUserProducts)
	// Export
	protected.POST("/export/scorm/:planID", cfg.ExportHandler.ExportScorm)

	return router
}
