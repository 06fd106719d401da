package http

import (
	"net/http"

	"product-catalog/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"

	livenessMessage = "product catalog API"
)

type HealthChecker interface {
	Health() error
}

// RegisterRoutes mounts the catalog surface. The gate middleware guards
// every mutating route; reads stay public.
func RegisterRoutes(router *gin.Engine, handler *Handler, gate gin.HandlerFunc, checker HealthChecker) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": livenessMessage})
	})

	products := router.Group("/api/products")
	{
		products.GET("", handler.ListProducts)
		products.GET("/search", handler.SearchProducts)
		products.GET("/featured", handler.FeaturedProducts)
		products.GET("/stats", handler.ProductStats)
		products.GET("/category/:categoria", handler.ProductsByCategory)
		products.GET("/:id", handler.GetProduct)

		products.POST("", gate, handler.CreateProduct)
		products.PUT("/:id", gate, handler.UpdateProduct)
		products.PATCH("/:id/stock", gate, handler.UpdateStock)
		products.DELETE("/:id", gate, handler.DeleteProduct)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(func(c *gin.Context) {
		api.Error(c, http.StatusNotFound, "not found")
	})
}
