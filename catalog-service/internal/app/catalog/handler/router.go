package handler

import (
	"net/http"
	"time"

	"hearwell/pkg/logger"
	"hearwell/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions - настройки роутера, не относящиеся к обработчикам
type RouterOptions struct {
	CORSOrigins []string
	// UploadDir раздается по UploadPrefix, если задан (локальное хранилище изображений)
	UploadDir    string
	UploadPrefix string
}

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
// Админка требует сессию, публичное API только читает каталог
func SetupRoutes(catalogHandler *CatalogHandler, authHandler *AuthHandler, authMiddleware *AuthMiddleware, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	// CORS для сайта и админки
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        5 * time.Minute,
	}
	if len(opts.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.UploadDir != "" && opts.UploadPrefix != "" {
		router.Static(opts.UploadPrefix, opts.UploadDir)
	}

	router.POST("/auth/login", authHandler.Login)

	// Публичное API для сайта и квиза
	public := router.Group("/public")
	{
		public.GET("/categories", catalogHandler.GetCategoryTree)
		public.GET("/features", catalogHandler.GetAllFeatures)
		public.GET("/products", catalogHandler.GetAllProducts)
		public.GET("/products/:id", catalogHandler.GetProduct)
		public.POST("/quiz", catalogHandler.RecommendProducts)
	}

	// Админка - все маршруты требуют сессию
	admin := router.Group("")
	admin.Use(authMiddleware.Authenticate())
	{
		categories := admin.Group("/categories")
		categories.GET("", catalogHandler.GetAllCategories)
		categories.POST("", catalogHandler.CreateCategory)
		categories.GET("/:id", catalogHandler.GetCategory)
		categories.PUT("/:id", catalogHandler.UpdateCategory)
		categories.DELETE("/:id", catalogHandler.DeleteCategory)

		features := admin.Group("/features")
		features.GET("", catalogHandler.GetAllFeatures)
		features.POST("", catalogHandler.CreateFeature)
		features.GET("/:id", catalogHandler.GetFeature)
		features.PUT("/:id", catalogHandler.UpdateFeature)
		features.DELETE("/:id", catalogHandler.DeleteFeature)

		products := admin.Group("/products")
		products.GET("", catalogHandler.GetAllProducts)
		products.POST("", catalogHandler.CreateProduct)
		products.GET("/:id", catalogHandler.GetProduct)
		products.PUT("/:id", catalogHandler.UpdateProduct)
		products.DELETE("/:id", catalogHandler.DeleteProduct)
	}

	return router
}
