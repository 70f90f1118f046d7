package handler

import (
	"net/http"
	"time"

	"cedarcart/internal/app/shop/config"
	"cedarcart/pkg/logger"
	"cedarcart/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers группирует все обработчики для настройки маршрутов
type Handlers struct {
	User    *UserHandler
	Catalog *CatalogHandler
	Review  *ReviewHandler
	Order   *OrderHandler
	Upload  *UploadHandler
}

// SetupRoutes настраивает все маршруты сервиса с использованием Gin
// Применяет CORS, логирование, метрики и Auth middleware
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "cedarcart",
		})
	})

	// Prometheus метрики
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Загруженные изображения раздаются статически
	router.Static(cfg.Upload.ServePrefix, cfg.Upload.Dir)

	api := router.Group("/api")

	// Users endpoints
	users := api.Group("/users")
	{
		// Публичные: регистрация и вход
		users.POST("", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/logout", h.User.Logout)

		// Профиль текущего пользователя
		users.GET("/profile", authMiddleware.Authenticate(), h.User.GetProfile)
		users.PUT("/profile", authMiddleware.Authenticate(), h.User.UpdateProfile)

		// Управление пользователями только для admin
		admin := users.Group("", authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
		{
			admin.GET("", h.User.GetAllUsers)
			admin.GET("/:id", h.User.GetUser)
			admin.PUT("/:id", h.User.UpdateUser)
			admin.DELETE("/:id", h.User.DeleteUser)
			admin.PATCH("/:id/role", h.User.ChangeRole)
		}
	}

	// Categories endpoints
	category := api.Group("/category")
	{
		// Чтение публичное (кеш Redis)
		category.GET("", h.Catalog.GetAllCategories)
		category.GET("/:id", h.Catalog.GetCategory)

		// Запись только для admin
		category.POST("", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.CreateCategory)
		category.PUT("/:id", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.UpdateCategory)
		category.DELETE("/:id", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.DeleteCategory)
	}

	// Products endpoints
	products := api.Group("/products")
	{
		// Чтение публичное
		products.GET("", h.Catalog.GetProducts)
		products.GET("/all", h.Catalog.GetAllProducts)
		products.GET("/top", h.Catalog.GetTopProducts)
		products.GET("/new", h.Catalog.GetNewProducts)
		products.POST("/filtered", h.Catalog.GetFilteredProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.GET("/:id/reviews", h.Review.GetProductReviews)

		// Отзыв может оставить любой аутентифицированный пользователь
		products.POST("/:id/reviews", authMiddleware.Authenticate(), h.Review.CreateReview)

		// Запись только для admin
		products.POST("", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.CreateProduct)
		products.PUT("/:id", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.UpdateProduct)
		products.DELETE("/:id", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Catalog.DeleteProduct)
	}

	// Orders endpoints - все требуют аутентификации
	orders := api.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("/mine", h.Order.GetMyOrders)

		// Админские маршруты; статические пути раньше /:id
		orders.GET("", authMiddleware.RequireAdmin(), h.Order.GetAllOrders)
		orders.GET("/total-sales", authMiddleware.RequireAdmin(), h.Order.GetTotalSales)
		orders.GET("/total-sales-by-date", authMiddleware.RequireAdmin(), h.Order.GetSalesByDate)

		orders.GET("/:id", h.Order.GetOrder)
		orders.PUT("/:id/pay", authMiddleware.RequireAdmin(), h.Order.MarkPaid)
		orders.PUT("/:id/deliver", authMiddleware.RequireAdmin(), h.Order.MarkDelivered)
	}

	// Загрузка изображений только для admin
	api.POST("/upload", authMiddleware.Authenticate(), authMiddleware.RequireAdmin(), h.Upload.Upload)

	return router
}
