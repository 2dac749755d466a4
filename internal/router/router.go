// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ahianova/ahianova-backend/internal/config"
	"github.com/ahianova/ahianova-backend/internal/handlers"
	"github.com/ahianova/ahianova-backend/internal/middleware"
	"github.com/ahianova/ahianova-backend/internal/services"
	"github.com/ahianova/ahianova-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Core engine: stock ledger, rating aggregation, write-path coordinator.
	stockService := services.NewStockService(db)
	ratingService := services.NewRatingService(db)
	coordinator := services.NewCoordinator(ratingService)

	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg)
	farmerService := services.NewFarmerService(db)
	categoryService := services.NewCategoryService(db)
	productService := services.NewProductService(db, stockService)
	orderService := services.NewOrderService(db, stockService)
	paymentService := services.NewPaymentService(db, cfg, orderService)
	reviewService := services.NewReviewService(db, coordinator)
	adminService := services.NewAdminService(db)

	authHandler := handlers.NewAuthHandler(authService)
	farmerHandler := handlers.NewFarmerHandler(farmerService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, productService)
	productHandler := handlers.NewProductHandler(productService, farmerService, stockService)
	orderHandler := handlers.NewOrderHandler(orderService, farmerService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService, farmerService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	adminHandler := handlers.NewAdminHandler(adminService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/profile", authHandler.GetProfile)
			users.PUT("/profile", authHandler.UpdateProfile)
			users.PUT("/password", authHandler.ChangePassword)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/featured", categoryHandler.GetFeaturedCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.GET("/:id/products", categoryHandler.GetCategoryProducts)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/top-selling", productHandler.GetTopSellingProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/reviews", reviewHandler.GetProductReviews)

			products.POST("", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.DeleteProduct)
			products.POST("/:id/restock", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.RestockProduct)
			products.PUT("/:id/seasonal", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.SetSeasonal)
		}

		farmers := v1.Group("/farmers")
		{
			farmers.GET("", farmerHandler.GetFarmers)
			farmers.GET("/top-rated", farmerHandler.GetTopRatedFarmers)

			farmers.POST("", middleware.AuthRequired(), farmerHandler.CreateProfile)
			farmers.GET("/me", middleware.AuthRequired(), middleware.FarmerRequired(), farmerHandler.GetMyProfile)
			farmers.GET("/me/products", middleware.AuthRequired(), middleware.FarmerRequired(), productHandler.GetMyProducts)
			farmers.GET("/me/orders", middleware.AuthRequired(), middleware.FarmerRequired(), orderHandler.GetFarmerOrders)

			farmers.GET("/:id", farmerHandler.GetFarmer)
			farmers.GET("/:id/reviews", reviewHandler.GetFarmerReviews)
			farmers.PUT("/:id", middleware.AuthRequired(), middleware.FarmerRequired(), farmerHandler.UpdateProfile)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", paymentHandler.HandleWebhook)

			authed := payments.Group("")
			authed.Use(middleware.AuthRequired())
			{
				authed.POST("/intent", paymentHandler.CreatePaymentIntent)
				authed.POST("/confirm", paymentHandler.ConfirmPayment)
				authed.GET("", paymentHandler.GetPaymentHistory)
				authed.GET("/:id", paymentHandler.GetPayment)
			}
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:id", reviewHandler.GetReview)

			authed := reviews.Group("")
			authed.Use(middleware.AuthRequired())
			{
				authed.POST("", reviewHandler.CreateReview)
				authed.PUT("/:id", reviewHandler.UpdateReview)
				authed.DELETE("/:id", reviewHandler.DeleteReview)
				authed.POST("/:id/helpful", reviewHandler.MarkHelpful)
				authed.DELETE("/:id/helpful", reviewHandler.UnmarkHelpful)
				authed.POST("/:id/respond", middleware.FarmerRequired(), reviewHandler.RespondToReview)
				authed.POST("/:id/report", reviewHandler.ReportReview)
			}
		}

		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired(), middleware.UploadRateLimit())
		{
			uploads.POST("", uploadHandler.UploadFile)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboardStats)

			admin.POST("/categories", categoryHandler.CreateCategory)
			admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

			admin.PATCH("/farmers/:id/verify", farmerHandler.VerifyFarmer)
			admin.PATCH("/farmers/:id/status", farmerHandler.SetFarmerStatus)

			admin.POST("/products/:id/stock-debit", productHandler.DebitStock)

			admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
			admin.POST("/payments/refund", paymentHandler.ProcessRefund)

			admin.GET("/reviews/reported", reviewHandler.GetReportedReviews)
			admin.PATCH("/reviews/:id/moderate", reviewHandler.ModerateReview)
		}
	}

	return r
}
