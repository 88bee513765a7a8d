package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/controllers"
	"github.com/proplayhub/backend/middleware"
)

// initUserRoutes initializes all customer-facing routes
func initUserRoutes(router *gin.RouterGroup) {
	// Auth
	router.POST("/register", controllers.RegisterUser)
	router.POST("/verify-otp", controllers.VerifyOTP)
	router.POST("/login", controllers.LoginUser)
	router.POST("/refresh", controllers.RefreshToken)
	router.POST("/logout", controllers.Logout)

	// Public catalog
	router.GET("/packages", controllers.GetPackages)
	router.GET("/packages/:slug", controllers.GetPackageBySlug)
	router.GET("/packages/recommended", controllers.GetRecommendedPackages)
	router.GET("/discounts/validate", controllers.ValidateDiscount)

	// Protected routes (require authentication)
	protected := router.Group("/user")
	protected.Use(middleware.AuthMiddleware())
	{
		// Profile
		protected.GET("/profile", controllers.GetProfile)
		protected.PUT("/profile", controllers.UpdateProfile)
		protected.PUT("/profile/password", controllers.ChangePassword)
		protected.POST("/profile/push-token", controllers.RegisterPushToken)

		// Cart operations
		protected.POST("/cart/add", controllers.AddToCart)
		protected.GET("/cart", controllers.GetCart)
		protected.PUT("/cart/:id", controllers.UpdateCartItem)
		protected.DELETE("/cart/:id", controllers.RemoveFromCart)
		protected.DELETE("/cart", controllers.ClearCart)

		// Discounts
		protected.POST("/discounts/apply", controllers.ApplyDiscount)

		// Checkout and subscriptions
		protected.POST("/subscriptions", controllers.CreateSubscription)
		protected.GET("/subscriptions", controllers.ListMySubscriptions)
		protected.POST("/subscriptions/:id/cancel", controllers.CancelSubscription)
		protected.POST("/subscriptions/upgrade", controllers.UpgradeAddons)
		protected.GET("/subscriptions/:id/invoice", controllers.DownloadSubscriptionInvoice)

		// Gateway payments
		protected.POST("/payment/initiate", controllers.InitiateSubscriptionPayment)
		protected.POST("/payment/verify", controllers.VerifySubscriptionPayment)

		// Achievements
		protected.GET("/achievements", controllers.GetMyAchievements)

		// Notifications
		protected.GET("/notifications", controllers.GetNotifications)
		protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
		protected.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)
		protected.DELETE("/notifications/:id", controllers.DeleteNotification)
	}
}
