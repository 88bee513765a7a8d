package routes

import (
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/proplayhub/backend/chat"
	"github.com/proplayhub/backend/controllers"
	"github.com/proplayhub/backend/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(hub *chat.Hub) *gin.Engine {
	router := gin.New()

	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// Session middleware carries pending registrations until OTP verification
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "proplayhub-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // set to true behind HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("proplayhub", store))

	// OAuth routes
	auth := router.Group("/auth")
	{
		auth.GET("/google/login", controllers.GoogleLogin)
		auth.GET("/google/callback", controllers.GoogleCallback)
	}

	api := router.Group("/v1")
	{
		initUserRoutes(api)
		initCRMRoutes(api)

		api.GET("/ws/chat", chat.ServeWs(hub))
	}

	return router
}
