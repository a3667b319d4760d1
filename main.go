package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/controllers"
	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/middlewares"
	"github.com/SpiritConnect/services"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectDB()
	services.InitPushNotificationService()
	services.InitEmailService()
}

func main() {
	router := gin.Default()

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.GET("/ping", middlewares.RateLimitMiddleware(5, 5, getKey), controllers.Ping)

	router.POST("/signup", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.PublicUserSignup)
	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.UserLogin)

	router.POST("/auth/forgot-password", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.ForgotPassword)
	router.POST("/auth/reset-password", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.ResetPassword)

	// Public prayer wall
	router.GET("/prayers", controllers.ListPrayerRequests)
	router.GET("/prayers/:prayer_id", controllers.GetPrayerRequest)

	// Anonymous submissions and responses are allowed; a supplied token is
	// still verified.
	optional := router.Group("/")
	optional.Use(middlewares.OptionalAuth)
	{
		optional.POST("/prayers", controllers.CreatePrayerRequest)
		optional.POST("/prayers/:prayer_id/responses", controllers.RecordPrayerResponse)
		optional.GET("/prayers/:prayer_id/responses", controllers.ListPrayerResponses)
		optional.GET("/prayers/:prayer_id/responses/summary", controllers.GetResponseSummary)
	}

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(10, 10, getKey))
	{
		auth.GET("/users/me", controllers.GetCurrentUser)
		auth.PATCH("/users/me", controllers.UpdateUserProfile)
		auth.PATCH("/users/me/password", controllers.ChangeUserPassword)
		auth.DELETE("/users/me", controllers.DeactivateUserAccount)

		auth.POST("/users/push-token", controllers.StorePushToken)
		auth.GET("/users/me/notifications", controllers.GetUserNotifications)

		auth.POST("/prayers/:prayer_id/status", controllers.AdvancePrayerStatus)

		admin := auth.Group("/admin")
		admin.Use(middlewares.CheckAdmin)
		{
			admin.GET("/stats", controllers.GetDashboardStats)
			admin.GET("/users", controllers.ListUsers)
		}
	}

	if err := router.Run(); err != nil {
		log.Fatal(err)
	}
}
