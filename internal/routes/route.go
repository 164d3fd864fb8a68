package routes

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatherly/internal/container"
	"github.com/joshua-takyi/gatherly/internal/handlers"
	"github.com/joshua-takyi/gatherly/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(c.Config.FrontendURL, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	secure := c.Config.IsProduction()

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health())

		// public routes
		auth := v1.Group("/", middleware.RateLimit(1, 10))
		auth.POST("/signup", handlers.CreateUser(c.UserService))
		auth.POST("/login", handlers.AuthenticateUser(c.UserService, secure))
		v1.POST("/logout", handlers.Logout(secure))

		v1.GET("/interests", handlers.ListInterests(c.UserService))
		v1.GET("/events/search", handlers.SearchEvents(c.DiscoveryService))
		v1.GET("/groups/:id", handlers.GetGroup(c.GroupService))
		v1.GET("/albums/:id", handlers.GetAlbum(c.AlbumService))

		v1.GET("/reminders/upcoming", middleware.CronAuth(c.Config.CronSecret), handlers.SendReminders(c.ReminderService))
	}

	requireAuth := middleware.AuthMiddleware(c.TokenValidator, c.UserService, c.GroupService, secure, c.Logger)

	protected := v1.Group("/", requireAuth)
	{
		protected.GET("/profile", handlers.GetProfile(c.UserService))
		protected.PATCH("/profile", handlers.UpdateProfile(c.UserService))

		protected.POST("/groups", handlers.CreateGroup(c.GroupService))
		protected.POST("/groups/:id/albums", handlers.CreateAlbum(c.AlbumService))
		protected.DELETE("/albums/:id", handlers.DeleteAlbum(c.AlbumService))

		protected.POST("/checkout/sessions", handlers.CreateCheckoutSession(c.CheckoutService))
		protected.GET("/checkout/verify", handlers.VerifyCheckout(c.CheckoutService))

		protected.POST("/payments/archive", handlers.ArchiveProduct(c.PaymentsService))
		protected.POST("/payments/revenue", handlers.Revenue(c.PaymentsService))

		protected.POST("/scrape", middleware.RateLimit(0.2, 2), handlers.Scrape(c.ScrapeService))
	}

	events := v1.Group("/events")
	{
		events.GET("/:id", handlers.GetEvent(c.DiscoveryService))

		authed := events.Group("", requireAuth)
		authed.GET("/recommended", handlers.RecommendedEvents(c.DiscoveryService))
		authed.POST("", handlers.CreateEvent(c.EventService))
		authed.PATCH("/:id", handlers.UpdateEvent(c.EventService))
		authed.GET("/:id/attendance", handlers.AttendanceStatus(c.AttendanceService))
		authed.POST("/:id/attendance", handlers.JoinEvent(c.AttendanceService))
		authed.DELETE("/:id/attendance", handlers.LeaveEvent(c.AttendanceService))
		authed.POST("/:id/checkout", handlers.StartEventCheckout(c.CheckoutService))
	}

	return r
}
