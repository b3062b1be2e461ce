package routes

import (
	"net/http"
	"time"

	"campusbook/handlers"
	"campusbook/middleware"
	"campusbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the route handlers wired in main.
type HandlerBundle struct {
	Appointments *handlers.AppointmentHandler
	Usernames    *handlers.UsernameHandler
	Slots        *handlers.SlotsHandler
	Permits      *handlers.PermitHandler
	Users        *handlers.UserHandler
}

// RegisterAppointmentRoutes registers the booking lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	api.Use(middleware.FirebaseAuthMiddleware())
	{
		api.POST("", hb.Appointments.CreateAppointmentHandler)
		api.GET("", hb.Appointments.ListMyAppointmentsHandler)
		api.PUT("/:id", hb.Appointments.RescheduleAppointmentHandler)
		api.PATCH("/:id/cancel", hb.Appointments.CancelAppointmentHandler)
		api.DELETE("/:id", hb.Appointments.DeleteAppointmentHandler)

		// Staff transitions.
		api.PATCH("/:id/pay",
			middleware.RequireRole(models.RoleCashier, models.RoleAdmin),
			hb.Appointments.PayAppointmentHandler)
		api.PATCH("/:id/approve",
			middleware.RequireRole(models.RoleAdmin),
			hb.Appointments.ApproveAppointmentHandler)
		api.PATCH("/:id/reject",
			middleware.RequireRole(models.RoleAdmin),
			hb.Appointments.RejectAppointmentHandler)
	}
}

// RegisterUsernameRoutes registers the unique-handle endpoints. The email
// lookup is public; reserve/release require authentication.
func RegisterUsernameRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/usernames")
	{
		api.GET("/:username/email", hb.Usernames.LookupEmailHandler)

		protected := api.Group("")
		protected.Use(middleware.FirebaseAuthMiddleware())
		protected.POST("", hb.Usernames.ReserveUsernameHandler)
		protected.DELETE("/:username", hb.Usernames.ReleaseUsernameHandler)
	}
}

// RegisterSlotRoutes registers the availability read surface.
func RegisterSlotRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/slots")
	api.Use(middleware.FirebaseAuthMiddleware())
	{
		api.GET("", hb.Slots.GetAvailabilityHandler)
	}
}

// RegisterUserRoutes registers provisioning and device registration.
func RegisterUserRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.FirebaseAuthMiddleware())
	{
		api.POST("/provision", hb.Users.ProvisionHandler)
		api.PUT("/fcm-token", hb.Users.UpdateFCMTokenHandler)
	}
}

// RegisterAdminRoutes registers admin-only endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.FirebaseAuthMiddleware())
	api.Use(middleware.RequireRole(models.RoleAdmin))
	{
		api.POST("/permits", hb.Permits.UploadPermitHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Campusbook"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAppointmentRoutes(r, hb)
	RegisterUsernameRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
