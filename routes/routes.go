package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"counselhub/handlers"
	"counselhub/middleware"
	"counselhub/utils"
)

// HandlerBundle collects the handlers wired in main.
type HandlerBundle struct {
	Appointments *handlers.AppointmentHandler
	Availability *handlers.AvailabilityHandler
}

// RegisterRoutes mounts all engine endpoints on the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})

	providers := r.Group("/api/providers")
	{
		// Slot listing is an advisory read; no authentication needed.
		providers.GET("/:id/available-slots", hb.Appointments.GetAvailableSlotsHandler)
		providers.GET("/:id/availability", hb.Availability.GetDayScheduleHandler)

		// Schedule management requires an authenticated actor.
		protected := providers.Group("")
		protected.Use(middleware.ActorAuthMiddleware())
		protected.PUT("/:id/availability", hb.Availability.SetWeeklyAvailabilityHandler)
		protected.PUT("/:id/availability/exceptions/:date", hb.Availability.SetExceptionHandler)
		protected.DELETE("/:id/availability/exceptions/:date", hb.Availability.RemoveExceptionHandler)
		protected.PUT("/:id/policy", hb.Availability.SetSessionPolicyHandler)
	}

	appointments := r.Group("/api/appointments")
	appointments.Use(middleware.ActorAuthMiddleware())
	{
		appointments.POST("", hb.Appointments.CreateAppointmentHandler)
		appointments.GET("", hb.Appointments.ListAppointmentsHandler)
		appointments.GET("/:id", hb.Appointments.GetAppointmentHandler)
		appointments.PATCH("/:id", hb.Appointments.UpdateAppointmentStatusHandler)
		appointments.POST("/:id/feedback", hb.Appointments.AttachFeedbackHandler)
	}
}
