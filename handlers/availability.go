package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"counselhub/models"
	"counselhub/services/scheduling"
)

// AvailabilityHandler exposes the provider-facing schedule management
// endpoints: weekly template, dated exceptions and the session policy.
type AvailabilityHandler struct {
	Svc    scheduling.SchedulingService
	Logger *zap.Logger
}

func NewAvailabilityHandler(svc scheduling.SchedulingService, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc, Logger: logger}
}

// SetWeeklyAvailabilityHandler handles PUT /api/providers/:id/availability.
func (h *AvailabilityHandler) SetWeeklyAvailabilityHandler(c *gin.Context) {
	var weekly models.WeeklyAvailability
	if err := c.ShouldBindJSON(&weekly); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	weekly.ProviderID = c.Param("id")

	if err := h.Svc.SetWeeklyAvailability(c.Request.Context(), &weekly); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekly)
}

// GetDayScheduleHandler handles GET /api/providers/:id/availability?date=.
// It returns the resolved schedule for the date, exception applied.
func (h *AvailabilityHandler) GetDayScheduleHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	schedule, err := h.Svc.ResolveDay(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// SetExceptionHandler handles PUT /api/providers/:id/availability/exceptions/:date.
func (h *AvailabilityHandler) SetExceptionHandler(c *gin.Context) {
	var exc models.AvailabilityException
	if err := c.ShouldBindJSON(&exc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	exc.ProviderID = c.Param("id")
	exc.Date = c.Param("date")

	if err := h.Svc.SetException(c.Request.Context(), &exc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exc)
}

// RemoveExceptionHandler handles DELETE /api/providers/:id/availability/exceptions/:date.
func (h *AvailabilityHandler) RemoveExceptionHandler(c *gin.Context) {
	if err := h.Svc.RemoveException(c.Request.Context(), c.Param("id"), c.Param("date")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SetSessionPolicyHandler handles PUT /api/providers/:id/policy.
func (h *AvailabilityHandler) SetSessionPolicyHandler(c *gin.Context) {
	var policy models.SessionPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	policy.ProviderID = c.Param("id")

	if err := h.Svc.SetSessionPolicy(c.Request.Context(), &policy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}
