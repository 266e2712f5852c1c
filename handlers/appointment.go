package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"counselhub/middleware"
	"counselhub/models"
	"counselhub/services/scheduling"
)

// AppointmentHandler exposes slot listing, booking and the lifecycle
// actions.
type AppointmentHandler struct {
	Svc    scheduling.SchedulingService
	Logger *zap.Logger
}

func NewAppointmentHandler(svc scheduling.SchedulingService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc, Logger: logger}
}

// actorFrom reads the acting identity placed on the context by
// ActorAuthMiddleware.
func actorFrom(c *gin.Context) models.Actor {
	return models.Actor{
		ID:   c.GetString(middleware.ActorIDKey),
		Role: c.GetString(middleware.ActorRoleKey),
	}
}

// GetAvailableSlotsHandler handles
// GET /api/providers/:id/available-slots?date=&duration=.
func (h *AppointmentHandler) GetAvailableSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive integer"})
			return
		}
		duration = parsed
	}

	slots, err := h.Svc.FreeSlots(c.Request.Context(), c.Param("id"), date, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// CreateAppointmentHandler handles POST /api/appointments.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var req models.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Svc.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// statusActionRequest is the PATCH payload for lifecycle actions.
type statusActionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// UpdateAppointmentStatusHandler handles PATCH /api/appointments/:id with
// an action of confirm, cancel, complete or no_show.
func (h *AppointmentHandler) UpdateAppointmentStatusHandler(c *gin.Context) {
	var req statusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	id := c.Param("id")
	actor := actorFrom(c)
	ctx := c.Request.Context()

	var appt *models.Appointment
	var err error
	switch req.Action {
	case "confirm":
		appt, err = h.Svc.Confirm(ctx, id, actor)
	case "cancel":
		appt, err = h.Svc.Cancel(ctx, id, actor, req.Reason)
	case "complete":
		appt, err = h.Svc.Complete(ctx, id, actor)
	case "no_show":
		appt, err = h.Svc.MarkNoShow(ctx, id, actor, req.Reason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action, expected confirm, cancel, complete or no_show"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// AttachFeedbackHandler handles POST /api/appointments/:id/feedback.
func (h *AppointmentHandler) AttachFeedbackHandler(c *gin.Context) {
	var fb models.AppointmentFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Svc.AttachFeedback(c.Request.Context(), c.Param("id"), actorFrom(c), fb)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GetAppointmentHandler handles GET /api/appointments/:id.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	appt, err := h.Svc.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// ListAppointmentsHandler handles GET /api/appointments with filters.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	filter := models.AppointmentFilter{
		ProviderID: c.Query("providerId"),
		SubjectID:  c.Query("subjectId"),
		Date:       c.Query("date"),
		Status:     c.Query("status"),
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = parsed
	}

	appts, err := h.Svc.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
}
