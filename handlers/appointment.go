package handlers

import (
	"errors"
	"net/http"

	"campusbook/services/appointment"
	"campusbook/services/ledger"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler exposes the appointment lifecycle endpoints.
type AppointmentHandler struct {
	Svc appointment.Service
}

// NewAppointmentHandler creates a new AppointmentHandler instance.
func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc}
}

// CreateAppointmentRequest is the booking payload.
type CreateAppointmentRequest struct {
	Date          string `json:"date" binding:"required"`
	Window        string `json:"window" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

// RescheduleRequest moves an appointment to a new slot.
type RescheduleRequest struct {
	Date   string `json:"date" binding:"required"`
	Window string `json:"window" binding:"required"`
}

// CreateAppointmentHandler books a slot for the authenticated caller.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	appt, err := h.Svc.Create(c, c.GetString("uid"), req.Date, req.Window, req.PaymentMethod)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointmentId": appt.ID, "appointment": appt})
}

// ListMyAppointmentsHandler returns the caller's appointments.
func (h *AppointmentHandler) ListMyAppointmentsHandler(c *gin.Context) {
	appts, err := h.Svc.ListForUser(c, c.GetString("uid"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// RescheduleAppointmentHandler moves the caller's appointment to a new slot.
func (h *AppointmentHandler) RescheduleAppointmentHandler(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	appt, err := h.Svc.Reschedule(c, c.GetString("uid"), c.Param("id"), req.Date, req.Window)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// CancelAppointmentHandler marks the caller's appointment CANCELLED.
func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	appt, err := h.Svc.Cancel(c, c.GetString("uid"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// DeleteAppointmentHandler removes the caller's appointment entirely.
func (h *AppointmentHandler) DeleteAppointmentHandler(c *gin.Context) {
	if err := h.Svc.Delete(c, c.GetString("uid"), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PayAppointmentHandler is the cashier's PENDING→PAID transition.
func (h *AppointmentHandler) PayAppointmentHandler(c *gin.Context) {
	appt, err := h.Svc.MarkPaid(c, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// ApproveAppointmentHandler is the admin's PAID→APPROVED transition.
func (h *AppointmentHandler) ApproveAppointmentHandler(c *gin.Context) {
	appt, err := h.Svc.Approve(c, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// RejectAppointmentHandler marks an appointment REJECTED.
func (h *AppointmentHandler) RejectAppointmentHandler(c *gin.Context) {
	appt, err := h.Svc.Reject(c, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// writeError maps service failures onto the HTTP error taxonomy.
func (h *AppointmentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrDateInPast),
		errors.Is(err, appointment.ErrInvalidWindow):
		utils.JSONError(c, http.StatusBadRequest, "invalid argument", err.Error())
	case errors.Is(err, appointment.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, appointment.ErrNotOwner):
		utils.JSONError(c, http.StatusForbidden, "permission denied", err.Error())
	case errors.Is(err, appointment.ErrAlreadyBooked):
		utils.JSONError(c, http.StatusConflict, "already booked", err.Error())
	case errors.Is(err, appointment.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid status transition", err.Error())
	case errors.Is(err, appointment.ErrTooManyActive),
		errors.Is(err, ledger.ErrSlotFull):
		utils.JSONError(c, http.StatusConflict, "resource exhausted", err.Error())
	case errors.Is(err, ledger.ErrSourceSlotMissing):
		utils.JSONError(c, http.StatusInternalServerError, "ledger inconsistency", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
