package handlers

import (
	"net/http"
	"time"

	"vetflow/middleware"
	"vetflow/models"
	"vetflow/services/booking"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewAppointmentHandler(service booking.BookingService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: service, Logger: logger}
}

type availabilityRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// CheckAvailability validates a date and time without booking. An
// unavailable slot is a 200 with valid=false and an alternative.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}
	availability, err := h.Service.CheckAvailability(c.Request.Context(), middleware.TenantID(c), req.Date, req.Time)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":       availability.Validation.Valid,
		"reason":      availability.Validation.Reason,
		"requested":   availability.Requested,
		"alternative": availability.Alternative,
	})
}

// NextSlot returns the first free slot at or after ?from (RFC3339, default now).
func (h *AppointmentHandler) NextSlot(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONErrorCode(c, http.StatusBadRequest, CodeInvalidDatetime, "Invalid from parameter", err.Error())
			return
		}
		from = parsed
	}
	slot, found, err := h.Service.NextSlot(c.Request.Context(), middleware.TenantID(c), from)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "slot": slot})
}

// Create books an appointment, or answers 200 valid=false with an alternative.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req booking.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}
	req.TenantID = middleware.TenantID(c)
	req.Source = models.SourceAPI

	outcome, err := h.Service.RequestAppointment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if outcome.Valid {
		status = http.StatusCreated
	}
	c.JSON(status, outcome)
}

// Cancel cancels a booking and queues the customer notice.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	b, err := h.Service.CancelAppointment(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RecordHealthEvent stores a health record and schedules its follow-up reminder.
func (h *AppointmentHandler) RecordHealthEvent(c *gin.Context) {
	var record models.HealthRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}
	record.ID = ""
	record.TenantID = middleware.TenantID(c)

	result, err := h.Service.RecordHealthEvent(c.Request.Context(), record)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SubjectHistory returns a subject's health history for the caller's tenant.
func (h *AppointmentHandler) SubjectHistory(c *gin.Context) {
	history, err := h.Service.SubjectHistory(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
