package handlers

import (
	"errors"
	"net/http"

	"vetflow/database/repository"
	"vetflow/services/booking"
	"vetflow/services/quota"
	"vetflow/services/scheduling"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidDatetime = "invalid_datetime"
	CodeValidation      = "validation_error"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeUnknownPlan     = "unknown_plan"
	CodeNoPeriod        = "no_active_period"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal_error"
)

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var (
		invalid *scheduling.InvalidInputError
		verr    *booking.ValidationError
		perr    *quota.PlanError
	)
	switch {
	case errors.As(err, &invalid):
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeInvalidDatetime, "Invalid date or time", invalid.Error())
	case errors.As(err, &verr):
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeValidation, "Invalid request", verr.Message)
	case errors.As(err, &perr):
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeUnknownPlan, "Unknown plan or pack", perr.Message)
	case errors.Is(err, repository.ErrNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, CodeNotFound, "Not found", err.Error())
	case errors.Is(err, quota.ErrNoActivePeriod):
		utils.JSONErrorCode(c, http.StatusNotFound, CodeNoPeriod, "No active quota period", err.Error())
	case errors.Is(err, booking.ErrNotCancellable):
		utils.JSONErrorCode(c, http.StatusConflict, CodeConflict, "Booking cannot be cancelled", err.Error())
	default:
		utils.JSONErrorCode(c, http.StatusInternalServerError, CodeInternal, "Internal Server Error", err.Error())
	}
}
