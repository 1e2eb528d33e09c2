package handlers

import (
	"net/http"

	"vetflow/middleware"
	"vetflow/services/quota"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
)

type QuotaHandler struct {
	Ledger quota.Ledger
}

func NewQuotaHandler(ledger quota.Ledger) *QuotaHandler {
	return &QuotaHandler{Ledger: ledger}
}

// Get returns the tenant's active period and what an unknown-contact reply
// would draw from.
func (h *QuotaHandler) Get(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	period, err := h.Ledger.Snapshot(c.Request.Context(), tenantID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	check, err := h.Ledger.Check(c.Request.Context(), tenantID, false)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "check": check})
}

// OpenPeriod starts a period on the given plan.
func (h *QuotaHandler) OpenPeriod(c *gin.Context) {
	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONErrorCode(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}
	period, err := h.Ledger.OpenPeriod(c.Request.Context(), middleware.TenantID(c), req.Plan)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// Reset restarts the current period with zero metered usage.
func (h *QuotaHandler) Reset(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	if err := h.Ledger.ResetPeriod(c.Request.Context(), tenantID); err != nil {
		writeServiceError(c, err)
		return
	}
	period, err := h.Ledger.Snapshot(c.Request.Context(), tenantID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}
