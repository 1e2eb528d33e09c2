package handlers

import (
	"context"
	"errors"
	"net/http"

	"vetflow/cron"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
)

// JobRunner triggers scheduled jobs on demand.
type JobRunner interface {
	RunNow(ctx context.Context, name string) error
	Jobs() []string
}

type AdminHandler struct {
	Jobs JobRunner
}

func NewAdminHandler(jobs JobRunner) *AdminHandler {
	return &AdminHandler{Jobs: jobs}
}

// ListJobs returns the registered job names.
func (h *AdminHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.Jobs.Jobs()})
}

// RunJob runs the named job synchronously.
func (h *AdminHandler) RunJob(c *gin.Context) {
	name := c.Param("name")
	err := h.Jobs.RunNow(c.Request.Context(), name)
	switch {
	case errors.Is(err, cron.ErrUnknownJob):
		utils.JSONErrorCode(c, http.StatusNotFound, CodeNotFound, "Unknown job", name)
	case errors.Is(err, cron.ErrJobRunning):
		utils.JSONErrorCode(c, http.StatusConflict, CodeConflict, "Job is already running", name)
	case errors.Is(err, cron.ErrStopped):
		utils.JSONErrorCode(c, http.StatusServiceUnavailable, CodeUnavailable, "Scheduler is shutting down", name)
	case err != nil:
		utils.JSONErrorCode(c, http.StatusInternalServerError, CodeInternal, "Job failed", err.Error())
	default:
		c.JSON(http.StatusOK, gin.H{"job": name, "status": "completed"})
	}
}
