package handlers

import (
	"net/http"

	"vetflow/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency probe.
func HealthHandler(status func() utils.HealthStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := status()
		code := http.StatusOK
		state := "ok"
		if !s.CheckedAt.IsZero() && !s.Healthy() {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "dependencies": s})
	}
}
