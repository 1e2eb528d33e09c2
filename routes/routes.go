package routes

import (
	"time"

	"vetflow/handlers"
	"vetflow/middleware"
	"vetflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterAppointmentRoutes registers the booking engine endpoints.
func RegisterAppointmentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	appointments := api.Group("/appointments")
	{
		appointments.POST("/availability", hb.CheckAvailability)
		appointments.GET("/next-slot", hb.NextSlot)
		appointments.POST("", hb.CreateAppointment)
		appointments.POST("/:id/cancel", hb.CancelAppointment)
	}
	api.POST("/health-records", hb.RecordHealthEvent)
	api.GET("/subjects/:id/history", hb.SubjectHistory)
}

// RegisterQuotaRoutes registers the response-quota endpoints.
func RegisterQuotaRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	q := api.Group("/quota")
	{
		q.GET("", hb.GetQuota)
		q.POST("/period", hb.OpenQuotaPeriod)
		q.POST("/reset", hb.ResetQuota)
	}
}

// RegisterAdminRoutes registers operator endpoints.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	{
		admin.Use(middleware.RequireRole(utils.RoleAdmin))
		admin.GET("/jobs", hb.ListJobs)
		admin.POST("/jobs/:name/run", hb.RunJob)
	}
}

// RegisterWebhookRoutes registers the public provider callbacks.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/whatsapp/webhook", hb.WhatsAppVerify)
	r.POST("/api/whatsapp/webhook", hb.WhatsAppReceive)
	r.POST("/api/stripe/webhook", hb.StripeWebhook)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterWebhookRoutes(r, hb)

	api := r.Group("/api")
	api.Use(middleware.TenantAuthMiddleware(hb.JWTSecret, logger))
	RegisterAppointmentRoutes(api, hb)
	RegisterQuotaRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
