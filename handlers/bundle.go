package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	JWTSecret []byte

	Health gin.HandlerFunc

	// Appointment endpoints
	CheckAvailability gin.HandlerFunc
	NextSlot          gin.HandlerFunc
	CreateAppointment gin.HandlerFunc
	CancelAppointment gin.HandlerFunc
	RecordHealthEvent gin.HandlerFunc
	SubjectHistory    gin.HandlerFunc

	// Quota endpoints
	GetQuota        gin.HandlerFunc
	OpenQuotaPeriod gin.HandlerFunc
	ResetQuota      gin.HandlerFunc

	// Admin endpoints
	ListJobs gin.HandlerFunc
	RunJob   gin.HandlerFunc

	// Public webhooks
	WhatsAppVerify  gin.HandlerFunc
	WhatsAppReceive gin.HandlerFunc
	StripeWebhook   gin.HandlerFunc
}
