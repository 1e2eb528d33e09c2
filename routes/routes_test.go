package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vetflow/handlers"
	"vetflow/middleware"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var secret = []byte("routes-secret")

func echo(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"route": name, "tenant": middleware.TenantID(c)})
	}
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	hb := &handlers.HandlerBundle{
		JWTSecret:         secret,
		Health:            echo("health"),
		CheckAvailability: echo("availability"),
		NextSlot:          echo("next-slot"),
		CreateAppointment: echo("create"),
		CancelAppointment: echo("cancel"),
		RecordHealthEvent: echo("health-record"),
		SubjectHistory:    echo("subject-history"),
		GetQuota:          echo("quota"),
		OpenQuotaPeriod:   echo("quota-period"),
		ResetQuota:        echo("quota-reset"),
		ListJobs:          echo("jobs"),
		RunJob:            echo("run-job"),
		WhatsAppVerify:    echo("wa-verify"),
		WhatsAppReceive:   echo("wa-receive"),
		StripeWebhook:     echo("stripe"),
	}
	r := gin.New()
	RegisterRoutes(r, hb, zap.NewNop())
	return r
}

func request(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	r := newEngine()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/api/whatsapp/webhook"},
		{http.MethodPost, "/api/whatsapp/webhook"},
		{http.MethodPost, "/api/stripe/webhook"},
	} {
		if code := request(r, tc.method, tc.path, ""); code != http.StatusOK {
			t.Errorf("%s %s = %d", tc.method, tc.path, code)
		}
	}
}

func TestTenantRoutesRequireToken(t *testing.T) {
	r := newEngine()
	staff, err := utils.GenerateToken(secret, "t1", "u1", utils.RoleStaff, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	admin, _ := utils.GenerateToken(secret, "t1", "u2", utils.RoleAdmin, time.Hour)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/appointments/availability"},
		{http.MethodGet, "/api/appointments/next-slot"},
		{http.MethodPost, "/api/appointments"},
		{http.MethodPost, "/api/appointments/b1/cancel"},
		{http.MethodPost, "/api/health-records"},
		{http.MethodGet, "/api/subjects/s1/history"},
		{http.MethodGet, "/api/quota"},
		{http.MethodPost, "/api/quota/period"},
		{http.MethodPost, "/api/quota/reset"},
	}
	for _, tc := range routes {
		if code := request(r, tc.method, tc.path, ""); code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d", tc.method, tc.path, code)
		}
		if code := request(r, tc.method, tc.path, staff); code != http.StatusOK {
			t.Errorf("%s %s with token = %d", tc.method, tc.path, code)
		}
	}

	if code := request(r, http.MethodPost, "/api/admin/jobs/generic_reminders/run", staff); code != http.StatusForbidden {
		t.Errorf("admin route as staff = %d", code)
	}
	if code := request(r, http.MethodPost, "/api/admin/jobs/generic_reminders/run", admin); code != http.StatusOK {
		t.Errorf("admin route as admin = %d", code)
	}
}
