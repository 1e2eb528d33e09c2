package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": TenantID(c)})
	})
	r.GET("/x", handlers...)
	return r
}

func get(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTenantAuthMiddleware(t *testing.T) {
	r := newRouter(TenantAuthMiddleware(secret, zap.NewNop()))

	good, err := utils.GenerateToken(secret, "t1", "u1", utils.RoleStaff, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	noTenant, _ := utils.GenerateToken(secret, "", "u1", utils.RoleStaff, time.Hour)
	expired, _ := utils.GenerateToken(secret, "t1", "u1", utils.RoleStaff, -time.Hour)
	forged, _ := utils.GenerateToken([]byte("other"), "t1", "u1", utils.RoleStaff, time.Hour)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + good, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + good, http.StatusUnauthorized},
		{"no tenant claim", "Bearer " + noTenant, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, map[string]string{"Authorization": tc.header})
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newRouter(TenantAuthMiddleware(secret, zap.NewNop()), RequireRole(utils.RoleAdmin))

	staff, _ := utils.GenerateToken(secret, "t1", "u1", utils.RoleStaff, time.Hour)
	admin, _ := utils.GenerateToken(secret, "t1", "u2", utils.RoleAdmin, time.Hour)

	if w := get(r, map[string]string{"Authorization": "Bearer " + staff}); w.Code != http.StatusForbidden {
		t.Fatalf("staff status = %d", w.Code)
	}
	if w := get(r, map[string]string{"Authorization": "Bearer " + admin}); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2, zap.NewNop()))
	h := map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}

	for i := 0; i < 2; i++ {
		if w := get(r, h); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	if w := get(r, h); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", w.Code)
	}
	if w := get(r, map[string]string{"X-Real-IP": "10.0.0.9"}); w.Code != http.StatusOK {
		t.Fatalf("other client status = %d", w.Code)
	}
}
