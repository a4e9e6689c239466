package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brista-coffee/helpers"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_role")) })
	r.GET("/x", handlers...)
	return r
}

func TestAuthentication(t *testing.T) {
	router := newRouter(Authentication("s3cret"), RequireRole(helpers.RoleAdmin))
	admin, _ := helpers.GenerateStaffToken("s3cret", "Ada", "u1", helpers.RoleAdmin, time.Hour)
	kitchen, _ := helpers.GenerateStaffToken("s3cret", "Kit", "u2", helpers.RoleKitchen, time.Hour)
	forged, _ := helpers.GenerateStaffToken("other", "Eve", "u3", helpers.RoleAdmin, time.Hour)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"forged", forged, http.StatusUnauthorized},
		{"wrong role", kitchen, http.StatusForbidden},
		{"admin", admin, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.token != "" {
			req.Header.Set("token", tc.token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	router := newRouter(NewRateLimiter(2).Limit())
	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", w.Code)
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5)
	router := newRouter(rl.Limit())
	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	if n := rl.visitorCount(); n != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", n)
	}

	if removed := rl.Sweep(time.Now()); removed != 0 {
		t.Fatalf("fresh clients must stay, removed %d", removed)
	}
	if removed := rl.Sweep(time.Now().Add(visitorTTL + time.Second)); removed != 2 {
		t.Fatalf("expected both idle clients removed, got %d", removed)
	}
	if n := rl.visitorCount(); n != 0 {
		t.Fatalf("expected no tracked clients, got %d", n)
	}
}

func TestRateLimiterCleanupStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(5)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Cleanup(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
