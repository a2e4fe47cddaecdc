package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/realcpa-hub/internal/authz"
	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	cases := []struct {
		name   string
		cfg    config.CORSConfig
		origin string
		want   string
	}{
		{"wildcard", config.CORSConfig{}, "https://example.com", "*"},
		{"wildcard with credentials echoes", config.CORSConfig{AllowCredentials: true}, "https://example.com", "https://example.com"},
		{"allow list match", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com", "https://b.example.com"}}, "https://B.example.com", "https://B.example.com"},
		{"allow list miss", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "https://x.example.com", ""},
		{"no origin header", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newCORSPolicy(tc.cfg).allowOrigin(tc.origin); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if generated := w2.Header().Get(requestIDHeader); len(generated) != 36 {
		t.Fatalf("generated request id should be a uuid, got %q", generated)
	}

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req3.Header.Set(requestIDHeader, strings.Repeat("x", 100))
	r.ServeHTTP(w3, req3)
	if got := w3.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("oversized request id should be replaced, got %q", got)
	}
}

type fakeAuthenticator struct {
	claims   *service.UserJWTClaims
	parseErr error
	state    *cache.UserAuthState
	stateErr error
}

func (f *fakeAuthenticator) ParseUserJWT(string) (*service.UserJWTClaims, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.claims, nil
}

func (f *fakeAuthenticator) ResolveAuthState(context.Context, uint) (*cache.UserAuthState, error) {
	return f.state, f.stateErr
}

func serveWithAuth(t *testing.T, auth UserAuthenticator, header string) (*httptest.ResponseRecorder, gin.H) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserJWTAuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint(userIDContextKey), "role": c.GetString(userRoleContextKey)})
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	var body gin.H
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return w, body
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	valid := &service.UserJWTClaims{UserID: 7, Email: "a@example.com", Role: constants.RoleAffiliate, TokenVersion: 2}
	cases := []struct {
		name       string
		auth       *fakeAuthenticator
		header     string
		wantStatus int
	}{
		{
			name:       "missing header",
			auth:       &fakeAuthenticator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not bearer",
			auth:       &fakeAuthenticator{claims: valid},
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			auth:       &fakeAuthenticator{parseErr: fmt.Errorf("parse: %w", jwt.ErrTokenExpired)},
			header:     "Bearer t",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blocked user",
			auth:       &fakeAuthenticator{claims: valid, state: &cache.UserAuthState{UserID: 7, Role: constants.RoleAffiliate, Status: constants.UserStatusBlocked, TokenVersion: 2}},
			header:     "Bearer t",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "revoked token version",
			auth:       &fakeAuthenticator{claims: valid, state: &cache.UserAuthState{UserID: 7, Role: constants.RoleAffiliate, Status: constants.UserStatusActive, TokenVersion: 3}},
			header:     "Bearer t",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown user",
			auth:       &fakeAuthenticator{claims: valid, stateErr: service.ErrUserNotFound},
			header:     "Bearer t",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "ok",
			auth:       &fakeAuthenticator{claims: valid, state: &cache.UserAuthState{UserID: 7, Role: constants.RoleAffiliate, Status: constants.UserStatusActive, TokenVersion: 2}},
			header:     "Bearer t",
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := serveWithAuth(t, tc.auth, tc.header)
			if w.Code != tc.wantStatus {
				t.Fatalf("status want %d got %d body=%s", tc.wantStatus, w.Code, w.Body.String())
			}
			if tc.wantStatus == http.StatusOK {
				if body["role"] != constants.RoleAffiliate || body["user_id"] != float64(7) {
					t.Fatalf("unexpected context values: %+v", body)
				}
				return
			}
			if body["status_code"] != float64(401) {
				t.Fatalf("status_code want 401 got %v", body["status_code"])
			}
		})
	}
}

func TestUserJWTAuthMiddlewareRoleFromState(t *testing.T) {
	// 令牌签发后角色变更，以快照为准
	auth := &fakeAuthenticator{
		claims: &service.UserJWTClaims{UserID: 9, Role: constants.RoleAffiliate},
		state:  &cache.UserAuthState{UserID: 9, Role: constants.RoleSupplier, Status: constants.UserStatusActive},
	}
	w, body := serveWithAuth(t, auth, "Bearer t")
	if w.Code != http.StatusOK || body["role"] != constants.RoleSupplier {
		t.Fatalf("want supplier role from state, got %d %+v", w.Code, body)
	}
}

func setupRBACRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDContextKey, uint(1))
		if role != "" {
			c.Set(userRoleContextKey, role)
		}
		c.Next()
	})
	r.Use(RoleRBACMiddleware(svc))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/v1/me", ok)
	r.POST("/api/v1/affiliate/payouts", ok)
	r.PATCH("/api/v1/supplier/events/:id", ok)
	r.GET("/api/v1/admin/dashboard", ok)
	return r
}

func TestRoleRBACMiddleware(t *testing.T) {
	cases := []struct {
		role   string
		method string
		path   string
		want   int
	}{
		{constants.RoleAffiliate, http.MethodGet, "/api/v1/me", http.StatusOK},
		{constants.RoleAffiliate, http.MethodPost, "/api/v1/affiliate/payouts", http.StatusOK},
		{constants.RoleAffiliate, http.MethodPatch, "/api/v1/supplier/events/3", http.StatusForbidden},
		{constants.RoleSupplier, http.MethodPatch, "/api/v1/supplier/events/3", http.StatusOK},
		{constants.RoleSupplier, http.MethodGet, "/api/v1/admin/dashboard", http.StatusForbidden},
		{constants.RoleAdmin, http.MethodGet, "/api/v1/admin/dashboard", http.StatusOK},
		{constants.RoleAdmin, http.MethodPost, "/api/v1/affiliate/payouts", http.StatusForbidden},
		{"", http.MethodGet, "/api/v1/me", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.role+"_"+tc.method+"_"+strings.ReplaceAll(tc.path, "/", "_"), func(t *testing.T) {
			r := setupRBACRouter(t, tc.role)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != tc.want {
				t.Fatalf("status want %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{}))
	r.POST("/api/v1/events", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key") {
		t.Fatalf("Idempotency-Key should be an allowed header: %s", w.Header().Get("Access-Control-Allow-Headers"))
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("default policy should allow any origin")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("PATCH should be an allowed method: %s", w.Header().Get("Access-Control-Allow-Methods"))
	}
}
