package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dfn-network/internal/authz"
	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	cases := []struct {
		name   string
		cfg    config.CORSConfig
		origin string
		want   string
	}{
		{name: "default wildcard", origin: "https://dfn.example", want: "*"},
		{name: "wildcard with credentials echoes", cfg: config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, origin: "https://dfn.example", want: "https://dfn.example"},
		{name: "allow list case insensitive", cfg: config.CORSConfig{AllowedOrigins: []string{"https://App.dfn.example"}}, origin: "https://app.dfn.example", want: "https://app.dfn.example"},
		{name: "unlisted origin", cfg: config.CORSConfig{AllowedOrigins: []string{"https://app.dfn.example"}}, origin: "https://evil.example", want: ""},
		{name: "no origin header", cfg: config.CORSConfig{AllowedOrigins: []string{"https://app.dfn.example"}}, origin: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newCORSPolicy(tc.cfg).allowOrigin(tc.origin); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://app.dfn.example"}, MaxAge: 600}))
	r.POST("/api/cart/items", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/cart/items", nil)
	req.Header.Set("Origin", "https://app.dfn.example")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.dfn.example" || w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("unexpected preflight headers %v", w.Header())
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Retry-After") {
		t.Fatalf("Retry-After should be exposed")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"Bearer   ":    "",
	}
	for header, want := range cases {
		got, ok := bearerToken(header)
		if got != want || ok != (want != "") {
			t.Fatalf("bearerToken(%q) want %q got %q ok=%v", header, want, got, ok)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
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
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req3.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	r.ServeHTTP(w3, req3)
	if got := w3.Header().Get(requestIDHeader); len(got) > maxRequestIDLen || got == generated {
		t.Fatalf("oversized request id should be replaced, got %q", got)
	}
}

type stubAuthenticator struct {
	claims *service.UserJWTClaims
	err    error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*service.UserJWTClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		header string
		auth   TokenAuthenticator
		want   int
	}{
		{name: "missing header", header: "", auth: stubAuthenticator{}, want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", auth: stubAuthenticator{}, want: http.StatusUnauthorized},
		{name: "no authenticator", header: "Bearer ok", auth: nil, want: http.StatusInternalServerError},
		{name: "invalid token", header: "Bearer bad", auth: stubAuthenticator{err: service.ErrInvalidToken}, want: http.StatusUnauthorized},
		{name: "disabled user", header: "Bearer ok", auth: stubAuthenticator{err: service.ErrUserDisabled}, want: http.StatusForbidden},
		{name: "store failure", header: "Bearer ok", auth: stubAuthenticator{err: errors.New("db down")}, want: http.StatusInternalServerError},
		{name: "valid", header: "Bearer ok", auth: stubAuthenticator{claims: &service.UserJWTClaims{UserID: 7, Role: "explorer"}}, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(UserJWTAuthMiddleware(tc.auth))
			r.GET("/ping", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id"), "role": c.GetString("user_role")})
			})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status want %d got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && !strings.Contains(w.Body.String(), `"user_id":7`) {
				t.Fatalf("claims should be stored in context, got %s", w.Body.String())
			}
			if tc.want != http.StatusOK {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal response failed: %v", err)
				}
				if body["error"] == "" {
					t.Fatalf("error message should not be empty")
				}
			}
		})
	}
}

func TestRoleAuthzMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_authz_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	newEngine := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set("user_role", role)
			}
			c.Next()
		}, RoleAuthzMiddleware(authzService))
		r.POST("/api/components", func(c *gin.Context) { c.Status(http.StatusCreated) })
		r.POST("/api/groupbuying/:id/join", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	cases := []struct {
		role string
		path string
		want int
	}{
		{role: "explorer", path: "/api/groupbuying/3/join", want: http.StatusCreated},
		{role: "explorer", path: "/api/components", want: http.StatusForbidden},
		{role: "provider", path: "/api/components", want: http.StatusCreated},
		{role: "admin", path: "/api/components", want: http.StatusCreated},
		{role: "", path: "/api/components", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		newEngine(tc.role).ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("role %q path %s: status want %d got %d", tc.role, tc.path, tc.want, w.Code)
		}
	}
}
