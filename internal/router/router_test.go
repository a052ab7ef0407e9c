package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dfn-network/internal/authz"
	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: models.NewGormLogger(false), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	return SetupRouter(cfg, provider.NewContainer(cfg))
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s status want 201 got %d: %s", email, w.Code, w.Body.String())
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil || result.Token == "" {
		t.Fatalf("register response missing token: %s", w.Body.String())
	}
	return result.Token
}

func TestRouterRoleGuardsAndAuth(t *testing.T) {
	r := setupRouterTest(t)

	explorerToken := register(t, r, "explorer@example.com", "")
	providerToken := register(t, r, "maker@example.com", "provider")

	if w := call(t, r, http.MethodGet, "/api/cart", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous cart status want 401 got %d", w.Code)
	}
	if w := call(t, r, http.MethodGet, "/api/cart", explorerToken, nil); w.Code != http.StatusOK {
		t.Fatalf("explorer cart status want 200 got %d: %s", w.Code, w.Body.String())
	}

	component := gin.H{"name": "ATmega328P", "price": "2.10", "currency": "usd"}
	if w := call(t, r, http.MethodPost, "/api/components", explorerToken, component); w.Code != http.StatusForbidden {
		t.Fatalf("explorer create component status want 403 got %d", w.Code)
	}
	if w := call(t, r, http.MethodPost, "/api/components", providerToken, component); w.Code != http.StatusCreated {
		t.Fatalf("provider create component status want 201 got %d: %s", w.Code, w.Body.String())
	}
	if w := call(t, r, http.MethodPost, "/api/affiliate-stores", providerToken, gin.H{"name": "DigiKey"}); w.Code != http.StatusForbidden {
		t.Fatalf("provider create store status want 403 got %d", w.Code)
	}

	w := call(t, r, http.MethodGet, "/api/components", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list components status want 200 got %d", w.Code)
	}
	var page struct {
		Items []struct {
			Currency string `json:"currency"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode components failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Currency != "USD" {
		t.Fatalf("unexpected components page: %s", w.Body.String())
	}

	if w := call(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "explorer@example.com", "password": "wrong-pass1"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status want 401 got %d", w.Code)
	}
	if w := call(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "explorer@example.com", "password": "secret123"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status want 409 got %d", w.Code)
	}
	if w := call(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "root@example.com", "password": "secret123", "role": "admin"}); w.Code != http.StatusBadRequest {
		t.Fatalf("admin self-register status want 400 got %d", w.Code)
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	r := setupRouterTest(t)

	call(t, r, http.MethodGet, "/api/groupbuying", "", nil)
	w := call(t, r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dfn_http_request_duration_seconds") {
		t.Fatalf("metrics should expose request durations")
	}
}

func TestProtectedRoutesCoveredByAdminPolicy(t *testing.T) {
	r := setupRouterTest(t)
	service, err := authz.NewService(models.DB)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	for _, route := range r.Routes() {
		if !strings.HasPrefix(route.Path, "/api/") {
			continue
		}
		allowed, err := service.EnforceRole("admin", route.Path, route.Method)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", route.Method, route.Path, err)
		}
		if !allowed {
			t.Fatalf("admin should reach %s %s", route.Method, route.Path)
		}
	}
}
