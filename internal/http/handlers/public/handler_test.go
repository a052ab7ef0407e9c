package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/provider"
	"github.com/dfn-network/internal/repository"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testUserHeader = "X-Test-User"

func setupHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: models.NewGormLogger(false), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		GroupBuying: config.GroupBuyingConfig{DefaultCurrency: "USD", MaxDeadlineDays: 180},
	}
	c := &provider.Container{Config: cfg}
	c.UserRepo = repository.NewUserRepository(db)
	c.ComponentRepo = repository.NewComponentRepository(db)
	c.AffiliateStoreRepo = repository.NewAffiliateStoreRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.ComponentRepo, c.AffiliateStoreRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, nil)
	c.CartService = service.NewCartService(c.CartRepo, c.ComponentRepo, c.AffiliateStoreRepo, nil)
	c.GroupBuyingService = service.NewGroupBuyingService(c.CampaignRepo, c.NotificationService, nil, cfg.GroupBuying)

	h := New(c)
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set("request_id", "test-request")
		if raw := ctx.GetHeader(testUserHeader); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			ctx.Set(ContextUserIDKey, uint(id))
		}
		ctx.Next()
	})
	api := r.Group("/api")
	api.GET("/components/:id", h.GetComponent)
	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PUT("/cart/items/:id", h.UpdateCartItem)
	api.DELETE("/cart/items/:id", h.DeleteCartItem)
	api.POST("/cart/import", h.ImportCartItems)
	api.POST("/groupbuying", h.CreateCampaign)
	api.GET("/groupbuying/:id", h.GetCampaign)
	api.POST("/groupbuying/:id/join", h.JoinCampaign)
	api.POST("/groupbuying/:id/leave", h.LeaveCampaign)
	api.GET("/notifications", h.ListNotifications)
	return r, db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: "explorer", Status: "active"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body failed: %v, body=%s", err, w.Body.String())
	}
	return body
}

func TestCartAddMergeAndView(t *testing.T) {
	r, db := setupHandlerTest(t)
	providerUser := createTestUser(t, db, "provider@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	component := &models.Component{
		ProviderID: providerUser.ID,
		Name:       "ESP32-WROOM",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("3.50")),
		Currency:   "USD",
		InStock:    true,
		IsActive:   true,
	}
	if err := db.Create(component).Error; err != nil {
		t.Fatalf("create component failed: %v", err)
	}

	for _, qty := range []int{2, 3} {
		w := doJSON(t, r, http.MethodPost, "/api/cart/items", buyer.ID, gin.H{"component_id": component.ID, "quantity": qty})
		if w.Code != http.StatusCreated {
			t.Fatalf("add item status want 201 got %d: %s", w.Code, w.Body.String())
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/cart", buyer.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart status want 200 got %d", w.Code)
	}
	var view struct {
		ItemCount int    `json:"item_count"`
		Total     string `json:"total"`
		Vendors   []struct {
			VendorName string `json:"vendor_name"`
			Items      []struct {
				Quantity int `json:"quantity"`
			} `json:"items"`
		} `json:"vendors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode cart view failed: %v, body=%s", err, w.Body.String())
	}
	if len(view.Vendors) != 1 || len(view.Vendors[0].Items) != 1 {
		t.Fatalf("expected one merged item in one group, got %+v", view)
	}
	if view.Vendors[0].Items[0].Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", view.Vendors[0].Items[0].Quantity)
	}
	if view.Vendors[0].VendorName != "DFN Direct" {
		t.Fatalf("vendor name want DFN Direct got %s", view.Vendors[0].VendorName)
	}
	if view.Total != "17.50" {
		t.Fatalf("total want 17.50 got %s", view.Total)
	}
}

func TestCartAddRequiresProductReference(t *testing.T) {
	r, db := setupHandlerTest(t)
	buyer := createTestUser(t, db, "buyer@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", buyer.ID, gin.H{"quantity": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	body := decodeError(t, w)
	if body["error"] == "" || body["request_id"] != "test-request" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestCartUpdateForeignItemForbidden(t *testing.T) {
	r, db := setupHandlerTest(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	store := &models.AffiliateStore{Name: "Mouser", IsActive: true}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/cart/items", owner.ID, gin.H{
		"affiliate_store_id":  store.ID,
		"external_product_id": "595-LM358P",
		"product_name":        "LM358P",
		"price":               "0.45",
		"quantity":            4,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add affiliate item status want 201 got %d: %s", w.Code, w.Body.String())
	}
	var item struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item failed: %v", err)
	}

	path := fmt.Sprintf("/api/cart/items/%d", item.ID)
	if w := doJSON(t, r, http.MethodPut, path, other.ID, gin.H{"quantity": 1}); w.Code != http.StatusForbidden {
		t.Fatalf("foreign update status want 403 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/cart/items/999999", other.ID, nil); w.Code != http.StatusForbidden {
		t.Fatalf("missing item delete status want 403 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, path, owner.ID, gin.H{"quantity": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity status want 400 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/cart/items/abc", owner.ID, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status want 400 got %d", w.Code)
	}
}

func TestCartImportUnknownStore(t *testing.T) {
	r, db := setupHandlerTest(t)
	buyer := createTestUser(t, db, "buyer@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/cart/import", buyer.ID, gin.H{
		"affiliate_store_id": 4242,
		"items":              []gin.H{{"external_product_id": "X-1", "quantity": 1}},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d: %s", w.Code, w.Body.String())
	}
}

func TestCampaignJoinFlowStatusCodes(t *testing.T) {
	r, db := setupHandlerTest(t)
	organizer := createTestUser(t, db, "organizer@example.com")
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/groupbuying", organizer.ID, gin.H{
		"component_name":   "STM32F103C8T6",
		"unit_price":       "2.00",
		"shipping_cost":    "10.00",
		"minimum_quantity": 10,
		"maximum_quantity": 12,
		"deadline":         time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status want 201 got %d: %s", w.Code, w.Body.String())
	}
	var campaign struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &campaign); err != nil {
		t.Fatalf("decode campaign failed: %v", err)
	}
	base := fmt.Sprintf("/api/groupbuying/%d", campaign.ID)

	if w := doJSON(t, r, http.MethodPost, base+"/join", alice.ID, gin.H{"quantity": 8}); w.Code != http.StatusCreated {
		t.Fatalf("join status want 201 got %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, base+"/join", alice.ID, gin.H{"quantity": 1}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate join status want 409 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/join", bob.ID, gin.H{"quantity": 5}); w.Code != http.StatusBadRequest {
		t.Fatalf("over capacity status want 400 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/groupbuying/999999/join", bob.ID, gin.H{"quantity": 1}); w.Code != http.StatusNotFound {
		t.Fatalf("missing campaign status want 404 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/leave", bob.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("leave without joining status want 404 got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, base, 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get campaign status want 200 got %d", w.Code)
	}
	var view struct {
		Campaign struct {
			CurrentQuantity  int `json:"current_quantity"`
			ParticipantCount int `json:"participant_count"`
		} `json:"campaign"`
		Participants []json.RawMessage `json:"participants"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view failed: %v", err)
	}
	if view.Campaign.CurrentQuantity != 8 || view.Campaign.ParticipantCount != 1 || len(view.Participants) != 1 {
		t.Fatalf("unexpected campaign state: %+v", view)
	}

	w = doJSON(t, r, http.MethodGet, "/api/notifications", organizer.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("notifications status want 200 got %d", w.Code)
	}
	var page struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode notifications failed: %v", err)
	}
	if page.Pagination.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("organizer should have one join notification, got %d", page.Pagination.Total)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	r, db := setupHandlerTest(t)
	organizer := createTestUser(t, db, "organizer@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/groupbuying", organizer.ID, gin.H{
		"component_name":   "Resistor kit",
		"unit_price":       "1.00",
		"minimum_quantity": 5,
		"deadline":         time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("past deadline status want 400 got %d", w.Code)
	}
}

func TestAuthenticatedRouteWithoutUser(t *testing.T) {
	r, _ := setupHandlerTest(t)
	w := doJSON(t, r, http.MethodGet, "/api/cart", 0, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}
