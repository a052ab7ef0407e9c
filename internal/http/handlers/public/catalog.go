package public

import (
	"strconv"
	"strings"

	handlershared "github.com/dfn-network/internal/http/handlers/shared"
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateComponentRequest 上架元器件请求
type CreateComponentRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Price       models.Money `json:"price"`
	Currency    string       `json:"currency"`
	ImageURL    string       `json:"image_url"`
	InStock     *bool        `json:"in_stock"`
}

// CreateAffiliateStoreRequest 创建联盟商店请求
type CreateAffiliateStoreRequest struct {
	Name           string       `json:"name" binding:"required"`
	BaseURL        string       `json:"base_url"`
	LogoURL        string       `json:"logo_url"`
	Country        string       `json:"country"`
	CommissionRate models.Money `json:"commission_rate"`
}

// ListComponents 元器件列表
func (h *Handler) ListComponents(c *gin.Context) {
	page, pageSize := handlershared.ReadPagination(c)
	providerID, _ := strconv.ParseUint(c.Query("provider_id"), 10, 64)
	items, total, err := h.CatalogService.ListComponents(repository.ComponentListFilter{
		Page:       page,
		PageSize:   pageSize,
		ProviderID: uint(providerID),
		Category:   strings.TrimSpace(c.Query("category")),
		Search:     strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.catalog_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetComponent 元器件详情
func (h *Handler) GetComponent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	component, err := h.CatalogService.GetComponent(id)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.catalog_fetch_failed")
		return
	}
	response.Success(c, component)
}

// CreateComponent 上架元器件，供应商为当前用户
func (h *Handler) CreateComponent(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	component, err := h.CatalogService.CreateComponent(service.CreateComponentInput{
		ProviderID:  uid,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		InStock:     inStock,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.catalog_create_failed")
		return
	}
	response.Created(c, component)
}

// ListAffiliateStores 启用中的联盟商店
func (h *Handler) ListAffiliateStores(c *gin.Context) {
	stores, err := h.CatalogService.ListActiveAffiliateStores(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.catalog_fetch_failed")
		return
	}
	response.Success(c, gin.H{"items": stores})
}

// CreateAffiliateStore 创建联盟商店
func (h *Handler) CreateAffiliateStore(c *gin.Context) {
	var req CreateAffiliateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	store, err := h.CatalogService.CreateAffiliateStore(c.Request.Context(), service.CreateAffiliateStoreInput{
		Name:           req.Name,
		BaseURL:        req.BaseURL,
		LogoURL:        req.LogoURL,
		Country:        req.Country,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, "error.catalog_create_failed")
		return
	}
	response.Created(c, store)
}
