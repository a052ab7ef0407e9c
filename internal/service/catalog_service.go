package service

import (
	"context"
	"strings"
	"time"

	"github.com/dfn-network/internal/cache"
	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"
)

const activeStoresCacheKey = "catalog:affiliate_stores:active"

const activeStoresCacheTTL = 5 * time.Minute

// CreateComponentInput 上架元器件输入
type CreateComponentInput struct {
	ProviderID  uint
	Name        string
	Description string
	Category    string
	Price       models.Money
	Currency    string
	ImageURL    string
	InStock     bool
}

// CreateAffiliateStoreInput 创建联盟商店输入
type CreateAffiliateStoreInput struct {
	Name           string
	BaseURL        string
	LogoURL        string
	Country        string
	CommissionRate models.Money
}

// CatalogService 元器件目录与联盟商店服务
type CatalogService struct {
	componentRepo repository.ComponentRepository
	storeRepo     repository.AffiliateStoreRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(componentRepo repository.ComponentRepository, storeRepo repository.AffiliateStoreRepository) *CatalogService {
	return &CatalogService{
		componentRepo: componentRepo,
		storeRepo:     storeRepo,
	}
}

// ListComponents 元器件列表（仅上架）
func (s *CatalogService) ListComponents(filter repository.ComponentListFilter) ([]models.Component, int64, error) {
	filter.OnlyActive = true
	return s.componentRepo.List(filter)
}

// GetComponent 元器件详情
func (s *CatalogService) GetComponent(id uint) (*models.Component, error) {
	component, err := s.componentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if component == nil || !component.IsActive {
		return nil, ErrComponentNotFound
	}
	return component, nil
}

// CreateComponent 供应商上架元器件
func (s *CatalogService) CreateComponent(input CreateComponentInput) (*models.Component, error) {
	name := strings.TrimSpace(input.Name)
	if input.ProviderID == 0 || name == "" || input.Price.IsNegative() {
		return nil, ErrComponentInvalid
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	component := &models.Component{
		ProviderID:  input.ProviderID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Price:       models.NewMoneyFromDecimal(input.Price.Decimal),
		Currency:    currency,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		InStock:     input.InStock,
		IsActive:    true,
	}
	if err := s.componentRepo.Create(component); err != nil {
		return nil, err
	}
	return component, nil
}

// ListActiveAffiliateStores 启用中的联盟商店，结果缓存于 Redis
func (s *CatalogService) ListActiveAffiliateStores(ctx context.Context) ([]models.AffiliateStore, error) {
	return cache.Remember(ctx, activeStoresCacheKey, activeStoresCacheTTL, func() ([]models.AffiliateStore, error) {
		stores, _, err := s.storeRepo.List(repository.AffiliateStoreListFilter{OnlyActive: true})
		return stores, err
	}, func(stage string, err error) {
		logger.Warnw("affiliate_store_cache_failed", "stage", stage, "error", err)
	})
}

// CreateAffiliateStore 创建联盟商店
func (s *CatalogService) CreateAffiliateStore(ctx context.Context, input CreateAffiliateStoreInput) (*models.AffiliateStore, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.CommissionRate.IsNegative() {
		return nil, ErrAffiliateStoreInvalid
	}
	store := &models.AffiliateStore{
		Name:           name,
		BaseURL:        strings.TrimSpace(input.BaseURL),
		LogoURL:        strings.TrimSpace(input.LogoURL),
		Country:        strings.TrimSpace(input.Country),
		CommissionRate: models.NewMoneyFromDecimal(input.CommissionRate.Decimal),
		IsActive:       true,
	}
	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}
	if err := cache.Del(ctx, activeStoresCacheKey); err != nil {
		logger.Warnw("affiliate_store_cache_invalidate_failed", "error", err)
	}
	return store, nil
}
