package repository

import (
	"errors"

	"github.com/dfn-network/internal/models"

	"gorm.io/gorm"
)

// AffiliateStoreRepository 联盟商店数据访问接口
type AffiliateStoreRepository interface {
	GetByID(id uint) (*models.AffiliateStore, error)
	List(filter AffiliateStoreListFilter) ([]models.AffiliateStore, int64, error)
	Create(store *models.AffiliateStore) error
}

// GormAffiliateStoreRepository GORM 实现
type GormAffiliateStoreRepository struct {
	db *gorm.DB
}

// NewAffiliateStoreRepository 创建联盟商店仓库
func NewAffiliateStoreRepository(db *gorm.DB) *GormAffiliateStoreRepository {
	return &GormAffiliateStoreRepository{db: db}
}

// GetByID 根据 ID 获取联盟商店
func (r *GormAffiliateStoreRepository) GetByID(id uint) (*models.AffiliateStore, error) {
	if id == 0 {
		return nil, nil
	}
	var store models.AffiliateStore
	if err := r.db.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// List 联盟商店列表
func (r *GormAffiliateStoreRepository) List(filter AffiliateStoreListFilter) ([]models.AffiliateStore, int64, error) {
	query := r.db.Model(&models.AffiliateStore{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var stores []models.AffiliateStore
	if err := query.Order("name asc").Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// Create 创建联盟商店
func (r *GormAffiliateStoreRepository) Create(store *models.AffiliateStore) error {
	return r.db.Create(store).Error
}
