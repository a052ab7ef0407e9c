package repository

import (
	"errors"
	"strings"

	"github.com/dfn-network/internal/models"

	"gorm.io/gorm"
)

// ComponentRepository 元器件数据访问接口
type ComponentRepository interface {
	GetByID(id uint) (*models.Component, error)
	List(filter ComponentListFilter) ([]models.Component, int64, error)
	Create(component *models.Component) error
}

// GormComponentRepository GORM 实现
type GormComponentRepository struct {
	db *gorm.DB
}

// NewComponentRepository 创建元器件仓库
func NewComponentRepository(db *gorm.DB) *GormComponentRepository {
	return &GormComponentRepository{db: db}
}

// GetByID 根据 ID 获取元器件
func (r *GormComponentRepository) GetByID(id uint) (*models.Component, error) {
	if id == 0 {
		return nil, nil
	}
	var component models.Component
	if err := r.db.First(&component, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

// List 元器件列表
func (r *GormComponentRepository) List(filter ComponentListFilter) ([]models.Component, int64, error) {
	query := r.db.Model(&models.Component{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.ProviderID != 0 {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	query = applySearch(query, filter.Search, "name", "description")

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var components []models.Component
	if err := query.Order("id desc").Find(&components).Error; err != nil {
		return nil, 0, err
	}
	return components, total, nil
}

// Create 创建元器件
func (r *GormComponentRepository) Create(component *models.Component) error {
	return r.db.Create(component).Error
}
