package repository

import (
	"errors"
	"time"

	"github.com/dfn-network/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
	GetByUserID(userID uint) (*models.Cart, error)
	GetOrCreateByUserID(userID uint) (*models.Cart, error)
	ListItems(cartID uint) ([]models.CartItem, error)
	GetItemByID(id uint) (*models.CartItem, error)
	GetItemByProductKey(cartID uint, productKey string) (*models.CartItem, error)
	MergeItem(item *models.CartItem) error
	UpdateItemQuantity(id uint, quantity int, updatedAt time.Time) error
	DeleteItem(id uint) error
	ClearItems(cartID uint) error
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByUserID 获取用户购物车
func (r *GormCartRepository) GetByUserID(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, nil
	}
	var cart models.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateByUserID 获取或创建用户购物车
// 并发创建依赖 user_id 唯一索引，冲突时回读已存在的购物车
func (r *GormCartRepository) GetOrCreateByUserID(userID uint) (*models.Cart, error) {
	cart, err := r.GetByUserID(userID)
	if err != nil || cart != nil {
		return cart, err
	}
	now := time.Now()
	created := &models.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(created).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

// ListItems 获取购物车项（预加载商品引用）
func (r *GormCartRepository) ListItems(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Component").
		Preload("AffiliateStore").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemByID 获取购物车项（预加载所属购物车）
func (r *GormCartRepository) GetItemByID(id uint) (*models.CartItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.CartItem
	if err := r.db.Preload("Cart").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByProductKey 按商品标识获取购物车项
func (r *GormCartRepository) GetItemByProductKey(cartID uint, productKey string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("cart_id = ? AND product_key = ?", cartID, productKey).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// MergeItem 写入购物车项，相同商品累加数量
// 价格快照以首次加购为准，不随后续加购覆盖
func (r *GormCartRepository) MergeItem(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": item.UpdatedAt,
		}),
	}).Create(item).Error
}

// UpdateItemQuantity 覆盖购物车项数量
func (r *GormCartRepository) UpdateItemQuantity(id uint, quantity int, updatedAt time.Time) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": updatedAt,
		}).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(id uint) error {
	return r.db.Where("id = ?", id).Delete(&models.CartItem{}).Error
}

// ClearItems 清空购物车项
func (r *GormCartRepository) ClearItems(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
