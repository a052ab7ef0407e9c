package models

import (
	"time"
)

// CartItem 购物车项
// 商品引用二选一：ComponentID（自营目录）或 AffiliateStoreID（联盟商店，可带外部商品ID）
// ProductKey 由商品引用派生，(cart_id, product_key) 唯一，用于合并相同商品
type CartItem struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                                            // 主键
	CartID             uint      `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"cart_id"`                       // 购物车ID
	ProductKey         string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_cart_item_product" json:"product_key"` // 商品标识
	ComponentID        *uint     `gorm:"index" json:"component_id,omitempty"`                                             // 自营元器件ID
	AffiliateStoreID   *uint     `gorm:"index" json:"affiliate_store_id,omitempty"`                                       // 联盟商店ID
	ExternalProductID  string    `gorm:"type:varchar(191)" json:"external_product_id,omitempty"`                          // 外部商品ID
	ExternalProductURL string    `gorm:"type:varchar(500)" json:"external_product_url,omitempty"`                         // 外部商品链接
	ProductName        string    `gorm:"type:varchar(255)" json:"product_name,omitempty"`                                 // 商品名称快照
	ProductImage       string    `gorm:"type:varchar(500)" json:"product_image,omitempty"`                                // 商品图片快照
	Quantity           int       `gorm:"not null;default:1" json:"quantity"`                                              // 数量
	Price              Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                              // 加购时单价快照
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                                         // 创建时间
	UpdatedAt          time.Time `gorm:"index" json:"updated_at"`                                                         // 更新时间

	Cart           *Cart           `gorm:"foreignKey:CartID" json:"-"`                                       // 所属购物车
	Component      *Component      `gorm:"foreignKey:ComponentID" json:"component,omitempty"`                // 关联元器件
	AffiliateStore *AffiliateStore `gorm:"foreignKey:AffiliateStoreID" json:"affiliate_store,omitempty"`     // 关联联盟商店
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
