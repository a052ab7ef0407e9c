package models

import (
	"time"

	"gorm.io/gorm"
)

// Component 平台自营目录中的元器件
type Component struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                        // 主键
	ProviderID  uint           `gorm:"not null;index" json:"provider_id"`                           // 供应商用户ID
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`                      // 名称
	Description string         `gorm:"type:text" json:"description"`                                // 描述
	Category    string         `gorm:"type:varchar(100);index" json:"category"`                     // 分类
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`          // 单价
	Currency    string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`     // 币种
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`                          // 图片
	InStock     bool           `gorm:"not null" json:"in_stock"`                                    // 是否有货
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                         // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Provider *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"` // 供应商
}

// TableName 指定表名
func (Component) TableName() string {
	return "components"
}
