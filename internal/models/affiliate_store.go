package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateStore 外部联盟商店（外部履约）
type AffiliateStore struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                              // 主键
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`                            // 商店名称
	BaseURL        string         `gorm:"type:varchar(500)" json:"base_url"`                                 // 商店地址
	LogoURL        string         `gorm:"type:varchar(500)" json:"logo_url"`                                 // Logo
	Country        string         `gorm:"type:varchar(64)" json:"country"`                                   // 所在国家
	CommissionRate Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_rate"`      // 佣金比例（百分比）
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                               // 是否启用
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                        // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

// TableName 指定表名
func (AffiliateStore) TableName() string {
	return "affiliate_stores"
}
