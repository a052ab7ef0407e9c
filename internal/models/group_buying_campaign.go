package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupBuyingCampaign 团购活动
// CurrentQuantity / ParticipantCount / TotalFunding 为参与记录的累计值，仅在加入/退出事务中变更
type GroupBuyingCampaign struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                              // 主键
	OrganizerID      uint           `gorm:"not null;index" json:"organizer_id"`                                // 发起人
	ComponentName    string         `gorm:"type:varchar(255);not null" json:"component_name"`                  // 元器件名称
	Description      string         `gorm:"type:text" json:"description"`                                      // 描述
	SourceURL        string         `gorm:"type:varchar(500)" json:"source_url"`                               // 来源链接
	SupplierName     string         `gorm:"type:varchar(255)" json:"supplier_name"`                            // 供应商名称
	SupplierCountry  string         `gorm:"type:varchar(64)" json:"supplier_country"`                          // 供应商国家
	ImageURL         string         `gorm:"type:varchar(500)" json:"image_url"`                                // 图片
	UnitPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`           // 单价
	Currency         string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`           // 币种
	ShippingCost     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"`        // 运费总额（均摊）
	CustomsDuty      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"customs_duty"`         // 关税总额（均摊）
	MinimumQuantity  int            `gorm:"not null" json:"minimum_quantity"`                                  // 成团最低数量
	MaximumQuantity  *int           `json:"maximum_quantity"`                                                  // 数量上限（可空）
	CurrentQuantity  int            `gorm:"not null;default:0" json:"current_quantity"`                        // 当前数量
	ParticipantCount int            `gorm:"not null;default:0" json:"participant_count"`                       // 参与人数
	TotalFunding     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_funding"`        // 已认筹金额
	TargetFunding    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"target_funding"`       // 目标金额（创建时计算）
	Deadline         time.Time      `gorm:"not null;index" json:"deadline"`                                    // 截止时间
	Status           string         `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`      // 状态
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                        // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间

	Organizer *User `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"` // 发起人信息
}

// TableName 指定表名
func (GroupBuyingCampaign) TableName() string {
	return "group_buying_campaigns"
}
