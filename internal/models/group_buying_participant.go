package models

import "time"

// GroupBuyingParticipant 团购参与记录（同一活动同一用户仅一条）
type GroupBuyingParticipant struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                                      // 主键
	CampaignID   uint       `gorm:"not null;uniqueIndex:idx_campaign_participant_user" json:"campaign_id"`     // 活动ID
	UserID       uint       `gorm:"not null;uniqueIndex:idx_campaign_participant_user;index" json:"user_id"`   // 用户ID
	Quantity     int        `gorm:"not null" json:"quantity"`                                                  // 认购数量
	Contribution Money      `gorm:"type:decimal(20,2);not null;default:0" json:"contribution"`                // 应付金额（加入时锁定）
	IsPaid       bool       `gorm:"not null;default:false" json:"is_paid"`                                     // 是否已付款
	PaidAt       *time.Time `json:"paid_at"`                                                                   // 付款时间
	JoinedAt     time.Time  `gorm:"index" json:"joined_at"`                                                    // 加入时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                                // 更新时间

	User     *User                `gorm:"foreignKey:UserID" json:"-"`     // 参与用户
	Campaign *GroupBuyingCampaign `gorm:"foreignKey:CampaignID" json:"-"` // 所属活动
}

// TableName 指定表名
func (GroupBuyingParticipant) TableName() string {
	return "group_buying_participants"
}
