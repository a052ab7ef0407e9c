package models

import "time"

// Notification 站内通知
type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`                           // 主键
	UserID    uint       `gorm:"not null;index" json:"user_id"`                  // 接收用户
	Type      string     `gorm:"type:varchar(64);not null;index" json:"type"`    // 通知类型
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`        // 标题
	Message   string     `gorm:"type:text" json:"message"`                       // 内容
	Link      string     `gorm:"type:varchar(500)" json:"link"`                  // 跳转链接
	IsRead    bool       `gorm:"not null;default:false;index" json:"is_read"`    // 是否已读
	ReadAt    *time.Time `json:"read_at"`                                        // 阅读时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                        // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
