package constants

// 用户角色常量
const (
	UserRoleExplorer = "explorer"
	UserRoleProvider = "provider"
	UserRoleAdmin    = "admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 团购活动状态常量
const (
	CampaignStatusOpen      = "open"
	CampaignStatusFunding   = "funding"
	CampaignStatusOrdered   = "ordered"
	CampaignStatusShipped   = "shipped"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// CampaignStatuses 全部团购状态（按生命周期顺序）
var CampaignStatuses = []string{
	CampaignStatusOpen,
	CampaignStatusFunding,
	CampaignStatusOrdered,
	CampaignStatusShipped,
	CampaignStatusCompleted,
	CampaignStatusCancelled,
}

// 购物车商家分组常量
const (
	VendorKeyComponentPrefix = "component_"
	VendorKeyAffiliatePrefix = "affiliate_"
	VendorKeyUnknown         = "unknown"
	VendorTypeInternal       = "internal"
	VendorTypeAffiliate      = "affiliate"
	VendorTypeUnknown        = "unknown"
	InternalVendorName       = "DFN Direct"
	UnknownVendorName        = "Unknown Vendor"
)

// 默认币种
const DefaultCurrency = "USD"

// 通知类型常量
const (
	NotificationTypeCampaignJoined        = "campaign_joined"
	NotificationTypeCampaignLeft          = "campaign_left"
	NotificationTypeCampaignFunding       = "campaign_funding"
	NotificationTypeCampaignStatusChanged = "campaign_status_changed"
	NotificationTypeParticipantPaid       = "participant_paid"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskNotificationCreate = "notification:create"
)
