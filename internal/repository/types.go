package repository

// ComponentListFilter 元器件列表过滤条件
type ComponentListFilter struct {
	Page       int
	PageSize   int
	ProviderID uint
	Category   string
	Search     string
	OnlyActive bool
}

// AffiliateStoreListFilter 联盟商店列表过滤条件
type AffiliateStoreListFilter struct {
	Page       int
	PageSize   int
	OnlyActive bool
}

// CampaignListFilter 团购活动列表过滤条件
type CampaignListFilter struct {
	Page        int
	PageSize    int
	Status      string
	OrganizerID uint
	Search      string
}

// NotificationListFilter 通知列表过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	UnreadOnly bool
}
