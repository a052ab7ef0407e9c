package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepository 团购活动数据访问接口
type CampaignRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CampaignRepository

	Create(campaign *models.GroupBuyingCampaign) error
	GetByID(id uint) (*models.GroupBuyingCampaign, error)
	GetByIDForUpdate(id uint) (*models.GroupBuyingCampaign, error)
	List(filter CampaignListFilter) ([]models.GroupBuyingCampaign, int64, error)
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	ApplyJoin(id uint, quantity int, contribution models.Money, updatedAt time.Time) (bool, error)
	ApplyLeave(id uint, quantity int, contribution models.Money, updatedAt time.Time) error
	PromoteToFunding(id uint, updatedAt time.Time) (bool, error)

	GetParticipant(campaignID, userID uint) (*models.GroupBuyingParticipant, error)
	CreateParticipant(participant *models.GroupBuyingParticipant) error
	DeleteParticipant(id uint) error
	MarkParticipantPaid(id uint, paidAt time.Time) error
	ListParticipants(campaignID uint) ([]models.GroupBuyingParticipant, error)
	ListParticipationsByUser(userID uint) ([]models.GroupBuyingParticipant, error)
	SumParticipants(campaignID uint) (ParticipantTotals, error)
}

// ParticipantTotals 参与记录汇总
type ParticipantTotals struct {
	Quantity     int
	Count        int64
	Contribution decimal.Decimal
}

// GormCampaignRepository GORM 实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建团购仓库
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// Transaction 执行事务
func (r *GormCampaignRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) CampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// Create 创建团购活动
func (r *GormCampaignRepository) Create(campaign *models.GroupBuyingCampaign) error {
	return r.db.Create(campaign).Error
}

// GetByID 获取团购活动（含发起人）
func (r *GormCampaignRepository) GetByID(id uint) (*models.GroupBuyingCampaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.GroupBuyingCampaign
	if err := r.db.Preload("Organizer").First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// GetByIDForUpdate 加锁获取团购活动
func (r *GormCampaignRepository) GetByIDForUpdate(id uint) (*models.GroupBuyingCampaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.GroupBuyingCampaign
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// List 团购活动列表
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.GroupBuyingCampaign, int64, error) {
	query := r.db.Model(&models.GroupBuyingCampaign{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.OrganizerID != 0 {
		query = query.Where("organizer_id = ?", filter.OrganizerID)
	}
	query = applySearch(query, filter.Search, "component_name", "supplier_name")

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var campaigns []models.GroupBuyingCampaign
	if err := query.Preload("Organizer").Order("created_at desc, id desc").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// UpdateStatus 更新活动状态
func (r *GormCampaignRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	return r.db.Model(&models.GroupBuyingCampaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		}).Error
}

// ApplyJoin 条件累加加入数据
// 仅当活动仍为 open 且不超过数量上限时生效，返回是否命中
func (r *GormCampaignRepository) ApplyJoin(id uint, quantity int, contribution models.Money, updatedAt time.Time) (bool, error) {
	result := r.db.Model(&models.GroupBuyingCampaign{}).
		Where("id = ? AND status = ?", id, constants.CampaignStatusOpen).
		Where("maximum_quantity IS NULL OR current_quantity + ? <= maximum_quantity", quantity).
		Updates(map[string]interface{}{
			"current_quantity":  gorm.Expr("current_quantity + ?", quantity),
			"participant_count": gorm.Expr("participant_count + ?", 1),
			"total_funding":     gorm.Expr("total_funding + ?", contribution),
			"updated_at":        updatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ApplyLeave 扣减退出数据
func (r *GormCampaignRepository) ApplyLeave(id uint, quantity int, contribution models.Money, updatedAt time.Time) error {
	return r.db.Model(&models.GroupBuyingCampaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_quantity":  gorm.Expr("current_quantity - ?", quantity),
			"participant_count": gorm.Expr("participant_count - ?", 1),
			"total_funding":     gorm.Expr("total_funding - ?", contribution),
			"updated_at":        updatedAt,
		}).Error
}

// PromoteToFunding 达到最低数量时切换为 funding
func (r *GormCampaignRepository) PromoteToFunding(id uint, updatedAt time.Time) (bool, error) {
	result := r.db.Model(&models.GroupBuyingCampaign{}).
		Where("id = ? AND status = ? AND current_quantity >= minimum_quantity", id, constants.CampaignStatusOpen).
		Updates(map[string]interface{}{
			"status":     constants.CampaignStatusFunding,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetParticipant 获取用户在活动中的参与记录
func (r *GormCampaignRepository) GetParticipant(campaignID, userID uint) (*models.GroupBuyingParticipant, error) {
	var participant models.GroupBuyingParticipant
	if err := r.db.Where("campaign_id = ? AND user_id = ?", campaignID, userID).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

// CreateParticipant 创建参与记录
func (r *GormCampaignRepository) CreateParticipant(participant *models.GroupBuyingParticipant) error {
	return r.db.Create(participant).Error
}

// DeleteParticipant 删除参与记录
func (r *GormCampaignRepository) DeleteParticipant(id uint) error {
	return r.db.Where("id = ?", id).Delete(&models.GroupBuyingParticipant{}).Error
}

// MarkParticipantPaid 标记参与记录已付款
func (r *GormCampaignRepository) MarkParticipantPaid(id uint, paidAt time.Time) error {
	return r.db.Model(&models.GroupBuyingParticipant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paid":    true,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		}).Error
}

// ListParticipants 获取活动参与者（含用户）
func (r *GormCampaignRepository) ListParticipants(campaignID uint) ([]models.GroupBuyingParticipant, error) {
	var participants []models.GroupBuyingParticipant
	if err := r.db.Preload("User").
		Where("campaign_id = ?", campaignID).
		Order("joined_at asc, id asc").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// ListParticipationsByUser 获取用户参与的活动记录
func (r *GormCampaignRepository) ListParticipationsByUser(userID uint) ([]models.GroupBuyingParticipant, error) {
	var participants []models.GroupBuyingParticipant
	if err := r.db.Preload("Campaign").
		Where("user_id = ?", userID).
		Order("joined_at desc, id desc").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// SumParticipants 汇总活动参与记录
func (r *GormCampaignRepository) SumParticipants(campaignID uint) (ParticipantTotals, error) {
	var participants []models.GroupBuyingParticipant
	if err := r.db.Select("quantity", "contribution").
		Where("campaign_id = ?", campaignID).
		Find(&participants).Error; err != nil {
		return ParticipantTotals{}, err
	}
	totals := ParticipantTotals{Contribution: decimal.Zero}
	for _, participant := range participants {
		totals.Quantity += participant.Quantity
		totals.Count++
		totals.Contribution = totals.Contribution.Add(participant.Contribution.Decimal)
	}
	return totals, nil
}
