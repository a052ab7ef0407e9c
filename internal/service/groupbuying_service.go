package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/metrics"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"

	"gorm.io/gorm"
)

// CreateCampaignInput 发起团购输入
type CreateCampaignInput struct {
	OrganizerID     uint
	ComponentName   string
	Description     string
	SourceURL       string
	SupplierName    string
	SupplierCountry string
	ImageURL        string
	UnitPrice       models.Money
	Currency        string
	ShippingCost    models.Money
	CustomsDuty     models.Money
	MinimumQuantity int
	MaximumQuantity *int
	Deadline        time.Time
}

// ParticipantView 参与者视图
type ParticipantView struct {
	ID           uint                `json:"id"`
	UserID       uint                `json:"user_id"`
	Quantity     int                 `json:"quantity"`
	Contribution models.Money        `json:"contribution"`
	IsPaid       bool                `json:"is_paid"`
	PaidAt       *time.Time          `json:"paid_at"`
	JoinedAt     time.Time           `json:"joined_at"`
	User         *models.UserProfile `json:"user,omitempty"`
}

// CampaignProgress 团购进度
type CampaignProgress struct {
	QuantityProgress  float64 `json:"quantity_progress"`
	FundingProgress   float64 `json:"funding_progress"`
	IsMinimumMet      bool    `json:"is_minimum_met"`
	RemainingQuantity *int    `json:"remaining_quantity"`
	IsExpired         bool    `json:"is_expired"`
}

// CampaignSummary 列表项
type CampaignSummary struct {
	Campaign  *models.GroupBuyingCampaign `json:"campaign"`
	Organizer *models.UserProfile         `json:"organizer,omitempty"`
	CampaignProgress
}

// CampaignView 团购详情视图
type CampaignView struct {
	Campaign     *models.GroupBuyingCampaign `json:"campaign"`
	Organizer    *models.UserProfile         `json:"organizer,omitempty"`
	Participants []ParticipantView           `json:"participants"`
	CampaignProgress
}

// ParticipationView 我参与的团购
type ParticipationView struct {
	ParticipantView
	Campaign *models.GroupBuyingCampaign `json:"campaign,omitempty"`
}

// JoinResult 加入结果
type JoinResult struct {
	Participant *models.GroupBuyingParticipant `json:"participant"`
	Campaign    *models.GroupBuyingCampaign    `json:"campaign"`
	Funded      bool                           `json:"funded"`
}

// GroupBuyingService 团购服务
type GroupBuyingService struct {
	repo     repository.CampaignRepository
	notifier Notifier
	metrics  *metrics.Collector
	cfg      config.GroupBuyingConfig
	locks    *keyedMutex
	now      func() time.Time
}

// NewGroupBuyingService 创建团购服务
func NewGroupBuyingService(repo repository.CampaignRepository, notifier Notifier, collector *metrics.Collector, cfg config.GroupBuyingConfig) *GroupBuyingService {
	return &GroupBuyingService{
		repo:     repo,
		notifier: notifier,
		metrics:  collector,
		cfg:      cfg,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// CreateCampaign 发起团购
func (s *GroupBuyingService) CreateCampaign(input CreateCampaignInput) (campaign *models.GroupBuyingCampaign, err error) {
	defer func() { s.metrics.CampaignOp("create", err) }()

	if input.OrganizerID == 0 {
		return nil, ErrCampaignInvalid
	}
	name := strings.TrimSpace(input.ComponentName)
	if name == "" {
		return nil, ErrCampaignNameRequired
	}
	if !input.UnitPrice.IsPositive() {
		return nil, ErrCampaignPriceInvalid
	}
	if input.MinimumQuantity < 1 {
		return nil, ErrCampaignMinimumInvalid
	}
	if input.MaximumQuantity != nil && *input.MaximumQuantity < input.MinimumQuantity {
		return nil, ErrCampaignMaximumInvalid
	}
	if input.ShippingCost.IsNegative() || input.CustomsDuty.IsNegative() {
		return nil, ErrCampaignCostInvalid
	}
	now := s.now()
	if !input.Deadline.After(now) {
		return nil, ErrCampaignDeadlineInvalid
	}
	if s.cfg.MaxDeadlineDays > 0 && input.Deadline.After(now.AddDate(0, 0, s.cfg.MaxDeadlineDays)) {
		return nil, categorized(ErrValidation, fmt.Sprintf("deadline must be within %d days", s.cfg.MaxDeadlineDays))
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaultCurrency()
	}
	unitPrice := models.NewMoneyFromDecimal(input.UnitPrice.Decimal)
	shipping := models.NewMoneyFromDecimal(input.ShippingCost.Decimal)
	duty := models.NewMoneyFromDecimal(input.CustomsDuty.Decimal)

	campaign = &models.GroupBuyingCampaign{
		OrganizerID:     input.OrganizerID,
		ComponentName:   name,
		Description:     strings.TrimSpace(input.Description),
		SourceURL:       strings.TrimSpace(input.SourceURL),
		SupplierName:    strings.TrimSpace(input.SupplierName),
		SupplierCountry: strings.TrimSpace(input.SupplierCountry),
		ImageURL:        strings.TrimSpace(input.ImageURL),
		UnitPrice:       unitPrice,
		Currency:        currency,
		ShippingCost:    shipping,
		CustomsDuty:     duty,
		MinimumQuantity: input.MinimumQuantity,
		MaximumQuantity: input.MaximumQuantity,
		TotalFunding:    models.ZeroMoney(),
		TargetFunding:   CalculateTargetFunding(unitPrice, input.MinimumQuantity, shipping, duty),
		Deadline:        input.Deadline,
		Status:          constants.CampaignStatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// JoinCampaign 加入团购
// 检查、写入参与记录、累加与成团判定在同一事务内完成，并按活动串行化
func (s *GroupBuyingService) JoinCampaign(ctx context.Context, userID, campaignID uint, quantity int) (result *JoinResult, err error) {
	defer func() { s.metrics.CampaignOp("join", err) }()

	if userID == 0 {
		return nil, ErrCampaignInvalid
	}
	if quantity < 1 {
		return nil, ErrCampaignQuantityInvalid
	}

	unlock := s.locks.Lock(campaignID)
	defer unlock()

	result = &JoinResult{}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := repo.GetByIDForUpdate(campaignID)
		if err != nil {
			return err
		}
		if err := s.checkJoinable(campaign); err != nil {
			return err
		}
		existing, err := repo.GetParticipant(campaignID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrCampaignAlreadyJoined
		}
		if exceedsCapacity(campaign, quantity) {
			return ErrCampaignCapacityExceeded
		}

		now := s.now()
		participant := &models.GroupBuyingParticipant{
			CampaignID:   campaignID,
			UserID:       userID,
			Quantity:     quantity,
			Contribution: CalculateContribution(campaign, quantity),
			JoinedAt:     now,
			UpdatedAt:    now,
		}
		if err := repo.CreateParticipant(participant); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCampaignAlreadyJoined
			}
			return err
		}
		applied, err := repo.ApplyJoin(campaignID, quantity, participant.Contribution, now)
		if err != nil {
			return err
		}
		if !applied {
			// 条件更新未命中：状态或容量已被其他写入改变
			latest, err := repo.GetByID(campaignID)
			if err != nil {
				return err
			}
			if err := s.checkJoinable(latest); err != nil {
				return err
			}
			return ErrCampaignCapacityExceeded
		}
		funded, err := repo.PromoteToFunding(campaignID, now)
		if err != nil {
			return err
		}
		updated, err := repo.GetByID(campaignID)
		if err != nil {
			return err
		}
		result.Participant = participant
		result.Campaign = updated
		result.Funded = funded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyJoined(ctx, result)
	return result, nil
}

// checkJoinable 活动存在、处于 open 且未过截止时间
func (s *GroupBuyingService) checkJoinable(campaign *models.GroupBuyingCampaign) error {
	if campaign == nil {
		return ErrCampaignNotFound
	}
	if campaign.Status != constants.CampaignStatusOpen {
		return ErrCampaignNotOpen
	}
	if s.now().After(campaign.Deadline) {
		return ErrCampaignExpired
	}
	return nil
}

func exceedsCapacity(campaign *models.GroupBuyingCampaign, quantity int) bool {
	return campaign.MaximumQuantity != nil && campaign.CurrentQuantity+quantity > *campaign.MaximumQuantity
}

// LeaveCampaign 退出团购，已付款不可退出；退出不会回退 funding 状态
func (s *GroupBuyingService) LeaveCampaign(ctx context.Context, userID, campaignID uint) (campaign *models.GroupBuyingCampaign, err error) {
	defer func() { s.metrics.CampaignOp("leave", err) }()

	unlock := s.locks.Lock(campaignID)
	defer unlock()

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(campaignID)
		if err != nil {
			return err
		}
		participant, err := repo.GetParticipant(campaignID, userID)
		if err != nil {
			return err
		}
		if locked == nil || participant == nil {
			return ErrParticipantNotFound
		}
		if participant.IsPaid {
			return ErrParticipantPaid
		}
		if err := repo.DeleteParticipant(participant.ID); err != nil {
			return err
		}
		if err := repo.ApplyLeave(campaignID, participant.Quantity, participant.Contribution, s.now()); err != nil {
			return err
		}
		campaign, err = repo.GetByID(campaignID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if campaign != nil && campaign.OrganizerID != userID {
		s.notify(ctx, NotifyInput{
			UserID:  campaign.OrganizerID,
			Type:    constants.NotificationTypeCampaignLeft,
			Title:   "A participant left your campaign",
			Message: fmt.Sprintf("A participant left %q. Current quantity: %d.", campaign.ComponentName, campaign.CurrentQuantity),
			Link:    campaignLink(campaign.ID),
		})
	}
	return campaign, nil
}

// UpdateStatus 发起人更新活动状态（仅校验归属与状态值，不限制流转顺序）
func (s *GroupBuyingService) UpdateStatus(ctx context.Context, organizerID, campaignID uint, status string) (campaign *models.GroupBuyingCampaign, err error) {
	defer func() { s.metrics.CampaignOp("update_status", err) }()

	normalized := strings.ToLower(strings.TrimSpace(status))
	if !isCampaignStatus(normalized) {
		return nil, ErrCampaignStatusInvalid
	}
	campaign, err = s.repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.OrganizerID != organizerID {
		return nil, ErrCampaignForbidden
	}
	if campaign.Status == normalized {
		return campaign, nil
	}
	now := s.now()
	if err := s.repo.UpdateStatus(campaign.ID, normalized, now); err != nil {
		return nil, err
	}
	campaign.Status = normalized
	campaign.UpdatedAt = now

	s.notifyParticipants(ctx, campaign.ID, NotifyInput{
		Type:    constants.NotificationTypeCampaignStatusChanged,
		Title:   "Campaign status updated",
		Message: fmt.Sprintf("%q is now %s.", campaign.ComponentName, normalized),
		Link:    campaignLink(campaign.ID),
	})
	return campaign, nil
}

// MarkParticipantPaid 发起人确认参与者已付款
func (s *GroupBuyingService) MarkParticipantPaid(ctx context.Context, organizerID, campaignID, participantUserID uint) (participant *models.GroupBuyingParticipant, err error) {
	defer func() { s.metrics.CampaignOp("mark_paid", err) }()

	campaign, err := s.repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.OrganizerID != organizerID {
		return nil, ErrCampaignForbidden
	}
	participant, err = s.repo.GetParticipant(campaignID, participantUserID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}
	if participant.IsPaid {
		return participant, nil
	}
	now := s.now()
	if err := s.repo.MarkParticipantPaid(participant.ID, now); err != nil {
		return nil, err
	}
	participant.IsPaid = true
	participant.PaidAt = &now
	participant.UpdatedAt = now

	s.notify(ctx, NotifyInput{
		UserID:  participant.UserID,
		Type:    constants.NotificationTypeParticipantPaid,
		Title:   "Payment confirmed",
		Message: fmt.Sprintf("Your payment for %q has been confirmed.", campaign.ComponentName),
		Link:    campaignLink(campaign.ID),
	})
	return participant, nil
}

// GetCampaignView 团购详情
func (s *GroupBuyingService) GetCampaignView(campaignID uint) (*CampaignView, error) {
	campaign, err := s.repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	participants, err := s.repo.ListParticipants(campaignID)
	if err != nil {
		return nil, err
	}
	views := make([]ParticipantView, 0, len(participants))
	for i := range participants {
		views = append(views, toParticipantView(&participants[i]))
	}
	return &CampaignView{
		Campaign:         campaign,
		Organizer:        campaign.Organizer.Profile(),
		Participants:     views,
		CampaignProgress: s.progressOf(campaign),
	}, nil
}

// CampaignAudit 活动累计值与参与记录的核对结果
type CampaignAudit struct {
	CampaignID          uint         `json:"campaign_id"`
	CurrentQuantity     int          `json:"current_quantity"`
	ParticipantQuantity int          `json:"participant_quantity"`
	ParticipantCount    int          `json:"participant_count"`
	ParticipantRows     int64        `json:"participant_rows"`
	TotalFunding        models.Money `json:"total_funding"`
	ContributionSum     models.Money `json:"contribution_sum"`
	Consistent          bool         `json:"consistent"`
}

// AuditCampaign 核对活动累计数量、人数、金额与参与记录是否一致
func (s *GroupBuyingService) AuditCampaign(campaignID uint) (*CampaignAudit, error) {
	unlock := s.locks.Lock(campaignID)
	defer unlock()

	campaign, err := s.repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	totals, err := s.repo.SumParticipants(campaignID)
	if err != nil {
		return nil, err
	}
	audit := &CampaignAudit{
		CampaignID:          campaign.ID,
		CurrentQuantity:     campaign.CurrentQuantity,
		ParticipantQuantity: totals.Quantity,
		ParticipantCount:    campaign.ParticipantCount,
		ParticipantRows:     totals.Count,
		TotalFunding:        campaign.TotalFunding,
		ContributionSum:     models.NewMoneyFromDecimal(totals.Contribution),
	}
	audit.Consistent = audit.CurrentQuantity == audit.ParticipantQuantity &&
		int64(audit.ParticipantCount) == audit.ParticipantRows &&
		audit.TotalFunding.Equal(audit.ContributionSum.Decimal)
	if !audit.Consistent {
		logger.Warnw("campaign_totals_mismatch",
			"campaign_id", campaign.ID,
			"current_quantity", audit.CurrentQuantity,
			"participant_quantity", audit.ParticipantQuantity,
			"participant_count", audit.ParticipantCount,
			"participant_rows", audit.ParticipantRows,
			"total_funding", audit.TotalFunding.String(),
			"contribution_sum", audit.ContributionSum.String(),
		)
	}
	return audit, nil
}

// ListCampaigns 团购列表
func (s *GroupBuyingService) ListCampaigns(filter repository.CampaignListFilter) ([]CampaignSummary, int64, error) {
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		if !isCampaignStatus(status) {
			return nil, 0, ErrCampaignStatusInvalid
		}
		filter.Status = status
	}
	campaigns, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	summaries := make([]CampaignSummary, 0, len(campaigns))
	for i := range campaigns {
		campaign := &campaigns[i]
		summaries = append(summaries, CampaignSummary{
			Campaign:         campaign,
			Organizer:        campaign.Organizer.Profile(),
			CampaignProgress: s.progressOf(campaign),
		})
	}
	return summaries, total, nil
}

// ListMyCampaigns 我发起的团购
func (s *GroupBuyingService) ListMyCampaigns(organizerID uint, page, pageSize int) ([]CampaignSummary, int64, error) {
	return s.ListCampaigns(repository.CampaignListFilter{
		Page:        page,
		PageSize:    pageSize,
		OrganizerID: organizerID,
	})
}

// ListMyParticipations 我参与的团购
func (s *GroupBuyingService) ListMyParticipations(userID uint) ([]ParticipationView, error) {
	participants, err := s.repo.ListParticipationsByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]ParticipationView, 0, len(participants))
	for i := range participants {
		views = append(views, ParticipationView{
			ParticipantView: toParticipantView(&participants[i]),
			Campaign:        participants[i].Campaign,
		})
	}
	return views, nil
}

func (s *GroupBuyingService) progressOf(campaign *models.GroupBuyingCampaign) CampaignProgress {
	progress := CampaignProgress{
		QuantityProgress: QuantityProgress(campaign.CurrentQuantity, campaign.MaximumQuantity, campaign.MinimumQuantity),
		FundingProgress:  FundingProgress(campaign.TotalFunding, campaign.TargetFunding),
		IsMinimumMet:     campaign.CurrentQuantity >= campaign.MinimumQuantity,
		IsExpired:        s.now().After(campaign.Deadline),
	}
	if campaign.MaximumQuantity != nil {
		remaining := *campaign.MaximumQuantity - campaign.CurrentQuantity
		if remaining < 0 {
			remaining = 0
		}
		progress.RemainingQuantity = &remaining
	}
	return progress
}

func (s *GroupBuyingService) defaultCurrency() string {
	if currency := strings.ToUpper(strings.TrimSpace(s.cfg.DefaultCurrency)); currency != "" {
		return currency
	}
	return constants.DefaultCurrency
}

func (s *GroupBuyingService) notifyJoined(ctx context.Context, result *JoinResult) {
	campaign := result.Campaign
	if campaign == nil {
		return
	}
	if campaign.OrganizerID != result.Participant.UserID {
		s.notify(ctx, NotifyInput{
			UserID:  campaign.OrganizerID,
			Type:    constants.NotificationTypeCampaignJoined,
			Title:   "New participant joined your campaign",
			Message: fmt.Sprintf("Someone pledged %d unit(s) to %q.", result.Participant.Quantity, campaign.ComponentName),
			Link:    campaignLink(campaign.ID),
		})
	}
	if result.Funded {
		s.notifyParticipants(ctx, campaign.ID, NotifyInput{
			Type:    constants.NotificationTypeCampaignFunding,
			Title:   "Campaign reached its minimum",
			Message: fmt.Sprintf("%q reached %d unit(s) and is now funding.", campaign.ComponentName, campaign.CurrentQuantity),
			Link:    campaignLink(campaign.ID),
		})
	}
}

// notifyParticipants 通知发起人与全部参与者（去重）
func (s *GroupBuyingService) notifyParticipants(ctx context.Context, campaignID uint, template NotifyInput) {
	if s.notifier == nil {
		return
	}
	campaign, err := s.repo.GetByID(campaignID)
	if err != nil || campaign == nil {
		return
	}
	participants, err := s.repo.ListParticipants(campaignID)
	if err != nil {
		return
	}
	seen := map[uint]struct{}{campaign.OrganizerID: {}}
	recipients := []uint{campaign.OrganizerID}
	for _, participant := range participants {
		if _, ok := seen[participant.UserID]; ok {
			continue
		}
		seen[participant.UserID] = struct{}{}
		recipients = append(recipients, participant.UserID)
	}
	for _, userID := range recipients {
		input := template
		input.UserID = userID
		s.notifier.Notify(ctx, input)
	}
}

func (s *GroupBuyingService) notify(ctx context.Context, input NotifyInput) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, input)
}

func toParticipantView(participant *models.GroupBuyingParticipant) ParticipantView {
	return ParticipantView{
		ID:           participant.ID,
		UserID:       participant.UserID,
		Quantity:     participant.Quantity,
		Contribution: participant.Contribution,
		IsPaid:       participant.IsPaid,
		PaidAt:       participant.PaidAt,
		JoinedAt:     participant.JoinedAt,
		User:         participant.User.Profile(),
	}
}

func isCampaignStatus(status string) bool {
	for _, candidate := range constants.CampaignStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func campaignLink(id uint) string {
	return fmt.Sprintf("/groupbuying/%d", id)
}
