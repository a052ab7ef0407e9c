package public

import (
	"strings"
	"time"

	handlershared "github.com/dfn-network/internal/http/handlers/shared"
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCampaignRequest 发起团购请求
type CreateCampaignRequest struct {
	ComponentName   string       `json:"component_name" binding:"required"`
	Description     string       `json:"description"`
	SourceURL       string       `json:"source_url"`
	SupplierName    string       `json:"supplier_name"`
	SupplierCountry string       `json:"supplier_country"`
	ImageURL        string       `json:"image_url"`
	UnitPrice       models.Money `json:"unit_price"`
	Currency        string       `json:"currency"`
	ShippingCost    models.Money `json:"shipping_cost"`
	CustomsDuty     models.Money `json:"customs_duty"`
	MinimumQuantity int          `json:"minimum_quantity"`
	MaximumQuantity *int         `json:"maximum_quantity"`
	Deadline        time.Time    `json:"deadline" binding:"required"`
}

// JoinCampaignRequest 参团请求
type JoinCampaignRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCampaignStatusRequest 状态变更请求
type UpdateCampaignStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListCampaigns 团购列表
func (h *Handler) ListCampaigns(c *gin.Context) {
	page, pageSize := handlershared.ReadPagination(c)
	items, total, err := h.GroupBuyingService.ListCampaigns(repository.CampaignListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetCampaign 团购详情
func (h *Handler) GetCampaign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.GroupBuyingService.GetCampaignView(id)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_fetch_failed")
		return
	}
	response.Success(c, view)
}

// CreateCampaign 发起团购，发起人为当前用户
func (h *Handler) CreateCampaign(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	campaign, err := h.GroupBuyingService.CreateCampaign(service.CreateCampaignInput{
		OrganizerID:     uid,
		ComponentName:   req.ComponentName,
		Description:     req.Description,
		SourceURL:       req.SourceURL,
		SupplierName:    req.SupplierName,
		SupplierCountry: req.SupplierCountry,
		ImageURL:        req.ImageURL,
		UnitPrice:       req.UnitPrice,
		Currency:        req.Currency,
		ShippingCost:    req.ShippingCost,
		CustomsDuty:     req.CustomsDuty,
		MinimumQuantity: req.MinimumQuantity,
		MaximumQuantity: req.MaximumQuantity,
		Deadline:        req.Deadline,
	})
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_update_failed")
		return
	}
	response.Created(c, campaign)
}

// ListMyCampaigns 我发起的团购
func (h *Handler) ListMyCampaigns(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ReadPagination(c)
	items, total, err := h.GroupBuyingService.ListMyCampaigns(uid, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// ListMyParticipations 我参与的团购
func (h *Handler) ListMyParticipations(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.GroupBuyingService.ListMyParticipations(uid)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_fetch_failed")
		return
	}
	response.Success(c, gin.H{"items": items})
}

// JoinCampaign 参加团购
func (h *Handler) JoinCampaign(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req JoinCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.GroupBuyingService.JoinCampaign(c.Request.Context(), uid, id, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_update_failed")
		return
	}
	response.Created(c, result)
}

// LeaveCampaign 退出团购
func (h *Handler) LeaveCampaign(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	campaign, err := h.GroupBuyingService.LeaveCampaign(c.Request.Context(), uid, id)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_update_failed")
		return
	}
	response.Success(c, gin.H{"left": true, "campaign": campaign})
}

// UpdateCampaignStatus 发起人变更团购状态
func (h *Handler) UpdateCampaignStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	campaign, err := h.GroupBuyingService.UpdateStatus(c.Request.Context(), uid, id, req.Status)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_update_failed")
		return
	}
	response.Success(c, campaign)
}

// MarkParticipantPaid 发起人登记参与者已付款
func (h *Handler) MarkParticipantPaid(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	participantUserID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	participant, err := h.GroupBuyingService.MarkParticipantPaid(c.Request.Context(), uid, id, participantUserID)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_update_failed")
		return
	}
	response.Success(c, participant)
}

// AuditCampaign 核对团购累计值（管理员）
func (h *Handler) AuditCampaign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	audit, err := h.GroupBuyingService.AuditCampaign(id)
	if err != nil {
		respondWithMappedError(c, err, campaignErrorRules, "error.campaign_fetch_failed")
		return
	}
	response.Success(c, audit)
}
