package public

import (
	"errors"

	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/i18n"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

// 错误分类兜底规则，顺序即优先级
var categoryErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrCapacity, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrInvalidState, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrExpired, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrUnauthorized, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.not_found"},
	{target: service.ErrConflict, code: response.CodeConflict, key: "error.bad_request"},
}

// rule 依据错误所属分类确定状态码
func rule(target error, key string) mappedHandlerError {
	code := response.CodeInternal
	for _, category := range categoryErrorRules {
		if errors.Is(target, category.target) {
			code = category.code
			break
		}
	}
	return mappedHandlerError{target: target, code: code, key: key}
}

var authErrorRules = []mappedHandlerError{
	rule(service.ErrInvalidEmail, "error.email_invalid"),
	rule(service.ErrRoleInvalid, "error.role_invalid"),
	rule(service.ErrEmailExists, "error.email_exists"),
	rule(service.ErrInvalidCredentials, "error.invalid_credentials"),
	rule(service.ErrUserDisabled, "error.user_disabled"),
	rule(service.ErrInvalidToken, "error.token_invalid"),
}

var catalogErrorRules = []mappedHandlerError{
	rule(service.ErrComponentNotFound, "error.component_not_found"),
	rule(service.ErrComponentInvalid, "error.component_invalid"),
	rule(service.ErrAffiliateStoreNotFound, "error.affiliate_store_not_found"),
	rule(service.ErrAffiliateStoreInvalid, "error.affiliate_store_invalid"),
}

var cartErrorRules = []mappedHandlerError{
	rule(service.ErrCartUserInvalid, "error.cart_user_invalid"),
	rule(service.ErrCartProductRefInvalid, "error.cart_product_ref_invalid"),
	rule(service.ErrCartQuantityInvalid, "error.cart_quantity_invalid"),
	rule(service.ErrCartPriceInvalid, "error.cart_price_invalid"),
	rule(service.ErrCartPriceMismatch, "error.cart_price_mismatch"),
	rule(service.ErrCartImportEmpty, "error.cart_import_empty"),
	rule(service.ErrCartItemForbidden, "error.cart_item_forbidden"),
	rule(service.ErrComponentNotFound, "error.component_not_found"),
	rule(service.ErrComponentUnavailable, "error.component_unavailable"),
	rule(service.ErrAffiliateStoreNotFound, "error.affiliate_store_not_found"),
}

var campaignErrorRules = []mappedHandlerError{
	rule(service.ErrCampaignNameRequired, "error.campaign_name_required"),
	rule(service.ErrCampaignPriceInvalid, "error.campaign_price_invalid"),
	rule(service.ErrCampaignMinimumInvalid, "error.campaign_minimum_invalid"),
	rule(service.ErrCampaignMaximumInvalid, "error.campaign_maximum_invalid"),
	rule(service.ErrCampaignCostInvalid, "error.campaign_cost_invalid"),
	rule(service.ErrCampaignDeadlineInvalid, "error.campaign_deadline_invalid"),
	rule(service.ErrCampaignQuantityInvalid, "error.campaign_quantity_invalid"),
	rule(service.ErrCampaignStatusInvalid, "error.campaign_status_invalid"),
	rule(service.ErrCampaignInvalid, "error.campaign_invalid"),
	rule(service.ErrCampaignNotFound, "error.campaign_not_found"),
	rule(service.ErrCampaignNotOpen, "error.campaign_not_open"),
	rule(service.ErrCampaignExpired, "error.campaign_expired"),
	rule(service.ErrCampaignAlreadyJoined, "error.campaign_already_joined"),
	rule(service.ErrCampaignCapacityExceeded, "error.campaign_capacity_exceeded"),
	rule(service.ErrCampaignForbidden, "error.campaign_forbidden"),
	rule(service.ErrParticipantNotFound, "error.participant_not_found"),
	rule(service.ErrParticipantPaid, "error.participant_paid"),
}

var notificationErrorRules = []mappedHandlerError{
	rule(service.ErrNotificationNotFound, "error.notification_not_found"),
}

// respondWithMappedError 先匹配具体错误，再按分类兜底，均未命中时返回 500 并记录原始错误
func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackKey string) {
	if errors.Is(err, service.ErrWeakPassword) {
		respondPasswordPolicyError(c, err)
		return
	}
	for _, r := range rules {
		if errors.Is(err, r.target) {
			respondError(c, r.code, r.key, nil)
			return
		}
	}
	for _, r := range categoryErrorRules {
		if errors.Is(err, r.target) {
			respondErrorWithMsg(c, r.code, err.Error(), nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}

func respondPasswordPolicyError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &perr) {
		msg := i18n.Sprintf(locale, perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
}
