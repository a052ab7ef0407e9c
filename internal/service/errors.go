package service

import (
	"errors"
	"fmt"
)

// 错误分类，具体错误均包装其一，便于统一映射 HTTP 状态
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")
	ErrUnauthorized = errors.New("unauthorized")
)

func categorized(category error, message string) error {
	return fmt.Errorf("%w: %s", category, message)
}

// 购物车错误
var (
	ErrCartUserInvalid        = categorized(ErrValidation, "user is required")
	ErrCartProductRefInvalid  = categorized(ErrValidation, "exactly one of component or affiliate store is required")
	ErrCartQuantityInvalid    = categorized(ErrValidation, "quantity must be at least 1")
	ErrCartPriceInvalid       = categorized(ErrValidation, "price must not be negative")
	ErrCartPriceMismatch      = categorized(ErrConflict, "price differs from current catalog price")
	ErrCartImportEmpty        = categorized(ErrValidation, "import items must not be empty")
	ErrCartItemForbidden      = categorized(ErrForbidden, "cart item does not belong to user")
	ErrComponentNotFound      = categorized(ErrNotFound, "component not found")
	ErrComponentUnavailable   = categorized(ErrValidation, "component is not available")
	ErrAffiliateStoreNotFound = categorized(ErrNotFound, "affiliate store not found")
)

// 团购错误
var (
	ErrCampaignInvalid          = categorized(ErrValidation, "campaign input invalid")
	ErrCampaignNameRequired     = categorized(ErrValidation, "component name is required")
	ErrCampaignPriceInvalid     = categorized(ErrValidation, "unit price must be positive")
	ErrCampaignMinimumInvalid   = categorized(ErrValidation, "minimum quantity must be at least 1")
	ErrCampaignMaximumInvalid   = categorized(ErrValidation, "maximum quantity must not be below minimum quantity")
	ErrCampaignCostInvalid      = categorized(ErrValidation, "shipping cost and customs duty must not be negative")
	ErrCampaignDeadlineInvalid  = categorized(ErrValidation, "deadline must be in the future")
	ErrCampaignQuantityInvalid  = categorized(ErrValidation, "quantity must be at least 1")
	ErrCampaignStatusInvalid    = categorized(ErrValidation, "unknown campaign status")
	ErrCampaignNotFound         = categorized(ErrNotFound, "campaign not found")
	ErrCampaignNotOpen          = categorized(ErrInvalidState, "campaign is not open")
	ErrCampaignExpired          = categorized(ErrExpired, "campaign deadline has passed")
	ErrCampaignAlreadyJoined    = categorized(ErrConflict, "already joined this campaign")
	ErrCampaignCapacityExceeded = categorized(ErrCapacity, "campaign maximum quantity exceeded")
	ErrCampaignForbidden        = categorized(ErrForbidden, "only the organizer can manage this campaign")
	ErrParticipantNotFound      = categorized(ErrNotFound, "participation not found")
	ErrParticipantPaid          = categorized(ErrInvalidState, "cannot leave after payment")
)

// 目录与通知错误
var (
	ErrComponentInvalid      = categorized(ErrValidation, "component input invalid")
	ErrAffiliateStoreInvalid = categorized(ErrValidation, "affiliate store input invalid")
	ErrNotificationNotFound  = categorized(ErrNotFound, "notification not found")
)

// 认证错误
var (
	ErrInvalidEmail       = categorized(ErrValidation, "invalid email")
	ErrWeakPassword       = categorized(ErrValidation, "password does not satisfy policy")
	ErrRoleInvalid        = categorized(ErrValidation, "role is not allowed")
	ErrEmailExists        = categorized(ErrConflict, "email already registered")
	ErrInvalidCredentials = categorized(ErrUnauthorized, "invalid email or password")
	ErrUserDisabled       = categorized(ErrForbidden, "user disabled")
	ErrInvalidToken       = categorized(ErrUnauthorized, "invalid token")
)
