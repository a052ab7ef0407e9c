package service

import (
	"fmt"
	"strings"

	"github.com/dfn-network/internal/models"
)

// ProductRef 购物车商品引用：自营元器件或联盟商店商品，二者必居其一
type ProductRef interface {
	// Key 商品标识，同一购物车内相同标识的商品合并
	Key() string
	apply(item *models.CartItem)
}

// InternalProductRef 自营目录商品
type InternalProductRef struct {
	ComponentID uint
}

// Key 商品标识
func (r InternalProductRef) Key() string {
	return fmt.Sprintf("component:%d", r.ComponentID)
}

func (r InternalProductRef) apply(item *models.CartItem) {
	id := r.ComponentID
	item.ComponentID = &id
	item.AffiliateStoreID = nil
	item.ExternalProductID = ""
}

// AffiliateProductRef 联盟商店商品
type AffiliateProductRef struct {
	StoreID           uint
	ExternalProductID string
}

// Key 商品标识
func (r AffiliateProductRef) Key() string {
	return fmt.Sprintf("affiliate:%d:%s", r.StoreID, strings.TrimSpace(r.ExternalProductID))
}

func (r AffiliateProductRef) apply(item *models.CartItem) {
	id := r.StoreID
	item.ComponentID = nil
	item.AffiliateStoreID = &id
	item.ExternalProductID = strings.TrimSpace(r.ExternalProductID)
}

// ResolveProductRef 从请求字段构建商品引用，必须恰好提供一个
func ResolveProductRef(componentID, affiliateStoreID *uint, externalProductID string) (ProductRef, error) {
	hasComponent := componentID != nil && *componentID != 0
	hasStore := affiliateStoreID != nil && *affiliateStoreID != 0
	switch {
	case hasComponent && !hasStore:
		return InternalProductRef{ComponentID: *componentID}, nil
	case hasStore && !hasComponent:
		return AffiliateProductRef{StoreID: *affiliateStoreID, ExternalProductID: externalProductID}, nil
	default:
		return nil, ErrCartProductRefInvalid
	}
}

func productRefOf(item *models.CartItem) ProductRef {
	if item == nil {
		return nil
	}
	if item.ComponentID != nil && *item.ComponentID != 0 {
		return InternalProductRef{ComponentID: *item.ComponentID}
	}
	if item.AffiliateStoreID != nil && *item.AffiliateStoreID != 0 {
		return AffiliateProductRef{StoreID: *item.AffiliateStoreID, ExternalProductID: item.ExternalProductID}
	}
	return nil
}
