package service

import (
	"fmt"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"
)

// CartItemView 购物车项视图
type CartItemView struct {
	ID                 uint         `json:"id"`
	ProductKey         string       `json:"product_key"`
	ComponentID        *uint        `json:"component_id,omitempty"`
	AffiliateStoreID   *uint        `json:"affiliate_store_id,omitempty"`
	ExternalProductID  string       `json:"external_product_id,omitempty"`
	ExternalProductURL string       `json:"external_product_url,omitempty"`
	ProductName        string       `json:"product_name"`
	ProductImage       string       `json:"product_image,omitempty"`
	Quantity           int          `json:"quantity"`
	UnitPrice          models.Money `json:"unit_price"`
	LineTotal          models.Money `json:"line_total"`
}

// CartVendorGroup 按商家分组的购物车项
type CartVendorGroup struct {
	VendorKey  string         `json:"vendor_key"`
	VendorType string         `json:"vendor_type"`
	VendorName string         `json:"vendor_name"`
	Items      []CartItemView `json:"items"`
	ItemCount  int            `json:"item_count"`
	Subtotal   models.Money   `json:"subtotal"`
}

// CartView 购物车视图
type CartView struct {
	CartID      uint              `json:"cart_id"`
	Vendors     []CartVendorGroup `json:"vendors"`
	ItemCount   int               `json:"item_count"`
	VendorCount int               `json:"vendor_count"`
	Total       models.Money      `json:"total"`
}

type vendorIdentity struct {
	key   string
	kind  string
	label string
}

// resolveVendor 商家归属：自营按供应商聚合，联盟按商店聚合，其余归入 unknown
func resolveVendor(item *models.CartItem) vendorIdentity {
	switch productRefOf(item).(type) {
	case InternalProductRef:
		if item.Component != nil {
			return vendorIdentity{
				key:   fmt.Sprintf("%s%d", constants.VendorKeyComponentPrefix, item.Component.ProviderID),
				kind:  constants.VendorTypeInternal,
				label: constants.InternalVendorName,
			}
		}
	case AffiliateProductRef:
		if item.AffiliateStore != nil {
			return vendorIdentity{
				key:   fmt.Sprintf("%s%d", constants.VendorKeyAffiliatePrefix, item.AffiliateStore.ID),
				kind:  constants.VendorTypeAffiliate,
				label: item.AffiliateStore.Name,
			}
		}
	}
	return vendorIdentity{
		key:   constants.VendorKeyUnknown,
		kind:  constants.VendorTypeUnknown,
		label: constants.UnknownVendorName,
	}
}

// buildCartView 分组顺序以商家首次出现的顺序为准，金额均使用加购时的价格快照
func buildCartView(cartID uint, items []models.CartItem) *CartView {
	view := &CartView{
		CartID:  cartID,
		Vendors: make([]CartVendorGroup, 0),
		Total:   models.ZeroMoney(),
	}
	index := make(map[string]int)
	for i := range items {
		item := &items[i]
		vendor := resolveVendor(item)
		pos, ok := index[vendor.key]
		if !ok {
			pos = len(view.Vendors)
			index[vendor.key] = pos
			view.Vendors = append(view.Vendors, CartVendorGroup{
				VendorKey:  vendor.key,
				VendorType: vendor.kind,
				VendorName: vendor.label,
				Items:      make([]CartItemView, 0, 1),
				Subtotal:   models.ZeroMoney(),
			})
		}
		line := item.Price.MulInt(item.Quantity)
		group := &view.Vendors[pos]
		group.Items = append(group.Items, CartItemView{
			ID:                 item.ID,
			ProductKey:         item.ProductKey,
			ComponentID:        item.ComponentID,
			AffiliateStoreID:   item.AffiliateStoreID,
			ExternalProductID:  item.ExternalProductID,
			ExternalProductURL: item.ExternalProductURL,
			ProductName:        item.ProductName,
			ProductImage:       item.ProductImage,
			Quantity:           item.Quantity,
			UnitPrice:          item.Price,
			LineTotal:          line,
		})
		group.ItemCount++
		group.Subtotal = group.Subtotal.Add(line)
	}
	for _, group := range view.Vendors {
		view.ItemCount += group.ItemCount
		view.Total = view.Total.Add(group.Subtotal)
	}
	view.VendorCount = len(view.Vendors)
	return view
}
