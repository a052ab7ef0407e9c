package service

import (
	"strconv"
	"testing"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestBuildCartViewUnknownVendor(t *testing.T) {
	storeID := uint(4)
	items := []models.CartItem{
		{ID: 1, Quantity: 2, Price: money("1.50")},
		// 商店已被删除，预加载为空
		{ID: 2, AffiliateStoreID: &storeID, Quantity: 1, Price: money("3.00")},
	}

	view := buildCartView(9, items)
	require.Len(t, view.Vendors, 1)
	group := view.Vendors[0]
	assert.Equal(t, constants.VendorKeyUnknown, group.VendorKey)
	assert.Equal(t, constants.UnknownVendorName, group.VendorName)
	assert.Equal(t, 2, group.ItemCount)
	assert.Equal(t, "6.00", group.Subtotal.String())
	assert.Equal(t, "3.00", group.Items[0].LineTotal.String())
	assert.Equal(t, uint(9), view.CartID)
}

func TestBuildCartViewSameProviderSharesGroup(t *testing.T) {
	first, second := uint(1), uint(2)
	provider := &models.Component{ProviderID: 7}
	items := []models.CartItem{
		{ID: 1, ComponentID: &first, Component: provider, Quantity: 1, Price: money("0.25")},
		{ID: 2, ComponentID: &second, Component: provider, Quantity: 4, Price: money("0.25")},
	}

	view := buildCartView(1, items)
	require.Len(t, view.Vendors, 1)
	assert.Equal(t, "component_7", view.Vendors[0].VendorKey)
	assert.Equal(t, "1.25", view.Total.String())
}

func TestResolveProductRef(t *testing.T) {
	component, store, zero := uint(3), uint(5), uint(0)

	ref, err := ResolveProductRef(&component, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "component:3", ref.Key())

	ref, err = ResolveProductRef(&zero, &store, "sku-1")
	require.NoError(t, err)
	assert.Equal(t, "affiliate:5:sku-1", ref.Key())

	_, err = ResolveProductRef(&component, &store, "")
	assert.ErrorIs(t, err, ErrCartProductRefInvalid)
	_, err = ResolveProductRef(nil, nil, "sku-1")
	assert.ErrorIs(t, err, ErrCartProductRefInvalid)
}
