package service

import (
	"testing"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type cartFixture struct {
	db       *gorm.DB
	svc      *CartService
	buyer    *models.User
	makerA   *models.User
	makerB   *models.User
	resistor *models.Component
	mcu      *models.Component
	store    *models.AffiliateStore
}

func setupCart(t *testing.T) *cartFixture {
	t.Helper()
	db := setupServiceDB(t)
	f := &cartFixture{
		db:     db,
		buyer:  seedUser(t, db, "buyer@example.com", constants.UserRoleExplorer),
		makerA: seedUser(t, db, "maker-a@example.com", constants.UserRoleProvider),
		makerB: seedUser(t, db, "maker-b@example.com", constants.UserRoleProvider),
	}
	f.resistor = &models.Component{ProviderID: f.makerA.ID, Name: "10k 0603", Price: money("0.02"), Currency: "USD", InStock: true, IsActive: true}
	f.mcu = &models.Component{ProviderID: f.makerB.ID, Name: "RP2040", Price: money("0.70"), Currency: "USD", InStock: true, IsActive: true}
	require.NoError(t, db.Create(f.resistor).Error)
	require.NoError(t, db.Create(f.mcu).Error)
	f.store = &models.AffiliateStore{Name: "Mouser", IsActive: true}
	require.NoError(t, db.Create(f.store).Error)

	f.svc = NewCartService(
		repository.NewCartRepository(db),
		repository.NewComponentRepository(db),
		repository.NewAffiliateStoreRepository(db),
		nil,
	)
	return f
}

func TestAddItemMergesSameProduct(t *testing.T) {
	f := setupCart(t)

	first, err := f.svc.AddItem(AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.resistor.ID}, Quantity: 100})
	require.NoError(t, err)
	second, err := f.svc.AddItem(AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.resistor.ID}, Quantity: 50})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 150, second.Quantity)
	assert.Equal(t, "10k 0603", second.ProductName)

	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddItemPriceSnapshot(t *testing.T) {
	f := setupCart(t)

	_, err := f.svc.AddItem(AddCartItemInput{
		UserID:    f.buyer.ID,
		Product:   InternalProductRef{ComponentID: f.mcu.ID},
		UnitPrice: money("99.00"),
	})
	assert.ErrorIs(t, err, ErrCartPriceMismatch)
	assert.ErrorIs(t, err, ErrConflict)

	internal, err := f.svc.AddItem(AddCartItemInput{
		UserID:    f.buyer.ID,
		Product:   InternalProductRef{ComponentID: f.mcu.ID},
		UnitPrice: money("0.70"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.70", internal.Price.String())
	assert.Equal(t, 1, internal.Quantity)

	external, err := f.svc.AddItem(AddCartItemInput{
		UserID:      f.buyer.ID,
		Product:     AffiliateProductRef{StoreID: f.store.ID, ExternalProductID: " 595-TPS7A0533 "},
		Quantity:    2,
		UnitPrice:   money("1.234"),
		ProductName: "TPS7A05",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.23", external.Price.String())
	assert.Equal(t, "595-TPS7A0533", external.ExternalProductID)
	assert.Equal(t, "affiliate:"+uintString(f.store.ID)+":595-TPS7A0533", external.ProductKey)

	// 价格变化不影响已加购的快照
	require.NoError(t, f.db.Model(f.mcu).Update("price", money("0.90")).Error)
	view, err := f.svc.GetCartView(f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.16", view.Total.String())
}

func TestAddItemRejections(t *testing.T) {
	f := setupCart(t)

	require.NoError(t, f.db.Model(f.resistor).Update("is_active", false).Error)

	cases := []struct {
		name  string
		input AddCartItemInput
		want  error
	}{
		{name: "no user", input: AddCartItemInput{Product: InternalProductRef{ComponentID: f.mcu.ID}}, want: ErrCartUserInvalid},
		{name: "no product", input: AddCartItemInput{UserID: f.buyer.ID}, want: ErrCartProductRefInvalid},
		{name: "negative quantity", input: AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.mcu.ID}, Quantity: -1}, want: ErrCartQuantityInvalid},
		{name: "negative price", input: AddCartItemInput{UserID: f.buyer.ID, Product: AffiliateProductRef{StoreID: f.store.ID}, UnitPrice: money("-1")}, want: ErrCartPriceInvalid},
		{name: "missing component", input: AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: 9999}}, want: ErrComponentNotFound},
		{name: "inactive component", input: AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.resistor.ID}}, want: ErrComponentUnavailable},
		{name: "missing store", input: AddCartItemInput{UserID: f.buyer.ID, Product: AffiliateProductRef{StoreID: 9999}}, want: ErrAffiliateStoreNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddItem(tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCartItemOwnership(t *testing.T) {
	f := setupCart(t)
	other := seedUser(t, f.db, "other@example.com", constants.UserRoleExplorer)

	item, err := f.svc.AddItem(AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.mcu.ID}, Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.UpdateItemQuantity(other.ID, item.ID, 5)
	assert.ErrorIs(t, err, ErrCartItemForbidden)
	assert.ErrorIs(t, f.svc.RemoveItem(other.ID, item.ID), ErrCartItemForbidden)
	assert.ErrorIs(t, f.svc.RemoveItem(f.buyer.ID, 9999), ErrCartItemForbidden)

	_, err = f.svc.UpdateItemQuantity(f.buyer.ID, item.ID, 0)
	assert.ErrorIs(t, err, ErrCartQuantityInvalid)

	updated, err := f.svc.UpdateItemQuantity(f.buyer.ID, item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	require.NoError(t, f.svc.RemoveItem(f.buyer.ID, item.ID))
	view, err := f.svc.GetCartView(f.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, view.ItemCount)
}

func TestClearCart(t *testing.T) {
	f := setupCart(t)

	// 尚无购物车也视为成功
	require.NoError(t, f.svc.ClearCart(f.buyer.ID))

	_, err := f.svc.AddItem(AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.mcu.ID}})
	require.NoError(t, err)
	_, err = f.svc.AddItem(AddCartItemInput{UserID: f.buyer.ID, Product: InternalProductRef{ComponentID: f.resistor.ID}})
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearCart(f.buyer.ID))
	view, err := f.svc.GetCartView(f.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, view.ItemCount)
	assert.Equal(t, "0.00", view.Total.String())
	assert.NotZero(t, view.CartID)
}

func TestImportAffiliateItemsIsAtomic(t *testing.T) {
	f := setupCart(t)

	_, err := f.svc.ImportAffiliateItems(f.buyer.ID, f.store.ID, nil)
	assert.ErrorIs(t, err, ErrCartImportEmpty)
	_, err = f.svc.ImportAffiliateItems(f.buyer.ID, 9999, []AffiliateImportItem{{ExternalProductID: "x"}})
	assert.ErrorIs(t, err, ErrAffiliateStoreNotFound)

	_, err = f.svc.ImportAffiliateItems(f.buyer.ID, f.store.ID, []AffiliateImportItem{
		{ExternalProductID: "a", Quantity: 1, UnitPrice: money("1.00")},
		{ExternalProductID: "b", Quantity: -2, UnitPrice: money("1.00")},
	})
	assert.ErrorIs(t, err, ErrCartQuantityInvalid)
	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)

	imported, err := f.svc.ImportAffiliateItems(f.buyer.ID, f.store.ID, []AffiliateImportItem{
		{ExternalProductID: "a", Quantity: 1, UnitPrice: money("1.00")},
		{ExternalProductID: "b", UnitPrice: money("2.50")},
		{ExternalProductID: "a", Quantity: 2, UnitPrice: money("1.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	view, err := f.svc.GetCartView(f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, view.Vendors, 1)
	assert.Equal(t, "Mouser", view.Vendors[0].VendorName)
	assert.Equal(t, 2, view.Vendors[0].ItemCount)
	assert.Equal(t, 3, view.Vendors[0].Items[0].Quantity)
	assert.Equal(t, "5.50", view.Total.String())
}

func TestGetCartViewGroupsByVendor(t *testing.T) {
	f := setupCart(t)
	add := func(input AddCartItemInput) {
		t.Helper()
		input.UserID = f.buyer.ID
		_, err := f.svc.AddItem(input)
		require.NoError(t, err)
	}

	add(AddCartItemInput{Product: AffiliateProductRef{StoreID: f.store.ID, ExternalProductID: "cap"}, Quantity: 10, UnitPrice: money("0.10")})
	add(AddCartItemInput{Product: InternalProductRef{ComponentID: f.resistor.ID}, Quantity: 100})
	add(AddCartItemInput{Product: InternalProductRef{ComponentID: f.mcu.ID}, Quantity: 2})

	view, err := f.svc.GetCartView(f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, view.Vendors, 3)
	assert.Equal(t, 3, view.VendorCount)
	assert.Equal(t, 3, view.ItemCount)

	assert.Equal(t, constants.VendorTypeAffiliate, view.Vendors[0].VendorType)
	assert.Equal(t, "1.00", view.Vendors[0].Subtotal.String())
	assert.Equal(t, constants.VendorKeyComponentPrefix+uintString(f.makerA.ID), view.Vendors[1].VendorKey)
	assert.Equal(t, constants.InternalVendorName, view.Vendors[1].VendorName)
	assert.Equal(t, "2.00", view.Vendors[1].Subtotal.String())
	assert.Equal(t, constants.VendorKeyComponentPrefix+uintString(f.makerB.ID), view.Vendors[2].VendorKey)
	assert.Equal(t, "1.40", view.Vendors[2].Subtotal.String())
	assert.Equal(t, "4.40", view.Total.String())

	empty, err := f.svc.GetCartView(f.makerA.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Vendors)
	assert.Zero(t, empty.CartID)
}
