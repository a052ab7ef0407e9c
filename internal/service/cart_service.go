package service

import (
	"strings"
	"time"

	"github.com/dfn-network/internal/metrics"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/repository"

	"gorm.io/gorm"
)

// AddCartItemInput 加购输入
type AddCartItemInput struct {
	UserID             uint
	Product            ProductRef
	Quantity           int
	UnitPrice          models.Money
	ExternalProductURL string
	ProductName        string
	ProductImage       string
}

// AffiliateImportItem 联盟商店批量导入项
type AffiliateImportItem struct {
	ExternalProductID  string
	ExternalProductURL string
	ProductName        string
	ProductImage       string
	Quantity           int
	UnitPrice          models.Money
}

// CartService 购物车服务
type CartService struct {
	cartRepo      repository.CartRepository
	componentRepo repository.ComponentRepository
	storeRepo     repository.AffiliateStoreRepository
	metrics       *metrics.Collector
	now           func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, componentRepo repository.ComponentRepository, storeRepo repository.AffiliateStoreRepository, collector *metrics.Collector) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		componentRepo: componentRepo,
		storeRepo:     storeRepo,
		metrics:       collector,
		now:           time.Now,
	}
}

// AddItem 加入购物车，同一商品合并数量
// 自营商品以目录价格作为快照，调用方若带价格必须与目录一致；联盟商品使用调用方提供的价格
func (s *CartService) AddItem(input AddCartItemInput) (item *models.CartItem, err error) {
	defer func() { s.metrics.CartOp("add_item", err) }()

	if input.UserID == 0 {
		return nil, ErrCartUserInvalid
	}
	if input.Product == nil {
		return nil, ErrCartProductRefInvalid
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrCartQuantityInvalid
	}
	if input.UnitPrice.IsNegative() {
		return nil, ErrCartPriceInvalid
	}

	now := s.now()
	candidate := &models.CartItem{
		ProductKey:         input.Product.Key(),
		ExternalProductURL: strings.TrimSpace(input.ExternalProductURL),
		ProductName:        strings.TrimSpace(input.ProductName),
		ProductImage:       strings.TrimSpace(input.ProductImage),
		Quantity:           quantity,
		Price:              models.NewMoneyFromDecimal(input.UnitPrice.Decimal),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	input.Product.apply(candidate)

	switch ref := input.Product.(type) {
	case InternalProductRef:
		component, err := s.componentRepo.GetByID(ref.ComponentID)
		if err != nil {
			return nil, err
		}
		if component == nil {
			return nil, ErrComponentNotFound
		}
		if !component.IsActive {
			return nil, ErrComponentUnavailable
		}
		if !input.UnitPrice.IsZero() && !candidate.Price.Equal(component.Price.Decimal) {
			return nil, ErrCartPriceMismatch
		}
		candidate.Price = component.Price
		if candidate.ProductName == "" {
			candidate.ProductName = component.Name
		}
		if candidate.ProductImage == "" {
			candidate.ProductImage = component.ImageURL
		}
	case AffiliateProductRef:
		store, err := s.storeRepo.GetByID(ref.StoreID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, ErrAffiliateStoreNotFound
		}
	}

	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := repo.GetOrCreateByUserID(input.UserID)
		if err != nil {
			return err
		}
		candidate.CartID = cart.ID
		if err := repo.MergeItem(candidate); err != nil {
			return err
		}
		item, err = repo.GetItemByProductKey(cart.ID, candidate.ProductKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity 覆盖购物车项数量
func (s *CartService) UpdateItemQuantity(userID, itemID uint, quantity int) (item *models.CartItem, err error) {
	defer func() { s.metrics.CartOp("update_item", err) }()

	if quantity < 1 {
		return nil, ErrCartQuantityInvalid
	}
	item, err = s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity, now); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	item.UpdatedAt = now
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) (err error) {
	defer func() { s.metrics.CartOp("remove_item", err) }()

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(item.ID)
}

// ClearCart 清空购物车（购物车不存在时视为成功）
func (s *CartService) ClearCart(userID uint) (err error) {
	defer func() { s.metrics.CartOp("clear", err) }()

	if userID == 0 {
		return ErrCartUserInvalid
	}
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.ClearItems(cart.ID)
}

// ImportAffiliateItems 批量导入联盟商店商品，全部成功或全部回滚
func (s *CartService) ImportAffiliateItems(userID, storeID uint, items []AffiliateImportItem) (imported int, err error) {
	defer func() { s.metrics.CartOp("import", err) }()

	if userID == 0 {
		return 0, ErrCartUserInvalid
	}
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return 0, err
	}
	if store == nil {
		return 0, ErrAffiliateStoreNotFound
	}
	if len(items) == 0 {
		return 0, ErrCartImportEmpty
	}

	now := s.now()
	candidates := make([]*models.CartItem, 0, len(items))
	for _, raw := range items {
		quantity := raw.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			return 0, ErrCartQuantityInvalid
		}
		if raw.UnitPrice.IsNegative() {
			return 0, ErrCartPriceInvalid
		}
		ref := AffiliateProductRef{StoreID: store.ID, ExternalProductID: raw.ExternalProductID}
		candidate := &models.CartItem{
			ProductKey:         ref.Key(),
			ExternalProductURL: strings.TrimSpace(raw.ExternalProductURL),
			ProductName:        strings.TrimSpace(raw.ProductName),
			ProductImage:       strings.TrimSpace(raw.ProductImage),
			Quantity:           quantity,
			Price:              models.NewMoneyFromDecimal(raw.UnitPrice.Decimal),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		ref.apply(candidate)
		candidates = append(candidates, candidate)
	}

	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := repo.GetOrCreateByUserID(userID)
		if err != nil {
			return err
		}
		for _, candidate := range candidates {
			candidate.CartID = cart.ID
			if err := repo.MergeItem(candidate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// GetCartView 获取按商家分组的购物车视图
func (s *CartService) GetCartView(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartUserInvalid
	}
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return buildCartView(0, nil), nil
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	return buildCartView(cart.ID, items), nil
}

// ownedItem 读取并校验归属；不存在与不属于当前用户同样视为越权
func (s *CartService) ownedItem(userID, itemID uint) (*models.CartItem, error) {
	if userID == 0 {
		return nil, ErrCartUserInvalid
	}
	item, err := s.cartRepo.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Cart == nil || item.Cart.UserID != userID {
		return nil, ErrCartItemForbidden
	}
	return item, nil
}
