package public

import (
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求，component_id 与 affiliate_store_id 二选一
type AddCartItemRequest struct {
	ComponentID        *uint        `json:"component_id"`
	AffiliateStoreID   *uint        `json:"affiliate_store_id"`
	ExternalProductID  string       `json:"external_product_id"`
	ExternalProductURL string       `json:"external_product_url"`
	ProductName        string       `json:"product_name"`
	ProductImage       string       `json:"product_image"`
	Quantity           int          `json:"quantity"`
	Price              models.Money `json:"price"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ImportCartItem 联盟商品导入项
type ImportCartItem struct {
	ExternalProductID  string       `json:"external_product_id" binding:"required"`
	ExternalProductURL string       `json:"external_product_url"`
	ProductName        string       `json:"product_name"`
	ProductImage       string       `json:"product_image"`
	Quantity           int          `json:"quantity"`
	Price              models.Money `json:"price"`
}

// ImportCartRequest 联盟商品批量导入请求
type ImportCartRequest struct {
	AffiliateStoreID uint             `json:"affiliate_store_id" binding:"required"`
	Items            []ImportCartItem `json:"items" binding:"dive"`
}

// GetCart 获取按供应方分组的购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCartView(uid)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_fetch_failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem 加购，同一商品合并数量
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ref, err := service.ResolveProductRef(req.ComponentID, req.AffiliateStoreID, req.ExternalProductID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	item, err := h.CartService.AddItem(service.AddCartItemInput{
		UserID:             uid,
		Product:            ref,
		Quantity:           req.Quantity,
		UnitPrice:          req.Price,
		ExternalProductURL: req.ExternalProductURL,
		ProductName:        req.ProductName,
		ProductImage:       req.ProductImage,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	response.Created(c, item)
}

// UpdateCartItem 修改购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	item, err := h.CartService.UpdateItemQuantity(uid, itemID, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, item)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(uid, itemID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.ClearCart(uid); err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// ImportCartItems 从联盟商店批量导入
func (h *Handler) ImportCartItems(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ImportCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	items := make([]service.AffiliateImportItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.AffiliateImportItem{
			ExternalProductID:  item.ExternalProductID,
			ExternalProductURL: item.ExternalProductURL,
			ProductName:        item.ProductName,
			ProductImage:       item.ProductImage,
			Quantity:           item.Quantity,
			UnitPrice:          item.Price,
		})
	}
	imported, err := h.CartService.ImportAffiliateItems(uid, req.AffiliateStoreID, items)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"imported": imported})
}
