package handler

import (
	"net/http"

	"shop_backend/internal/domain/cart/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/model"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(service service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type AddItemInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	VariantID string `json:"variantId" binding:"omitempty,uuid"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.service.GetCart(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加入购物车，已存在则累加数量
func (h *CartHandler) AddItem(c *gin.Context) {
	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), middleware.CurrentUserID(c),
		input.ProductID, model.StringPtr(input.VariantID), input.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var input UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.UpdateQuantity(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), input.Quantity); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "Cart item updated")
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	if err := h.service.RemoveItem(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "Cart item removed")
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "Cart cleared")
}
