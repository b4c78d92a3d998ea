package handler

import (
	"net/http"

	"shop_backend/internal/domain/discount/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DiscountHandler struct {
	service service.DiscountService
}

func NewDiscountHandler(service service.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: service}
}

type CreateDiscountInput struct {
	Code               string          `json:"code" binding:"required,max=50"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	MinimumOrderAmount decimal.Decimal `json:"minimumOrderAmount"`
	UserID             string          `json:"userId" binding:"omitempty,uuid"`
}

type ValidateInput struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CreateDiscount 管理员创建优惠码
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var input CreateDiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	dc, err := h.service.Create(c.Request.Context(), service.CreateInput{
		Code:               input.Code,
		DiscountPercentage: input.DiscountPercentage,
		MinimumOrderAmount: input.MinimumOrderAmount,
		UserID:             input.UserID,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, dc)
}

func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// ValidateDiscount 结算前预览折扣，不会占用优惠码
func (h *DiscountHandler) ValidateDiscount(c *gin.Context) {
	var input ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Validate(c.Request.Context(), input.Code, middleware.CurrentUserID(c), input.Subtotal)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}
