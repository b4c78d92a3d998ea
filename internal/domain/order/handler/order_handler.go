package handler

import (
	"net/http"

	"shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/order/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type CheckoutInput struct {
	AddressID      string   `json:"addressId" binding:"required,uuid"`
	DiscountCode   string   `json:"discountCode"`
	ShippingMethod string   `json:"shippingMethod"`
	CartItemIDs    []string `json:"cartItemIds" binding:"omitempty,dive,uuid"`
}

type SetStatusInput struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// CheckoutResult 下单结果
type CheckoutResult struct {
	OrderID        string          `json:"orderId"`
	OrderNo        string          `json:"orderNo"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	ShippingFee    decimal.Decimal `json:"shippingFee"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// Checkout 结算购物车，shippingMethod 缺省为 standard
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if input.ShippingMethod == "" {
		input.ShippingMethod = model.ShippingStandard
	}

	order, err := h.service.Checkout(c.Request.Context(), service.CheckoutInput{
		UserID:         middleware.CurrentUserID(c),
		AddressID:      input.AddressID,
		DiscountCode:   input.DiscountCode,
		ShippingMethod: input.ShippingMethod,
		CartItemIDs:    input.CartItemIDs,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, CheckoutResult{
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		ShippingFee:    order.ShippingFee,
		TotalAmount:    order.TotalAmount,
	})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ListOrders(c.Request.Context(), middleware.CurrentUserID(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.service.Cancel(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

// ListAllOrders 管理员查询订单，可按 status 过滤
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	var status model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := model.ParseOrderStatus(raw)
		if err != nil {
			response.FromError(c, err)
			return
		}
		status = parsed
	}

	result, err := h.service.ListAllOrders(c.Request.Context(), status, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	var input SetStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	status, err := model.ParseOrderStatus(input.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.service.SetStatus(c.Request.Context(), service.SetStatusInput{
		OrderID:        c.Param("id"),
		Status:         status,
		ActorID:        middleware.CurrentUserID(c),
		TrackingNumber: input.TrackingNumber,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}
