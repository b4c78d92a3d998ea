package handler

import (
	"net/http"

	orderModel "shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/returns/model"
	"shop_backend/internal/domain/returns/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReturnHandler struct {
	service service.ReturnService
}

func NewReturnHandler(service service.ReturnService) *ReturnHandler {
	return &ReturnHandler{service: service}
}

type RequestInput struct {
	OrderID     string `json:"orderId" binding:"required,uuid"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

type ReviewInput struct {
	Approve   *bool  `json:"approve" binding:"required"`
	AdminNote string `json:"adminNote"`
}

type ShipInput struct {
	TrackingNumber string `json:"trackingNumber" binding:"required"`
}

type RefundInput struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" binding:"required"`
	TransactionID string          `json:"transactionId"`
}

func (h *ReturnHandler) RequestReturn(c *gin.Context) {
	var input RequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	rr, err := h.service.RequestReturn(c.Request.Context(), service.RequestInput{
		OrderID:     input.OrderID,
		UserID:      middleware.CurrentUserID(c),
		Reason:      input.Reason,
		Description: input.Description,
	})
	h.reply(c, rr, err)
}

func (h *ReturnHandler) ListMyReturns(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	result, err := h.service.ListByUser(c.Request.Context(), middleware.CurrentUserID(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ReturnHandler) GetReturn(c *gin.Context) {
	rr, err := h.service.GetReturn(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	h.reply(c, rr, err)
}

// CancelReturn 用户和管理员共用，权限在 service 中判断
func (h *ReturnHandler) CancelReturn(c *gin.Context) {
	rr, err := h.service.CancelReturn(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	h.reply(c, rr, err)
}

// ListAllReturns 管理员查询，status 可选
func (h *ReturnHandler) ListAllReturns(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	var statuses []orderModel.ReturnStatus
	if raw := c.Query("status"); raw != "" {
		status, err := orderModel.ParseReturnStatus(raw)
		if err != nil {
			response.FromError(c, err)
			return
		}
		statuses = append(statuses, status)
	}

	result, err := h.service.ListAll(c.Request.Context(), statuses, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ReturnHandler) Review(c *gin.Context) {
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	rr, err := h.service.Review(c.Request.Context(), c.Param("id"), *input.Approve, input.AdminNote)
	h.reply(c, rr, err)
}

func (h *ReturnHandler) MarkShipped(c *gin.Context) {
	var input ShipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	rr, err := h.service.MarkShipped(c.Request.Context(), c.Param("id"), input.TrackingNumber)
	h.reply(c, rr, err)
}

func (h *ReturnHandler) MarkReceived(c *gin.Context) {
	rr, err := h.service.MarkReceived(c.Request.Context(), c.Param("id"))
	h.reply(c, rr, err)
}

func (h *ReturnHandler) MarkInspected(c *gin.Context) {
	rr, err := h.service.MarkInspected(c.Request.Context(), c.Param("id"))
	h.reply(c, rr, err)
}

func (h *ReturnHandler) StartRefund(c *gin.Context) {
	rr, err := h.service.StartRefund(c.Request.Context(), c.Param("id"))
	h.reply(c, rr, err)
}

func (h *ReturnHandler) CompleteRefund(c *gin.Context) {
	var input RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	rr, err := h.service.CompleteRefund(c.Request.Context(), service.RefundInput{
		ReturnID:      c.Param("id"),
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
	})
	h.reply(c, rr, err)
}

func (h *ReturnHandler) reply(c *gin.Context, rr *model.ReturnRequest, err error) {
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rr)
}
