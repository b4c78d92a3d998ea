package handler

import (
	"net/http"

	"shop_backend/internal/domain/inventory/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/model"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(service service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// AdjustInput 管理员调整库存，delta 为正表示入库
type AdjustInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	VariantID string `json:"variantId" binding:"omitempty,uuid"`
	Delta     int    `json:"delta" binding:"required"`
}

type StockView struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Stock     int    `json:"stock"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var input AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	stock, err := h.service.AdjustStock(c.Request.Context(), input.ProductID, model.StringPtr(input.VariantID), input.Delta)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, StockView{ProductID: input.ProductID, VariantID: input.VariantID, Stock: stock})
}

func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "productId is required")
		return
	}
	variantID := c.Query("variantId")
	if !middleware.ValidUUID(productID) || (variantID != "" && !middleware.ValidUUID(variantID)) {
		response.Error(c, http.StatusNotFound, response.ErrNotFound, "resource not found")
		return
	}

	stock, err := h.service.GetStock(c.Request.Context(), productID, model.StringPtr(variantID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, StockView{ProductID: productID, VariantID: variantID, Stock: stock})
}
