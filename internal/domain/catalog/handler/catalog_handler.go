package handler

import (
	"net/http"

	"shop_backend/internal/domain/catalog/service"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	IsActive    *bool           `json:"isActive"`
}

func (in ProductInput) toService() service.ProductInput {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return service.ProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    active,
	}
}

type VariantInput struct {
	Name            string          `json:"name" binding:"required"`
	SKU             string          `json:"sku" binding:"required"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Stock           int             `json:"stock" binding:"min=0"`
	IsDefault       bool            `json:"isDefault"`
}

// GetProduct 商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), input.toService())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "Product deleted successfully")
}

func (h *CatalogHandler) AddVariant(c *gin.Context) {
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	variant, err := h.service.AddVariant(c.Request.Context(), c.Param("id"), service.VariantInput{
		Name:            input.Name,
		SKU:             input.SKU,
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		Stock:           input.Stock,
		IsDefault:       input.IsDefault,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, variant)
}

// SetDefaultVariant 设置默认规格
func (h *CatalogHandler) SetDefaultVariant(c *gin.Context) {
	if err := h.service.SetDefaultVariant(c.Request.Context(), c.Param("id"), c.Param("variantId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "Default variant updated")
}
