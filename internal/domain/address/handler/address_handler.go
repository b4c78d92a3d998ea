package handler

import (
	"net/http"

	"shop_backend/internal/domain/address/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	service service.AddressService
}

func NewAddressHandler(service service.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

type CreateAddressInput struct {
	FullName     string `json:"fullName" binding:"required,max=100"`
	Phone        string `json:"phone" binding:"required,max=30"`
	City         string `json:"city" binding:"required"`
	District     string `json:"district" binding:"required"`
	Neighborhood string `json:"neighborhood"`
	AddressLine  string `json:"addressLine" binding:"required"`
	PostalCode   string `json:"postalCode"`
}

func (h *AddressHandler) CreateAddress(c *gin.Context) {
	var input CreateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	address, err := h.service.Create(c.Request.Context(), middleware.CurrentUserID(c), service.CreateInput{
		FullName:     input.FullName,
		Phone:        input.Phone,
		City:         input.City,
		District:     input.District,
		Neighborhood: input.Neighborhood,
		AddressLine:  input.AddressLine,
		PostalCode:   input.PostalCode,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, address)
}

func (h *AddressHandler) ListAddresses(c *gin.Context) {
	addresses, err := h.service.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, addresses)
}
