package service

import (
	"context"
	"fmt"
	"strings"

	"shop_backend/internal/domain/address/model"
	"shop_backend/internal/domain/address/repository"
	"shop_backend/pkg/apperr"
)

type CreateInput struct {
	FullName     string
	Phone        string
	City         string
	District     string
	Neighborhood string
	AddressLine  string
	PostalCode   string
}

// AddressService 同时作为订单模块的地址提供者
type AddressService interface {
	Create(ctx context.Context, userID string, input CreateInput) (*model.Address, error)
	List(ctx context.Context, userID string) ([]model.Address, error)
	// GetAddress 只能读取自己的地址
	GetAddress(ctx context.Context, userID, addressID string) (*model.Address, error)
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) Create(ctx context.Context, userID string, input CreateInput) (*model.Address, error) {
	for field, value := range map[string]string{
		"fullName":    input.FullName,
		"phone":       input.Phone,
		"city":        input.City,
		"district":    input.District,
		"addressLine": input.AddressLine,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%s is required: %w", field, apperr.ErrInvalidInput)
		}
	}

	address := &model.Address{
		UserID:       userID,
		FullName:     input.FullName,
		Phone:        input.Phone,
		City:         input.City,
		District:     input.District,
		Neighborhood: input.Neighborhood,
		AddressLine:  input.AddressLine,
		PostalCode:   input.PostalCode,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *addressService) GetAddress(ctx context.Context, userID, addressID string) (*model.Address, error) {
	address, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("address %s: %w", addressID, apperr.ErrUnauthorized)
	}
	return address, nil
}
