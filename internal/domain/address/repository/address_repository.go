package repository

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/domain/address/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	GetByID(ctx context.Context, id string) (*model.Address, error)
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *addressRepository) GetByID(ctx context.Context, id string) (*model.Address, error) {
	var address model.Address
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}
