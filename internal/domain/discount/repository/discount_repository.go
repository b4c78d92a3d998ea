package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_backend/internal/domain/discount/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
)

type DiscountRepository interface {
	WithTx(tx *gorm.DB) DiscountRepository
	Create(ctx context.Context, code *model.DiscountCode) error
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	List(ctx context.Context, offset, limit int) ([]model.DiscountCode, int64, error)
	// MarkUsed 仅当 is_used = false 时更新，返回受影响行数
	MarkUsed(ctx context.Context, id, orderID string, usedAt time.Time) (int64, error)
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) WithTx(tx *gorm.DB) DiscountRepository {
	return &discountRepository{db: tx}
}

func (r *discountRepository) Create(ctx context.Context, code *model.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	var dc model.DiscountCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&dc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("code %s: %w", code, apperr.ErrCodeNotFound)
		}
		return nil, err
	}
	return &dc, nil
}

func (r *discountRepository) List(ctx context.Context, offset, limit int) ([]model.DiscountCode, int64, error) {
	var codes []model.DiscountCode
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DiscountCode{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&codes).Error
	return codes, total, err
}

func (r *discountRepository) MarkUsed(ctx context.Context, id, orderID string, usedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.DiscountCode{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":          true,
			"used_at":          usedAt,
			"used_by_order_id": orderID,
		})
	return result.RowsAffected, result.Error
}
