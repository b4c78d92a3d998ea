package repository

import (
	"context"
	"errors"
	"fmt"

	orderModel "shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/returns/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
)

type ReturnRepository interface {
	WithTx(tx *gorm.DB) ReturnRepository
	Create(ctx context.Context, r *model.ReturnRequest) error
	GetByID(ctx context.Context, id string) (*model.ReturnRequest, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.ReturnRequest, int64, error)
	// List statuses 为空时不过滤
	List(ctx context.Context, statuses []orderModel.ReturnStatus, offset, limit int) ([]model.ReturnRequest, int64, error)
	HasActiveForOrder(ctx context.Context, orderID string) (bool, error)
	// CompareAndUpdate 整行写回，仅当库中状态仍为 from 时生效
	CompareAndUpdate(ctx context.Context, r *model.ReturnRequest, from orderModel.ReturnStatus) (int64, error)
}

type returnRepository struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) WithTx(tx *gorm.DB) ReturnRepository {
	return &returnRepository{db: tx}
}

func (r *returnRepository) Create(ctx context.Context, rr *model.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(rr).Error
}

func (r *returnRepository) GetByID(ctx context.Context, id string) (*model.ReturnRequest, error) {
	var rr model.ReturnRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("return %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &rr, nil
}

func (r *returnRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.ReturnRequest, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.ReturnRequest{}).Where("user_id = ?", userID), offset, limit)
}

func (r *returnRepository) List(ctx context.Context, statuses []orderModel.ReturnStatus, offset, limit int) ([]model.ReturnRequest, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.ReturnRequest{})
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	return r.page(db, offset, limit)
}

func (r *returnRepository) page(db *gorm.DB, offset, limit int) ([]model.ReturnRequest, int64, error) {
	var list []model.ReturnRequest
	var total int64

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("request_date DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *returnRepository) HasActiveForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ReturnRequest{}).
		Where("order_id = ? AND status IN ?", orderID, orderModel.ActiveReturnStatuses()).
		Count(&count).Error
	return count > 0, err
}

func (r *returnRepository) CompareAndUpdate(ctx context.Context, rr *model.ReturnRequest, from orderModel.ReturnStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(rr).
		Where("status = ?", from).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(rr)
	return result.RowsAffected, result.Error
}
