package repository

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/domain/order/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	// Create 连同明细一起插入
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error)
	// List status 为 Unknown 时不过滤
	List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]model.Order, int64, error)
	// UpdateWhereStatus 状态 CAS：仅当当前状态为 expected 时更新，返回受影响行数
	UpdateWhereStatus(ctx context.Context, id string, expected model.OrderStatus, updates map[string]interface{}) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID), offset, limit)
}

func (r *orderRepository) List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]model.Order, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Order{})
	if status.Valid() {
		db = db.Where("status = ?", status)
	}
	return r.page(db, offset, limit)
}

func (r *orderRepository) page(db *gorm.DB, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Items").Order("order_date DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateWhereStatus(ctx context.Context, id string, expected model.OrderStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return result.RowsAffected, result.Error
}
