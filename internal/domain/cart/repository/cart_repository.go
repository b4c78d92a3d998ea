package repository

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/domain/cart/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	// Upsert 按 (user, product, variant) 合并数量，item 回填为合并后的行
	Upsert(ctx context.Context, item *model.CartItem) error
	GetByID(ctx context.Context, id string) (*model.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]model.CartItem, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]model.CartItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

// conflictTarget 对应两条部分唯一索引
func conflictTarget(item *model.CartItem) ([]clause.Column, clause.Where) {
	if item.VariantID == nil {
		return []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "variant_id IS NULL"}}}
	}
	return []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variant_id"}},
		clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "variant_id IS NOT NULL"}}}
}

func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	columns, targetWhere := conflictTarget(item)
	return r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:     columns,
			TargetWhere: targetWhere,
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + EXCLUDED.quantity")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
			},
		},
		clause.Returning{},
	).Create(item).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&items).Error
	return items, err
}

// ListByIDs 只返回属于该用户的条目
func (r *cartRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]model.CartItem, error) {
	var items []model.CartItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("created_at").
		Find(&items).Error
	return items, err
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&model.CartItem{}).Error
}
