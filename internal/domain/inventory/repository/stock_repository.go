package repository

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/domain/catalog/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository 库存台账，所有库存变化都通过条件更新完成
type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository
	// AdjustProductStock stock = stock + delta，结果为负时不更新
	AdjustProductStock(ctx context.Context, productID string, delta int) (int, error)
	// AdjustVariantStock 规格必须属于该商品
	AdjustVariantStock(ctx context.Context, productID, variantID string, delta int) (int, error)
	GetProductStock(ctx context.Context, productID string) (int, error)
	GetVariantStock(ctx context.Context, productID, variantID string) (int, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	return &stockRepository{db: tx}
}

var returningStock = clause.Returning{Columns: []clause.Column{{Name: "stock"}}}

func (r *stockRepository) AdjustProductStock(ctx context.Context, productID string, delta int) (int, error) {
	var product model.Product
	result := r.db.WithContext(ctx).Model(&product).
		Clauses(returningStock).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// 区分不存在和库存不足
		if _, err := r.GetProductStock(ctx, productID); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("product %s: %w", productID, apperr.ErrInsufficientStock)
	}
	return product.Stock, nil
}

func (r *stockRepository) AdjustVariantStock(ctx context.Context, productID, variantID string, delta int) (int, error) {
	var variant model.ProductVariant
	result := r.db.WithContext(ctx).Model(&variant).
		Clauses(returningStock).
		Where("id = ? AND product_id = ? AND stock + ? >= 0", variantID, productID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetVariantStock(ctx, productID, variantID); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("variant %s: %w", variantID, apperr.ErrInsufficientStock)
	}
	return variant.Stock, nil
}

func (r *stockRepository) GetProductStock(ctx context.Context, productID string) (int, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Select("id", "stock").Where("id = ?", productID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return 0, err
	}
	return product.Stock, nil
}

func (r *stockRepository) GetVariantStock(ctx context.Context, productID, variantID string) (int, error) {
	var variant model.ProductVariant
	err := r.db.WithContext(ctx).Select("id", "stock").
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("variant %s of product %s: %w", variantID, productID, apperr.ErrNotFound)
		}
		return 0, err
	}
	return variant.Stock, nil
}
