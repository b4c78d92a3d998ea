package repository

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/domain/catalog/model"
	"shop_backend/pkg/apperr"

	"gorm.io/gorm"
)

// CatalogRepository 商品与规格
type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository

	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetStockLevels(ctx context.Context, productID string) (*StockLevels, error)
	ListProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	GetVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	ListVariantsByIDs(ctx context.Context, ids []string) ([]model.ProductVariant, error)
	ClearDefaultVariant(ctx context.Context, productID string) error
	MarkDefaultVariant(ctx context.Context, productID, variantID string) (int64, error)
	DeleteVariantsByProduct(ctx context.Context, productID string) error

	// 删除商品前的引用检查
	CountOrderItemRefs(ctx context.Context, productID string) (int64, error)
	DeleteCartItemsByProduct(ctx context.Context, productID string) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *gorm.DB) CatalogRepository {
	return &catalogRepository{db: tx}
}

func (r *catalogRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Variants").Create(product).Error
}

// UpdateProduct 只更新基础信息，库存只能通过库存台账修改
func (r *catalogRepository) UpdateProduct(ctx context.Context, product *model.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "is_active").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", product.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("is_default DESC, created_at") }).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) ListProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *catalogRepository) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// StockLevels 商品及其规格的当前库存
type StockLevels struct {
	Product  int
	Variants map[string]int
}

type stockRow struct {
	ID    string
	Stock int
}

// GetStockLevels 只读库存列，用于给缓存的商品详情覆盖实时库存
func (r *catalogRepository) GetStockLevels(ctx context.Context, productID string) (*StockLevels, error) {
	db := r.db.WithContext(ctx)

	var product stockRow
	err := db.Model(&model.Product{}).Select("id", "stock").Where("id = ?", productID).Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return nil, err
	}

	var variants []stockRow
	if err := db.Model(&model.ProductVariant{}).Select("id", "stock").Where("product_id = ?", productID).Find(&variants).Error; err != nil {
		return nil, err
	}

	levels := &StockLevels{Product: product.Stock, Variants: make(map[string]int, len(variants))}
	for _, v := range variants {
		levels.Variants[v.ID] = v.Stock
	}
	return levels, nil
}

func (r *catalogRepository) GetVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &variant, nil
}

func (r *catalogRepository) ListVariantsByIDs(ctx context.Context, ids []string) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if len(ids) == 0 {
		return variants, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error
	return variants, err
}

func (r *catalogRepository) ClearDefaultVariant(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("product_id = ? AND is_default = ?", productID, true).
		UpdateColumn("is_default", false).Error
}

func (r *catalogRepository) MarkDefaultVariant(ctx context.Context, productID, variantID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND product_id = ?", variantID, productID).
		UpdateColumn("is_default", true)
	return result.RowsAffected, result.Error
}

func (r *catalogRepository) DeleteVariantsByProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.ProductVariant{}).Error
}

func (r *catalogRepository) CountOrderItemRefs(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("order_items").Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *catalogRepository) DeleteCartItemsByProduct(ctx context.Context, productID string) (int64, error) {
	result := r.db.WithContext(ctx).Exec("DELETE FROM cart_items WHERE product_id = ?", productID)
	return result.RowsAffected, result.Error
}
