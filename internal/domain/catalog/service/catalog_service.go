package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop_backend/internal/domain/catalog/model"
	"shop_backend/internal/domain/catalog/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	productCachePrefix = "product"
	productCacheTTL    = 10 * time.Minute
)

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

type VariantInput struct {
	Name            string
	SKU             string
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
	Stock           int
	IsDefault       bool
}

type CatalogService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddVariant(ctx context.Context, productID string, input VariantInput) (*model.ProductVariant, error)
	SetDefaultVariant(ctx context.Context, productID, variantID string) error
}

type catalogService struct {
	tx      database.TxManager
	repo    repository.CatalogRepository
	cache   cache.CacheService
	metrics *metrics.MetricsCollector
}

// NewCatalogService cache 为 nil 时不走缓存
func NewCatalogService(tx database.TxManager, repo repository.CatalogRepository, c cache.CacheService, collector *metrics.MetricsCollector) CatalogService {
	return &catalogService{tx: tx, repo: repo, cache: c, metrics: collector}
}

func productCacheKey(id string) string {
	return productCachePrefix + ":" + id
}

func validateProduct(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("product name is required: %w", apperr.ErrInvalidInput)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("price must not be negative: %w", apperr.ErrInvalidInput)
	}
	if input.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", apperr.ErrInvalidInput)
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info("product created", zap.String("product_id", product.ID))
	return product, nil
}

// UpdateProduct 库存不在此处修改，走库存台账
func (s *catalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*model.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.IsActive = input.IsActive
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return product, nil
}

// GetProduct Cache-Aside：先读缓存，未命中读库并回填
func (s *catalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if s.cache != nil {
		var cached model.Product
		err := s.cache.Get(ctx, productCacheKey(id), &cached)
		if err == nil {
			s.recordLookup(true)
			return s.withLiveStock(ctx, &cached)
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
		}
		s.recordLookup(false)
	}

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productCacheKey(id), product, productCacheTTL); err != nil {
			logger.Log.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// withLiveStock 库存变化频繁且不走商品缓存失效，缓存命中后用库里的库存覆盖
func (s *catalogService) withLiveStock(ctx context.Context, product *model.Product) (*model.Product, error) {
	levels, err := s.repo.GetStockLevels(ctx, product.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.invalidate(ctx, product.ID)
		}
		return nil, err
	}

	product.Stock = levels.Product
	variants := product.Variants[:0]
	for _, v := range product.Variants {
		stock, ok := levels.Variants[v.ID]
		if !ok {
			// 规格已被删除
			continue
		}
		v.Stock = stock
		variants = append(variants, v)
	}
	product.Variants = variants
	return product, nil
}

// DeleteProduct 被订单引用时拒绝删除；购物车条目和规格随商品一起删除
func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		refs, err := repo.CountOrderItemRefs(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("product %s has %d order items: %w", id, refs, apperr.ErrProductInUse)
		}

		removed, err := repo.DeleteCartItemsByProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteVariantsByProduct(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteProduct(ctx, id); err != nil {
			return err
		}
		logger.Ctx(ctx).Info("product deleted", zap.String("product_id", id), zap.Int64("cart_items_removed", removed))
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *catalogService) AddVariant(ctx context.Context, productID string, input VariantInput) (*model.ProductVariant, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.SKU) == "" {
		return nil, fmt.Errorf("variant name and sku are required: %w", apperr.ErrInvalidInput)
	}
	if input.Price.IsNegative() || input.Stock < 0 {
		return nil, fmt.Errorf("price and stock must not be negative: %w", apperr.ErrInvalidInput)
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("discount percent must be within [0, 100]: %w", apperr.ErrInvalidInput)
	}

	variant := &model.ProductVariant{
		ProductID:       productID,
		Name:            strings.TrimSpace(input.Name),
		SKU:             strings.TrimSpace(input.SKU),
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		Stock:           input.Stock,
		IsDefault:       input.IsDefault,
	}

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetProduct(ctx, productID); err != nil {
			return err
		}
		if variant.IsDefault {
			if err := repo.ClearDefaultVariant(ctx, productID); err != nil {
				return err
			}
		}
		return repo.CreateVariant(ctx, variant)
	})
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, fmt.Errorf("sku %s already exists: %w", variant.SKU, apperr.ErrInvalidInput)
		}
		return nil, err
	}
	s.invalidate(ctx, productID)
	return variant, nil
}

// SetDefaultVariant 同一事务内先取消旧默认再设置新默认
func (s *catalogService) SetDefaultVariant(ctx context.Context, productID, variantID string) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefaultVariant(ctx, productID); err != nil {
			return err
		}
		rows, err := repo.MarkDefaultVariant(ctx, productID, variantID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("variant %s of product %s: %w", variantID, productID, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *catalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		logger.Log.Warn("product cache invalidate failed", zap.String("product_id", id), zap.Error(err))
	}
}

func (s *catalogService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(productCachePrefix, hit)
	}
}
