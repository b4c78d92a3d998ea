package service

import (
	"context"
	"fmt"

	"shop_backend/internal/domain/inventory/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/metrics"
	"shop_backend/pkg/model"

	"gorm.io/gorm"
)

// InventoryService 库存台账。由订单、退货在各自事务中调用
type InventoryService interface {
	WithTx(tx *gorm.DB) InventoryService
	// AdjustStock 返回调整后的库存。variantID 为 nil 时调整商品库存
	AdjustStock(ctx context.Context, productID string, variantID *string, delta int) (int, error)
	GetStock(ctx context.Context, productID string, variantID *string) (int, error)
}

type inventoryService struct {
	repo    repository.StockRepository
	metrics *metrics.MetricsCollector
}

func NewInventoryService(repo repository.StockRepository, collector *metrics.MetricsCollector) InventoryService {
	return &inventoryService{repo: repo, metrics: collector}
}

func (s *inventoryService) WithTx(tx *gorm.DB) InventoryService {
	return &inventoryService{repo: s.repo.WithTx(tx), metrics: s.metrics}
}

func (s *inventoryService) AdjustStock(ctx context.Context, productID string, variantID *string, delta int) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("stock delta is zero: %w", apperr.ErrInvalidQuantity)
	}

	var (
		stock int
		err   error
	)
	if id := model.Deref(variantID); id != "" {
		stock, err = s.repo.AdjustVariantStock(ctx, productID, id, delta)
	} else {
		stock, err = s.repo.AdjustProductStock(ctx, productID, delta)
	}

	if s.metrics != nil {
		s.metrics.RecordStockAdjustment(delta, err)
	}
	return stock, err
}

func (s *inventoryService) GetStock(ctx context.Context, productID string, variantID *string) (int, error) {
	if id := model.Deref(variantID); id != "" {
		return s.repo.GetVariantStock(ctx, productID, id)
	}
	return s.repo.GetProductStock(ctx, productID)
}
