package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"shop_backend/internal/domain/inventory/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryStockRepository 用互斥锁模拟行锁下的条件更新
type memoryStockRepository struct {
	mu       sync.Mutex
	products map[string]int
	variants map[string]int // key: productID/variantID
}

func newMemoryStockRepository() *memoryStockRepository {
	return &memoryStockRepository{products: map[string]int{}, variants: map[string]int{}}
}

func (r *memoryStockRepository) WithTx(tx *gorm.DB) repository.StockRepository { return r }

func (r *memoryStockRepository) adjust(m map[string]int, key string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, apperr.ErrNotFound)
	}
	if stock+delta < 0 {
		return 0, fmt.Errorf("%s: %w", key, apperr.ErrInsufficientStock)
	}
	m[key] = stock + delta
	return m[key], nil
}

func (r *memoryStockRepository) get(m map[string]int, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, apperr.ErrNotFound)
	}
	return stock, nil
}

func (r *memoryStockRepository) AdjustProductStock(ctx context.Context, productID string, delta int) (int, error) {
	return r.adjust(r.products, productID, delta)
}

func (r *memoryStockRepository) AdjustVariantStock(ctx context.Context, productID, variantID string, delta int) (int, error) {
	return r.adjust(r.variants, productID+"/"+variantID, delta)
}

func (r *memoryStockRepository) GetProductStock(ctx context.Context, productID string) (int, error) {
	return r.get(r.products, productID)
}

func (r *memoryStockRepository) GetVariantStock(ctx context.Context, productID, variantID string) (int, error) {
	return r.get(r.variants, productID+"/"+variantID)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	svc := NewInventoryService(newMemoryStockRepository(), nil)
	_, err := svc.AdjustStock(context.Background(), "p1", nil, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidQuantity)
}

func TestAdjustStock_RoutesByVariant(t *testing.T) {
	repo := newMemoryStockRepository()
	repo.products["p1"] = 4
	repo.variants["p1/v1"] = 2
	svc := NewInventoryService(repo, metrics.NewMetricsCollector(prometheus.NewRegistry()))
	ctx := context.Background()

	v1 := "v1"
	stock, err := svc.AdjustStock(ctx, "p1", &v1, -2)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	_, err = svc.AdjustStock(ctx, "p1", &v1, -1)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	empty := ""
	stock, err = svc.AdjustStock(ctx, "p1", &empty, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	other := "v9"
	_, err = svc.AdjustStock(ctx, "p1", &other, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustStock_ConcurrentDecrementsNeverOversell(t *testing.T) {
	repo := newMemoryStockRepository()
	repo.products["p1"] = 5
	svc := NewInventoryService(repo, nil)

	var (
		wg           sync.WaitGroup
		success      int32
		insufficient int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustStock(context.Background(), "p1", nil, -1)
			switch {
			case err == nil:
				atomic.AddInt32(&success, 1)
			case assert.ErrorIs(t, err, apperr.ErrInsufficientStock):
				atomic.AddInt32(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), success)
	assert.Equal(t, int32(5), insufficient)
	stock, err := svc.GetStock(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}
