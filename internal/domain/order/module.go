package order

import (
	"time"

	addressRepository "shop_backend/internal/domain/address/repository"
	addressService "shop_backend/internal/domain/address/service"
	cartRepository "shop_backend/internal/domain/cart/repository"
	catalogRepository "shop_backend/internal/domain/catalog/repository"
	discountRepository "shop_backend/internal/domain/discount/repository"
	discountService "shop_backend/internal/domain/discount/service"
	inventoryRepository "shop_backend/internal/domain/inventory/repository"
	inventoryService "shop_backend/internal/domain/inventory/service"
	"shop_backend/internal/domain/order/handler"
	"shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/order/service"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 30
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	shop := config.GlobalConfig.Shop
	standard, express, threshold := shop.ShippingRates()

	svc := service.NewOrderService(service.Dependencies{
		Tx:        ctx.Tx,
		Orders:    repository.NewOrderRepository(ctx.DB),
		Carts:     cartRepository.NewCartRepository(ctx.DB),
		Catalog:   catalogRepository.NewCatalogRepository(ctx.DB),
		Inventory: inventoryService.NewInventoryService(inventoryRepository.NewStockRepository(ctx.DB), ctx.Metrics),
		Discounts: discountService.NewDiscountService(discountRepository.NewDiscountRepository(ctx.DB)),
		Addresses: addressService.NewAddressService(addressRepository.NewAddressRepository(ctx.DB)),
		Locker:    ctx.Locker,
		LockTTL:   time.Duration(shop.CheckoutLockSeconds) * time.Second,
		Notifier:  ctx.Notifier,
		Metrics:   ctx.Metrics,
		Shipping:  service.ShippingPolicy{Standard: standard, Express: express, FreeThreshold: threshold},
	})
	h := handler.NewOrderHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/checkout", h.Checkout)
		g.GET("", h.ListOrders)
		g.GET("/:id", h.GetOrder)
		g.POST("/:id/cancel", h.Cancel)
	}

	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListAllOrders)
		admin.PUT("/:id/status", h.SetStatus)
	}
}
