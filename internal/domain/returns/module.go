package returns

import (
	inventoryRepository "shop_backend/internal/domain/inventory/repository"
	inventoryService "shop_backend/internal/domain/inventory/service"
	orderRepository "shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/returns/handler"
	"shop_backend/internal/domain/returns/repository"
	"shop_backend/internal/domain/returns/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ReturnsModule 退货模块
type ReturnsModule struct{}

func init() {
	registry.Register(&ReturnsModule{})
}

func (m *ReturnsModule) Name() string {
	return "returns"
}

func (m *ReturnsModule) Priority() int {
	return 40
}

func (m *ReturnsModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	svc := service.NewReturnService(service.Dependencies{
		Tx:        ctx.Tx,
		Returns:   repository.NewReturnRepository(ctx.DB),
		Orders:    orderRepository.NewOrderRepository(ctx.DB),
		Inventory: inventoryService.NewInventoryService(inventoryRepository.NewStockRepository(ctx.DB), ctx.Metrics),
		Notifier:  ctx.Notifier,
		Metrics:   ctx.Metrics,
	})
	h := handler.NewReturnHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ReturnHandler) {
	g := r.Group("/returns")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.RequestReturn)
		g.GET("", h.ListMyReturns)
		g.GET("/:id", h.GetReturn)
		g.POST("/:id/cancel", h.CancelReturn)
	}

	admin := r.Group("/admin/returns")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListAllReturns)
		admin.POST("/:id/review", h.Review)
		admin.POST("/:id/ship", h.MarkShipped)
		admin.POST("/:id/receive", h.MarkReceived)
		admin.POST("/:id/inspect", h.MarkInspected)
		admin.POST("/:id/start-refund", h.StartRefund)
		admin.POST("/:id/refund", h.CompleteRefund)
		admin.POST("/:id/cancel", h.CancelReturn)
	}
}
