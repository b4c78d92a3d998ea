package inventory

import (
	"shop_backend/internal/domain/inventory/handler"
	"shop_backend/internal/domain/inventory/repository"
	"shop_backend/internal/domain/inventory/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
)

// InventoryModule 库存台账模块
type InventoryModule struct{}

func init() {
	registry.Register(&InventoryModule{})
}

func (m *InventoryModule) Name() string {
	return "inventory"
}

func (m *InventoryModule) Priority() int {
	return 10
}

func (m *InventoryModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewStockRepository(ctx.DB)
	h := handler.NewInventoryHandler(service.NewInventoryService(repo, ctx.Metrics))

	g := ctx.Router.Group("/inventory")
	g.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		g.POST("/adjust", h.AdjustStock)
		g.GET("/stock", h.GetStock)
	}
	return nil
}
