package cart

import (
	"shop_backend/internal/domain/cart/handler"
	"shop_backend/internal/domain/cart/repository"
	"shop_backend/internal/domain/cart/service"
	catalogRepository "shop_backend/internal/domain/catalog/repository"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
)

// CartModule 购物车模块
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	return 20
}

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	svc := service.NewCartService(
		repository.NewCartRepository(ctx.DB),
		catalogRepository.NewCatalogRepository(ctx.DB),
	)
	h := handler.NewCartHandler(svc)

	g := ctx.Router.Group("/cart")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.GetCart)
		g.DELETE("", h.Clear)
		g.POST("/items", h.AddItem)
		g.PUT("/items/:id", h.UpdateQuantity)
		g.DELETE("/items/:id", h.RemoveItem)
	}
	return nil
}
