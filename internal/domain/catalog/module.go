package catalog

import (
	"shop_backend/internal/domain/catalog/handler"
	"shop_backend/internal/domain/catalog/repository"
	"shop_backend/internal/domain/catalog/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CatalogModule 商品模块
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 10
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewCatalogRepository(ctx.DB)
	svc := service.NewCatalogService(ctx.Tx, repo, ctx.Cache, ctx.Metrics)
	h := handler.NewCatalogHandler(svc)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	g := r.Group("/products")
	g.GET("/:id", h.GetProduct)

	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
		admin.POST("/:id/variants", h.AddVariant)
		admin.PUT("/:id/variants/:variantId/default", h.SetDefaultVariant)
	}
}
