package discount

import (
	"shop_backend/internal/domain/discount/handler"
	"shop_backend/internal/domain/discount/repository"
	"shop_backend/internal/domain/discount/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// DiscountModule 优惠码模块
type DiscountModule struct{}

func init() {
	registry.Register(&DiscountModule{})
}

func (m *DiscountModule) Name() string {
	return "discount"
}

func (m *DiscountModule) Priority() int {
	return 10
}

func (m *DiscountModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewDiscountRepository(ctx.DB)
	h := handler.NewDiscountHandler(service.NewDiscountService(repo))

	// 2. 路由注册
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DiscountHandler) {
	g := r.Group("/discounts")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/validate", h.ValidateDiscount)

		admin := g.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", h.CreateDiscount)
			admin.GET("", h.ListDiscounts)
		}
	}
}
