package user

import (
	"shop_backend/internal/domain/user/handler"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 登录注册单 IP 限速：每 6 秒 1 次，突发 5 次
const (
	authRatePerSecond = 1.0 / 6
	authBurst         = 5
)

// UserModule 账号与认证
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

// Priority 其他模块的路由依赖认证中间件和默认管理员
func (m *UserModule) Priority() int {
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewUserRepository(ctx.DB)
	svc := service.NewUserService(repo, ctx.Cache, utils.DefaultTokenManager().Generate)
	h := handler.NewUserHandler(svc)

	// 2. 路由注册
	limiter := middleware.NewIPRateLimiter(rate.Limit(authRatePerSecond), authBurst)
	registerRoutes(ctx.Router, h, limiter)
	return nil
}

func registerRoutes(r *gin.Engine, h *handler.UserHandler, limiter *middleware.IPRateLimiter) {
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(limiter))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	me := r.Group("/users")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/me", h.Me)
	}
}
