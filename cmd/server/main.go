package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_backend/internal/bootstrap"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/locker"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/internal/pkg/worker"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"

	// 业务模块通过 init 注册
	_ "shop_backend/internal/domain/address"
	_ "shop_backend/internal/domain/cart"
	_ "shop_backend/internal/domain/catalog"
	_ "shop_backend/internal/domain/discount"
	_ "shop_backend/internal/domain/inventory"
	_ "shop_backend/internal/domain/order"
	_ "shop_backend/internal/domain/returns"
	_ "shop_backend/internal/domain/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// 1. 配置与日志
	config.LoadConfig()
	cfg := config.GlobalConfig
	if err := logger.InitLogger(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 2. 基础设施
	db := database.InitDatabase()
	rdb, err := database.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Log.Fatal("redis init failed", zap.Error(err))
	}
	collector := metrics.GetGlobalCollector()
	txManager := database.NewTxManager(db, time.Duration(cfg.Database.LockTimeoutMs)*time.Millisecond)

	pool := worker.NewWorkerPool(worker.LogSender{}, cfg.Worker.Workers, cfg.Worker.QueueSize, cfg.Worker.MaxRetry, collector)
	pool.Start()

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if sqlDB, err := db.DB(); err == nil {
		go database.NewPoolMonitor(sqlDB, collector, 15*time.Second, 50).Run(bgCtx)
	}

	// 3. 默认管理员
	if err := bootstrap.EnsureDefaultAdmin(bgCtx, repository.NewUserRepository(db), cfg.Admin); err != nil {
		logger.Log.Fatal("bootstrap admin failed", zap.Error(err))
	}

	// 4. 路由与中间件
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	limiter := middleware.NewIPRateLimiter(rate.Limit(20), 40)

	r.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
			ExposeHeaders:    []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		middleware.RecoveryMiddleware(collector),
		middleware.SecurityHeadersMiddleware(),
		middleware.RateLimitMiddleware(limiter),
		middleware.UUIDParamsMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "down"
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "down"
		}
		c.JSON(status, checks)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 5. 模块初始化
	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Router:   r,
		Tx:       txManager,
		Cache:    cache.NewRedisCache(rdb, cfg.App.Env),
		Locker:   locker.NewRedisLocker(rdb),
		Notifier: pool,
		Metrics:  collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("module init failed", zap.Error(err))
	}

	// 6. 启动与优雅退出
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
	stopBackground()
	pool.Stop()
	if err := rdb.Close(); err != nil {
		logger.Log.Warn("redis close error", zap.Error(err))
	}
}
