package middleware

import (
	"net/http"
	"time"

	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsMiddleware 记录 HTTP 请求指标
func MetricsMiddleware(collector *metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		collector.RecordHTTPRequest(c.Request.Method, endpoint, metrics.StatusCategory(c.Writer.Status()), time.Since(start))
	}
}

// RecoveryMiddleware panic 恢复，记录错误指标
func RecoveryMiddleware(collector *metrics.MetricsCollector) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		collector.RecordDBError("panic", "recovery")
		logger.Ctx(c.Request.Context()).Error("panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "internal server error")
	})
}

// SecurityHeadersMiddleware 安全头中间件
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
