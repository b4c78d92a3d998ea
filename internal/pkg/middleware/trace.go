package middleware

import (
	"shop_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextTraceID = "traceID"
	HeaderTraceID  = "X-Trace-ID"

	maxTraceIDLen = 64
)

// TraceMiddleware 透传或生成 trace id，同时写入 gin 上下文和 request context
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderTraceID)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}

		c.Set(ContextTraceID, traceID)
		c.Header(HeaderTraceID, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

// 客户端传入的 id 会进日志，只接受短的可打印 ASCII
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
