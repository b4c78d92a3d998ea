package middleware

import (
	"net/http"
	"strings"

	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDParamsMiddleware 路径中的 id / xxxId 参数必须是标准格式 UUID，否则按资源不存在处理
func UUIDParamsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range c.Params {
			if !isIDParam(p.Key) {
				continue
			}
			if !ValidUUID(p.Value) {
				response.Error(c, http.StatusNotFound, response.ErrNotFound, "resource not found")
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func isIDParam(key string) bool {
	return key == "id" || strings.HasSuffix(key, "Id")
}

// ValidUUID 只接受 36 位带连字符的形式，uuid.Parse 本身还接受 urn/花括号写法
func ValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
