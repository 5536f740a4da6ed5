package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明的 Content-Length 已超限时直接 413；未声明长度的请求体在读取时截断，
// 由 Handler 在绑定失败时识别 *http.MaxBytesError
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
