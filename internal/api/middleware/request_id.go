package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// gin.Context 键
const (
	requestIDKey = "request_id"
	// loggerKey 请求级日志器，已带 request_id 字段
	loggerKey = "logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDMaxLen = 64
)

// RequestID 为每个请求确定追踪 ID，并派生带该 ID 的请求级日志器
// 客户端传入的 X-Request-ID 仅在长度与字符集合法时沿用，否则重新生成
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Set(loggerKey, logger.With(zap.String("request_id", rid)))
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}

// requestLogger 取出请求级日志器，未经过 RequestID 时返回 fallback
func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}

// validRequestID 只接受字母、数字、'-' 与 '_'，换行等字符不能进入日志
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
