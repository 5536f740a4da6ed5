package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthPath = "/health"

// Logger 访问日志中间件
// 记录路由模板而不是原始路径，路径里的 UUID 不会撑高日志基数；健康检查只记 Debug
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid := c.GetString("user_id"); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}

		l := requestLogger(c, logger)
		switch {
		case status >= 500:
			l.Error("请求处理失败", fields...)
		case status >= 400:
			l.Warn("客户端错误", fields...)
		case route == healthPath:
			l.Debug("健康检查", fields...)
		default:
			l.Info("请求完成", fields...)
		}
	}
}
