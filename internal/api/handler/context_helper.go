package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyhub/pkg/response"
)

// 中间件写入 gin.Context 的键
const (
	ctxUserID   = "user_id"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
	ctxLogger   = "logger"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := GetUserID(c)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetUserID 提取可选登录态中的 user_id，未登录时返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// getTokenMeta 提取当前 Token 的 jti 与过期时间（登出用）
func getTokenMeta(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxTokenJTI), c.GetTime(ctxTokenExp)
}

// mustPathUUID 读取路径参数并校验为 UUID，失败时写入 400
func mustPathUUID(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if _, err := uuid.Parse(v); err != nil {
		response.BadRequest(c, 10001, name+" 格式无效")
		return "", false
	}
	return v, true
}

// bindJSON 绑定请求体，失败时写入 400；请求体超过 BodyLimit 上限时写入 413
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return false
	}
	response.BadRequest(c, 10001, "参数校验失败")
	return false
}

// requestLogger 取出 RequestID 中间件注入的请求级日志器
func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// internalError 记录未映射的错误并写入 500
func internalError(c *gin.Context, err error) {
	requestLogger(c).Error("接口内部错误",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	response.InternalError(c)
}
