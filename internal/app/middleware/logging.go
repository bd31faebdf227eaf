package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"whatif-sim/pkg/logger"
)

// RequestIDKey 请求ID在Context中的键名
const RequestIDKey = "request_id"

// RequestIDHeader 请求ID的HTTP头，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	// SkipPaths 跳过日志记录的路径（如健康检查接口）
	SkipPaths []string
	// Logger 日志器实例
	Logger logger.Logger
}

// LoggingMiddleware 返回HTTP日志记录中间件
// config: 中间件配置，如果为nil则使用默认配置
func LoggingMiddleware(config *LoggingConfig) gin.HandlerFunc {
	// 使用默认配置
	if config == nil {
		config = &LoggingConfig{
			SkipPaths: []string{"/v1/health"},
			Logger:    logger.GetDefault(),
		}
	}

	// 如果没有指定Logger，使用默认Logger
	if config.Logger == nil {
		config.Logger = logger.GetDefault()
	}

	return func(c *gin.Context) {
		// 生成或沿用请求ID
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// 请求ID注入context，后续所有 *Context 日志自动携带
		ctx := logger.InjectFields(c.Request.Context(), logger.Fields{RequestIDKey: requestID})
		ctx = context.WithValue(ctx, requestIDContextKey{}, requestID)
		c.Request = c.Request.WithContext(ctx)

		// 检查是否需要跳过日志记录
		if shouldSkipPath(c.Request.URL.Path, config.SkipPaths) {
			c.Next()
			return
		}

		// 记录请求开始时间
		startTime := time.Now()

		config.Logger.InfoContext(ctx, "HTTP请求开始",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"user_agent", c.GetHeader("User-Agent"),
			"content_length", c.Request.ContentLength,
		)

		// 执行请求处理
		c.Next()

		config.Logger.InfoContext(ctx, "HTTP请求完成",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"duration_ms", float64(time.Since(startTime).Nanoseconds())/1e6,
			"response_size", c.Writer.Size(),
		)

		// 如果有错误，记录详细错误信息
		for _, err := range c.Errors {
			config.Logger.ErrorContext(ctx, "HTTP请求处理错误",
				"error", err.Error(),
				"error_type", err.Type,
			)
		}
	}
}

type requestIDContextKey struct{}

// generateRequestID 生成请求ID
func generateRequestID() string {
	return uuid.New().String()
}

// shouldSkipPath 检查是否应该跳过某个路径的日志记录
func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// GetRequestID 从gin.Context中获取请求ID
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestIDFromContext 从标准context中获取请求ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
