// Package handlers 提供 HTTP 接口处理器
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"whatif-sim/internal/app/middleware"
	"whatif-sim/pkg/status"
)

// APIResponse 统一的API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondWithSuccess 返回成功响应
func respondWithSuccess(c *gin.Context, data interface{}, message string) {
	response := APIResponse{
		Success:   true,
		Code:      int(status.CodeOK),
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	}

	c.JSON(http.StatusOK, response)
}

// respondWithError 返回错误响应，detail 非空时放入 data
func respondWithError(c *gin.Context, code status.StatusCode, message, detail string) {
	var data interface{}
	if detail != "" {
		data = ErrorDetail{
			Message: detail,
			Code:    code.String(),
		}
	}
	respondWithErrorData(c, code, message, data)
}

// respondWithErrorData 返回携带业务数据的错误响应
func respondWithErrorData(c *gin.Context, code status.StatusCode, message string, data interface{}) {
	response := APIResponse{
		Success:   false,
		Code:      int(code),
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	}

	c.JSON(http.StatusOK, response)
}
