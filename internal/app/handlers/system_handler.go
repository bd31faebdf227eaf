package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"whatif-sim/internal/eino/callbacks"
	"whatif-sim/pkg/status"
)

// SystemHandler 指标与健康检查处理器
type SystemHandler struct {
	metrics *callbacks.MetricsHandler
	version string
}

// NewSystemHandler 创建系统处理器，metrics 为 nil 表示未启用指标
func NewSystemHandler(metrics *callbacks.MetricsHandler, version string) *SystemHandler {
	return &SystemHandler{metrics: metrics, version: version}
}

// GetMetrics 获取汇总指标
// GET /v1/metrics
func (h *SystemHandler) GetMetrics(c *gin.Context) {
	if h.metrics == nil {
		respondWithError(c, status.ErrCodeUnavailable, "指标未启用", "")
		return
	}
	respondWithSuccess(c, h.metrics.Snapshot(), "指标查询成功")
}

// HealthCheck 健康检查
// GET /v1/health
func (h *SystemHandler) HealthCheck(c *gin.Context) {
	healthInfo := map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().Unix(),
	}

	respondWithSuccess(c, healthInfo, "服务正常")
}
