package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/services"
	"whatif-sim/internal/eino/config"
	"whatif-sim/internal/eino/flows"
	"whatif-sim/pkg/logger"
	"whatif-sim/pkg/status"
)

// MsgSimulationTimeout 超过处理时间预算时返回的消息
const MsgSimulationTimeout = "The simulation is taking longer than expected. Please try again in a moment."

// Simulator 处理器依赖的模拟能力
type Simulator interface {
	services.SimulationService
	GetConfig() config.SimulatorConfig
	UpdateConfig(update flows.ConfigUpdate) (config.SimulatorConfig, error)
}

// SimulationHandler 场景模拟处理器
type SimulationHandler struct {
	simulator Simulator
	sessions  services.SessionIDGenerator
	logger    logger.Logger
}

// NewSimulationHandler 创建场景模拟处理器
func NewSimulationHandler(sim Simulator, sessions services.SessionIDGenerator, log logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		simulator: sim,
		sessions:  sessions,
		logger:    log,
	}
}

// SimulateRequest 模拟请求，scenario 允许为空以便返回校验提示
type SimulateRequest struct {
	Scenario  string `json:"scenario"`
	SessionID string `json:"session_id,omitempty"`
}

// SimulateResponse 模拟响应数据
type SimulateResponse struct {
	SessionID string                   `json:"session_id"`
	Result    *models.SimulationResult `json:"result"`
}

// ValidateRequest 校验请求
type ValidateRequest struct {
	Scenario string `json:"scenario"`
}

// Simulate 执行场景模拟
// POST /v1/scenarios/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	ctx := c.Request.Context()

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.ErrorContext(ctx, "模拟请求参数解析失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInvalidParam, "请求参数格式错误", err.Error())
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = h.sessions.NewSessionID()
	}
	ctx = logger.InjectFields(ctx, logger.Fields{"session_id": sessionID})

	h.logger.InfoContext(ctx, "开始处理模拟请求", "scenario_length", len(req.Scenario))

	result, ok := h.simulateWithBudget(ctx, req.Scenario)
	if !ok {
		h.logger.WarnContext(ctx, "模拟超出处理时间预算")
		respondWithError(c, status.ErrCodeTimeout, MsgSimulationTimeout, "")
		return
	}

	data := SimulateResponse{SessionID: sessionID, Result: result}
	if !result.Success {
		code := status.ForErrorType(h.failureType(ctx, req.Scenario, result))
		h.logger.InfoContext(ctx, "模拟请求未通过", "code", code.String(), "error", result.Error)
		respondWithErrorData(c, code, result.Error, data)
		return
	}

	h.logger.InfoContext(ctx, "模拟请求处理完成",
		"scenario_type", result.FormattedOutput.Metadata.ScenarioType,
		"processing_ms", result.FormattedOutput.Metadata.ProcessingTime,
	)
	respondWithSuccess(c, data, "模拟成功")
}

// Validate 只做输入校验
// POST /v1/scenarios/validate
func (h *SimulationHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, status.ErrCodeInvalidParam, "请求参数格式错误", err.Error())
		return
	}

	respondWithSuccess(c, h.simulator.Validate(c.Request.Context(), req.Scenario), "校验完成")
}

// simulateWithBudget 按 maxProcessingTime 等待结果，超时后放弃等待。
// 模拟本身不会被强制中断，生成能力会感知到 ctx 取消并尽快降级返回。
func (h *SimulationHandler) simulateWithBudget(ctx context.Context, scenario string) (*models.SimulationResult, bool) {
	budget := h.simulator.GetConfig().MaxProcessingTime
	if budget <= 0 {
		return h.simulator.Simulate(ctx, scenario), true
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan *models.SimulationResult, 1)
	go func() {
		done <- h.simulator.Simulate(ctx, scenario)
	}()

	select {
	case result := <-done:
		return result, true
	case <-ctx.Done():
		return nil, false
	}
}

// failureType 返回失败类型，未启用指标时通过重新校验判断
func (h *SimulationHandler) failureType(ctx context.Context, scenario string, result *models.SimulationResult) string {
	if result.Metrics != nil {
		return result.Metrics.ErrorType
	}
	if !h.simulator.Validate(ctx, scenario).IsValid {
		return models.ErrorTypeValidation
	}
	return models.ErrorTypeUnknown
}

// configView 对外展示的模拟配置，时间单位为毫秒
type configView struct {
	EnableLogging            bool  `json:"enableLogging"`
	EnableMetrics            bool  `json:"enableMetrics"`
	EnableParallelGeneration bool  `json:"enableParallelGeneration"`
	MaxProcessingTime        int64 `json:"maxProcessingTime"`
}

// configPatch 局部更新请求，缺省字段保持不变
type configPatch struct {
	EnableLogging            *bool  `json:"enableLogging"`
	EnableMetrics            *bool  `json:"enableMetrics"`
	EnableParallelGeneration *bool  `json:"enableParallelGeneration"`
	MaxProcessingTime        *int64 `json:"maxProcessingTime"`
}

func toConfigView(cfg config.SimulatorConfig) configView {
	return configView{
		EnableLogging:            cfg.EnableLogging,
		EnableMetrics:            cfg.EnableMetrics,
		EnableParallelGeneration: cfg.EnableParallelGeneration,
		MaxProcessingTime:        cfg.MaxProcessingTime.Milliseconds(),
	}
}

// GetConfig 获取当前模拟配置
// GET /v1/config
func (h *SimulationHandler) GetConfig(c *gin.Context) {
	respondWithSuccess(c, toConfigView(h.simulator.GetConfig()), "获取配置成功")
}

// UpdateConfig 局部更新模拟配置
// PATCH /v1/config
func (h *SimulationHandler) UpdateConfig(c *gin.Context) {
	ctx := c.Request.Context()

	var patch configPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondWithError(c, status.ErrCodeInvalidParam, "请求参数格式错误", err.Error())
		return
	}

	update := flows.ConfigUpdate{
		EnableLogging:            patch.EnableLogging,
		EnableMetrics:            patch.EnableMetrics,
		EnableParallelGeneration: patch.EnableParallelGeneration,
	}
	if patch.MaxProcessingTime != nil {
		d := time.Duration(*patch.MaxProcessingTime) * time.Millisecond
		update.MaxProcessingTime = &d
	}

	cfg, err := h.simulator.UpdateConfig(update)
	if err != nil {
		respondWithError(c, status.ErrCodeInvalidParam, "配置更新失败", err.Error())
		return
	}

	h.logger.InfoContext(ctx, "模拟配置已更新",
		"enable_logging", cfg.EnableLogging,
		"enable_metrics", cfg.EnableMetrics,
		"enable_parallel_generation", cfg.EnableParallelGeneration,
		"max_processing_time", cfg.MaxProcessingTime,
	)
	respondWithSuccess(c, toConfigView(cfg), "配置已更新")
}
