package callbacks

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/eino/config"
)

// MetricsHandler 指标回调处理器，按阶段汇总调用次数和耗时，
// 并通过 RecordResult 汇总每次模拟的结果与降级情况
type MetricsHandler struct {
	cfg     *config.MetricsCallbackConfig
	metrics *MetricsCollector
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	mu sync.RWMutex

	// 阶段调用计数
	TotalCalls      int64
	SuccessfulCalls int64
	FailedCalls     int64

	// 阶段延迟统计
	StageLatency map[string]*LatencyStats

	// 模拟结果计数
	Simulations        int64
	SimulationFailures int64
	ValidationRejects  int64
	SeriousFallbacks   int64
	FunFallbacks       int64
}

// LatencyStats 延迟统计
type LatencyStats struct {
	Count   int64
	Errors  int64
	TotalMs int64
	MinMs   int64
	MaxMs   int64
}

// StageSnapshot 单个阶段的汇总
type StageSnapshot struct {
	Count  int64 `json:"count"`
	Errors int64 `json:"errors"`
	AvgMs  int64 `json:"avg_ms"`
	MinMs  int64 `json:"min_ms"`
	MaxMs  int64 `json:"max_ms"`
}

// Snapshot 指标快照
type Snapshot struct {
	TotalCalls         int64                    `json:"total_calls"`
	SuccessfulCalls    int64                    `json:"successful_calls"`
	FailedCalls        int64                    `json:"failed_calls"`
	Stages             map[string]StageSnapshot `json:"stages"`
	Simulations        int64                    `json:"simulations"`
	SimulationFailures int64                    `json:"simulation_failures"`
	ValidationRejects  int64                    `json:"validation_rejects"`
	SeriousFallbacks   int64                    `json:"serious_fallbacks"`
	FunFallbacks       int64                    `json:"fun_fallbacks"`
}

// NewMetricsHandler 创建指标回调处理器
func NewMetricsHandler(cfg *config.MetricsCallbackConfig) *MetricsHandler {
	return &MetricsHandler{
		cfg: cfg,
		metrics: &MetricsCollector{
			StageLatency: make(map[string]*LatencyStats),
		},
	}
}

// OnStart 阶段开始执行时调用
func (h *MetricsHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.metrics.mu.Lock()
	h.metrics.TotalCalls++
	h.metrics.mu.Unlock()

	return context.WithValue(ctx, metricsStartTimeKey, time.Now())
}

// OnEnd 阶段执行完成时调用
func (h *MetricsHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	if _, ok := ctx.Value(metricsStartTimeKey).(time.Time); !ok {
		return ctx
	}
	durationMs := elapsedMs(ctx, metricsStartTimeKey)

	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.SuccessfulCalls++
	stats := h.metrics.stage(info.Name, durationMs)
	stats.Count++
	stats.TotalMs += durationMs
	if durationMs < stats.MinMs {
		stats.MinMs = durationMs
	}
	if durationMs > stats.MaxMs {
		stats.MaxMs = durationMs
	}

	return ctx
}

// OnError 阶段执行出错时调用
func (h *MetricsHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.FailedCalls++
	h.metrics.stage(info.Name, 0).Errors++

	return ctx
}

// OnStartWithStreamInput 流式输入开始时调用
func (h *MetricsHandler) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return h.OnStart(ctx, info, nil)
}

// OnEndWithStreamOutput 流式输出结束时调用
func (h *MetricsHandler) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return h.OnEnd(ctx, info, nil)
}

// RecordResult 汇总一次模拟的结果
func (h *MetricsHandler) RecordResult(result *models.SimulationResult) {
	if !h.cfg.Enabled || result == nil {
		return
	}

	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.Simulations++
	if !result.Success {
		h.metrics.SimulationFailures++
	}
	if m := result.Metrics; m != nil {
		if m.ErrorType == models.ErrorTypeValidation {
			h.metrics.ValidationRejects++
		}
		if m.SeriousFallback {
			h.metrics.SeriousFallbacks++
		}
		if m.FunFallback {
			h.metrics.FunFallbacks++
		}
	}
}

// Snapshot 获取当前指标
func (h *MetricsHandler) Snapshot() Snapshot {
	h.metrics.mu.RLock()
	defer h.metrics.mu.RUnlock()

	stages := make(map[string]StageSnapshot, len(h.metrics.StageLatency))
	for name, stats := range h.metrics.StageLatency {
		avgMs := int64(0)
		if stats.Count > 0 {
			avgMs = stats.TotalMs / stats.Count
		}
		stages[name] = StageSnapshot{
			Count:  stats.Count,
			Errors: stats.Errors,
			AvgMs:  avgMs,
			MinMs:  stats.MinMs,
			MaxMs:  stats.MaxMs,
		}
	}

	return Snapshot{
		TotalCalls:         h.metrics.TotalCalls,
		SuccessfulCalls:    h.metrics.SuccessfulCalls,
		FailedCalls:        h.metrics.FailedCalls,
		Stages:             stages,
		Simulations:        h.metrics.Simulations,
		SimulationFailures: h.metrics.SimulationFailures,
		ValidationRejects:  h.metrics.ValidationRejects,
		SeriousFallbacks:   h.metrics.SeriousFallbacks,
		FunFallbacks:       h.metrics.FunFallbacks,
	}
}

// Reset 重置指标
func (h *MetricsHandler) Reset() {
	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.TotalCalls = 0
	h.metrics.SuccessfulCalls = 0
	h.metrics.FailedCalls = 0
	h.metrics.StageLatency = make(map[string]*LatencyStats)
	h.metrics.Simulations = 0
	h.metrics.SimulationFailures = 0
	h.metrics.ValidationRejects = 0
	h.metrics.SeriousFallbacks = 0
	h.metrics.FunFallbacks = 0
}

// stage 调用方需持有写锁
func (c *MetricsCollector) stage(name string, initialMs int64) *LatencyStats {
	stats, exists := c.StageLatency[name]
	if !exists {
		stats = &LatencyStats{MinMs: initialMs, MaxMs: initialMs}
		c.StageLatency[name] = stats
	}
	return stats
}

const (
	metricsStartTimeKey contextKey = "metrics_start_time"
)
