// Package callbacks 提供 Eino Callback 处理器实现
package callbacks

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"whatif-sim/internal/eino/config"
	"whatif-sim/pkg/logger"
)

// LoggingHandler 实现基于日志的 Callback 处理器。
// 在流程各阶段开始、结束或出错时记录诊断日志，并为整次运行注入 trace_id。
type LoggingHandler struct {
	logger logger.Logger
	cfg    *config.LoggingCallbackConfig
	level  slog.Level
}

// NewLoggingHandler 创建一个新的日志回调处理器。
// 参数 log: 底层日志记录器。
// 参数 cfg: 日志回调配置，Level 决定阶段日志的级别。
// 返回: callbacks.Handler 接口实现。
func NewLoggingHandler(log logger.Logger, cfg *config.LoggingCallbackConfig) callbacks.Handler {
	return &LoggingHandler{
		logger: log,
		cfg:    cfg,
		level:  logger.ParseLevel(cfg.Level),
	}
}

// OnStart 在阶段开始执行时被调用。
// 记录阶段名称和组件类型，并将开始时间注入上下文以计算耗时。
func (h *LoggingHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	ctx = context.WithValue(ctx, startTimeKey, time.Now())

	fields := logger.Fields{"stage": info.Name}
	if _, ok := logger.FieldsFromContext(ctx)["trace_id"]; !ok {
		fields["trace_id"] = uuid.NewString()
	}
	ctx = logger.InjectFields(ctx, fields)

	h.log(ctx, "阶段开始",
		"component", info.Component,
		"type", info.Type,
	)

	return ctx
}

// OnEnd 在阶段执行完成时被调用。
// 计算并记录阶段的执行耗时。
func (h *LoggingHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.log(ctx, "阶段完成",
		"component", info.Component,
		"duration_ms", elapsedMs(ctx, startTimeKey),
	)

	return ctx
}

// OnError 在阶段执行出错时被调用。
// 错误总是以 Error 级别记录。
func (h *LoggingHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.logger.ErrorContext(ctx, "阶段执行出错",
		"component", info.Component,
		"duration_ms", elapsedMs(ctx, startTimeKey),
		"error", err.Error(),
	)

	return ctx
}

// OnStartWithStreamInput 流程不使用流式节点，仅记录开始时间
func (h *LoggingHandler) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	if !h.cfg.Enabled {
		return ctx
	}
	return context.WithValue(ctx, startTimeKey, time.Now())
}

// OnEndWithStreamOutput 流程不使用流式节点，仅记录耗时
func (h *LoggingHandler) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return h.OnEnd(ctx, info, nil)
}

func (h *LoggingHandler) log(ctx context.Context, msg string, args ...interface{}) {
	if h.level <= slog.LevelDebug {
		h.logger.DebugContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}

func elapsedMs(ctx context.Context, key contextKey) int64 {
	startTime, ok := ctx.Value(key).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(startTime).Milliseconds()
}

// contextKey 定义了上下文键的类型，用于防止键名冲突。
type contextKey string

const (
	// startTimeKey 用于在上下文中存储阶段开始执行的时间。
	startTimeKey contextKey = "callback_start_time"
)
