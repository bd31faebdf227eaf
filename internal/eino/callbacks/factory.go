package callbacks

import (
	"github.com/cloudwego/eino/callbacks"

	"whatif-sim/internal/eino/config"
	"whatif-sim/pkg/logger"
)

// Factory Callback 工厂
type Factory struct {
	cfg     *config.CallbacksConfig
	logger  logger.Logger
	metrics *MetricsHandler
}

// NewFactory 创建 Callback 工厂
func NewFactory(cfg *config.CallbacksConfig, log logger.Logger) *Factory {
	f := &Factory{
		cfg:    cfg,
		logger: log,
	}
	if cfg.Metrics.Enabled {
		f.metrics = NewMetricsHandler(&cfg.Metrics)
	}
	return f
}

// LoggingHandlers 返回阶段日志处理器（未启用时为空）。
// 模拟流程仅在 enableLogging 打开时挂载这些处理器。
func (f *Factory) LoggingHandlers() []callbacks.Handler {
	if !f.cfg.Logging.Enabled {
		return nil
	}
	return []callbacks.Handler{NewLoggingHandler(f.logger, &f.cfg.Logging)}
}

// MetricsHandler 返回共享的指标处理器，未启用时返回 nil。
// 同一工厂多次调用返回同一实例，便于 API 层读取汇总指标。
func (f *Factory) MetricsHandler() *MetricsHandler {
	return f.metrics
}
