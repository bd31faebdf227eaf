// Package bootstrap 组装服务进程与命令行共用的依赖
package bootstrap

import (
	"context"
	"fmt"

	"whatif-sim/configs"
	"whatif-sim/internal/domain/services"
	simcb "whatif-sim/internal/eino/callbacks"
	"whatif-sim/internal/eino/components"
	"whatif-sim/internal/eino/flows"
	"whatif-sim/pkg/logger"
)

// Version 对外展示的版本号
const Version = "1.0.0"

// NewLogger 按日志配置创建日志器
func NewLogger(cfg configs.LoggingConfig) logger.Logger {
	loggerConfig := logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Output: cfg.Output,
		Format: cfg.Format,
	}
	if cfg.Output == "file" {
		loggerConfig.FilePath = cfg.FilePath
	}
	return logger.New(loggerConfig)
}

// Simulation 模拟流程及其生成能力
type Simulation struct {
	Simulator *flows.Simulator
	Generator services.TextGenerator
}

// Close 释放生成能力持有的客户端
func (s *Simulation) Close() error {
	return components.CloseGenerator(s.Generator)
}

// NewSimulation 创建生成能力、回调工厂并编译模拟流程
func NewSimulation(ctx context.Context, cfg *configs.Config, log logger.Logger) (*Simulation, error) {
	log.InfoContext(ctx, "正在初始化生成能力",
		"provider", cfg.Eino.Generator.Provider,
		"model", cfg.Eino.Generator.Model)

	gen, err := components.NewTextGenerator(ctx, &cfg.Eino.Generator)
	if err != nil {
		return nil, fmt.Errorf("生成能力初始化失败: %w", err)
	}

	factory := simcb.NewFactory(&cfg.Eino.Callbacks, log)
	sim, err := flows.NewSimulator(ctx, gen, &cfg.Eino, factory, log)
	if err != nil {
		_ = components.CloseGenerator(gen)
		return nil, fmt.Errorf("模拟流程编译失败: %w", err)
	}

	log.InfoContext(ctx, "模拟流程初始化完成",
		"parallel_generation", cfg.Eino.Simulator.EnableParallelGeneration,
		"max_processing_time", cfg.Eino.Simulator.MaxProcessingTime)

	return &Simulation{Simulator: sim, Generator: gen}, nil
}
