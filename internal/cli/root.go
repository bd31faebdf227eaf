// Package cli 提供 whatif 命令行入口
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"whatif-sim/configs"
	"whatif-sim/internal/app/bootstrap"
	"whatif-sim/pkg/logger"
)

// Execute 执行根命令
func Execute() error {
	return NewRoot().Execute()
}

// loadConfig 按 --config 加载配置，为空时按默认路径搜索
var loadConfig = func(ctx context.Context, path string) (*configs.Config, error) {
	if path != "" {
		return configs.LoadFile(path)
	}
	return configs.Load(ctx)
}

// NewRoot 创建根命令
func NewRoot() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "whatif",
		Short:         "Explore \"What if\" scenarios from a serious and a fun perspective",
		Version:       bootstrap.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")

	root.AddCommand(
		SimulateCmd(&configPath),
		ValidateCmd(&configPath),
		MCPCmd(&configPath),
	)
	return root
}

// setup 加载配置并创建模拟流程；命令行日志固定写入 stderr，避免污染输出
func setup(ctx context.Context, configPath string) (*configs.Config, *bootstrap.Simulation, logger.Logger, error) {
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logCfg := cfg.Logging
	if logCfg.Output != "file" {
		logCfg.Output = "stderr"
	}
	log := bootstrap.NewLogger(logCfg)

	sim, err := bootstrap.NewSimulation(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, sim, log, nil
}
