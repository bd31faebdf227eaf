package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatif-sim/configs"
	"whatif-sim/internal/app/bootstrap"
	"whatif-sim/internal/app/handlers"
	"whatif-sim/internal/app/server"
	"whatif-sim/internal/domain/repositories"
	"whatif-sim/internal/infrastructure/session"
	"whatif-sim/internal/infrastructure/stores/feedback"
	"whatif-sim/pkg/logger"
)

// main 主函数 - 应用程序入口点
func main() {
	// 创建根上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 创建早期logger（使用默认配置）
	earlyLogger := logger.Default()

	// 初始化应用程序
	if err := initializeApplication(ctx, earlyLogger); err != nil {
		earlyLogger.ErrorContext(ctx, "应用程序初始化失败", "error", err)
		os.Exit(1)
	}
}

// initializeApplication 初始化应用程序
func initializeApplication(ctx context.Context, earlyLogger logger.Logger) error {

	// 1. 加载配置
	config, err := configs.Load(ctx)
	if err != nil {
		return fmt.Errorf("配置加载失败: %w", err)
	}

	earlyLogger.InfoContext(ctx, "配置加载成功",
		"server_port", config.Server.Port,
		"generator_provider", config.Eino.Generator.Provider,
		"feedback_store", config.Feedback.Store)

	// 2. 初始化日志服务
	appLogger := bootstrap.NewLogger(config.Logging)
	logger.SetDefault(appLogger)
	appLogger.InfoContext(ctx, "日志服务初始化完成")

	// 3. 初始化模拟流程
	simulation, err := bootstrap.NewSimulation(ctx, config, appLogger)
	if err != nil {
		return fmt.Errorf("模拟流程初始化失败: %w", err)
	}

	// 4. 初始化反馈存储
	repo, err := feedback.NewStoreFactory(appLogger).CreateFeedbackRepository(ctx, &config.Feedback)
	if err != nil {
		_ = simulation.Close()
		return fmt.Errorf("反馈存储初始化失败: %w", err)
	}
	appLogger.InfoContext(ctx, "反馈存储初始化完成", "store", config.Feedback.Store)

	// 5. 初始化会话 ID 生成器
	sessions, err := session.NewGenerator(&config.Session)
	if err != nil {
		_ = simulation.Close()
		_ = repo.Close()
		return fmt.Errorf("会话ID生成器初始化失败: %w", err)
	}

	// 6. 初始化应用层
	h := &server.Handlers{
		Simulation: handlers.NewSimulationHandler(simulation.Simulator, sessions, appLogger),
		Feedback:   handlers.NewFeedbackHandler(repo, appLogger),
		System:     handlers.NewSystemHandler(simulation.Simulator.Metrics(), bootstrap.Version),
	}
	httpServer := server.NewServer(&config.Server, h, appLogger)

	// 7. 启动服务并等待停止信号
	runErr := runApplication(ctx, httpServer, appLogger)

	// 8. 释放资源
	releaseResources(ctx, simulation, repo, appLogger)
	return runErr
}

// runApplication 运行应用程序，监听停止信号
// 此函数会阻塞直到收到停止信号、服务器错误或上下文取消
func runApplication(ctx context.Context, httpServer *server.Server, log logger.Logger) error {
	// 创建错误通道 - 用于接收服务器运行时错误
	errChan := make(chan error, 1)

	// 创建信号通道
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	// 启动HTTP服务器（非阻塞）
	// 服务器的运行时错误会通过 errChan 传递
	httpServer.Start(ctx, errChan)

	// 等待停止信号、服务器错误或上下文取消
	select {
	case err := <-errChan:
		log.ErrorContext(ctx, "服务器运行错误", "error", err)
		return err

	case sig := <-signalChan:
		log.InfoContext(ctx, "收到停止信号，开始优雅关闭", "signal", sig.String())
		return gracefulShutdown(ctx, httpServer, log)

	case <-ctx.Done():
		log.InfoContext(ctx, "上下文取消，开始优雅关闭")
		return gracefulShutdown(ctx, httpServer, log)
	}
}

// gracefulShutdown 执行优雅关闭
func gracefulShutdown(ctx context.Context, httpServer *server.Server, log logger.Logger) error {
	log.InfoContext(ctx, "开始执行优雅关闭流程")

	// 创建带超时的关闭上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 执行HTTP服务器优雅关闭
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "HTTP服务器关闭失败", "error", err)
		return fmt.Errorf("HTTP服务器关闭失败: %w", err)
	}

	log.InfoContext(ctx, "优雅关闭完成")
	return nil
}

// releaseResources 关闭生成能力和反馈存储
func releaseResources(ctx context.Context, simulation *bootstrap.Simulation, repo repositories.FeedbackRepository, log logger.Logger) {
	if err := simulation.Close(); err != nil {
		log.WarnContext(ctx, "生成能力关闭失败", "error", err)
	}
	if err := repo.Close(); err != nil {
		log.WarnContext(ctx, "反馈存储关闭失败", "error", err)
	}
}
