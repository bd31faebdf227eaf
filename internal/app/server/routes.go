package server

import (
	"github.com/gin-gonic/gin"

	"whatif-sim/internal/app/handlers"
	"whatif-sim/internal/app/middleware"
	"whatif-sim/pkg/logger"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Simulation *handlers.SimulationHandler
	Feedback   *handlers.FeedbackHandler
	System     *handlers.SystemHandler
}

// SetupRoutes 配置并注册 HTTP 服务器的所有路由规则。
// 它负责加载中间件，定义 API 版本分组，并将 URL 路径映射到相应的处理函数。
// 参数 engine: Gin 引擎实例。
// 参数 h: 业务逻辑处理器。
// 参数 log: 日志记录器。
func SetupRoutes(engine *gin.Engine, h *Handlers, log logger.Logger) {
	// 应用全局中间件
	setupMiddleware(engine, log)

	// 设置API路由组
	v1 := engine.Group("/v1")

	// 场景相关路由
	scenarios := v1.Group("/scenarios")
	// 执行模拟 - 校验、结构化、双视角生成和格式化
	scenarios.POST("/simulate", h.Simulation.Simulate)
	// 只做输入校验，不调用生成能力
	scenarios.POST("/validate", h.Simulation.Validate)

	// 反馈相关路由
	feedback := v1.Group("/feedback")
	feedback.POST("", h.Feedback.SubmitFeedback)
	feedback.GET("/:session_id", h.Feedback.ListFeedback)

	// 运行时配置 - PATCH 只替换提供的字段
	v1.GET("/config", h.Simulation.GetConfig)
	v1.PATCH("/config", h.Simulation.UpdateConfig)

	// 汇总指标与健康检查
	v1.GET("/metrics", h.System.GetMetrics)
	v1.GET("/health", h.System.HealthCheck)
}

// setupMiddleware 设置全局中间件
func setupMiddleware(engine *gin.Engine, log logger.Logger) {
	// 设置恢复中间件 - 捕获panic并返回500错误
	engine.Use(gin.Recovery())

	// 设置日志中间件 - 记录请求日志并生成请求ID
	loggingConfig := &middleware.LoggingConfig{
		// 跳过健康检查路径的日志记录，减少日志噪音
		SkipPaths: []string{
			"/v1/health",
		},
		Logger: log,
	}
	engine.Use(middleware.LoggingMiddleware(loggingConfig))
}
