package services

import (
	"context"

	"whatif-sim/internal/domain/models"
)

// SimulationService 场景模拟服务接口，API 层（HTTP、CLI、MCP）通过它调用流程
type SimulationService interface {
	// Simulate 执行完整流程：校验 -> 结构化 -> 双视角生成 -> 格式化
	// 除非出现意外错误，否则总是返回结果；失败信息在 SimulationResult 中体现
	Simulate(ctx context.Context, raw string) *models.SimulationResult

	// Validate 只执行输入校验
	Validate(ctx context.Context, raw string) models.ValidationResult
}
