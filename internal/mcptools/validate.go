package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"whatif-sim/internal/domain/services"
)

// ValidateTool 处理 validate_scenario 工具调用
type ValidateTool struct {
	sim services.SimulationService
}

// NewValidateTool 创建校验工具
func NewValidateTool(sim services.SimulationService) *ValidateTool {
	return &ValidateTool{sim: sim}
}

// Definition 返回 validate_scenario 的工具定义
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_scenario",
		mcp.WithDescription("Check whether a scenario is acceptable for simulation without generating anything."),
		mcp.WithString("scenario",
			mcp.Required(),
			mcp.Description("The scenario text to check"),
		),
	)
}

// Handle 校验输入，不合法时返回用户提示
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.sim.Validate(ctx, req.GetString("scenario", ""))
	if !res.IsValid {
		return mcp.NewToolResultError(res.ErrorMessage), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Scenario is valid: %s", res.SanitizedInput)), nil
}
