package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"whatif-sim/internal/domain/services"
)

// SimulateTool 处理 simulate_scenario 工具调用
type SimulateTool struct {
	sim      services.SimulationService
	sessions services.SessionIDGenerator
}

// NewSimulateTool 创建模拟工具
func NewSimulateTool(sim services.SimulationService, sessions services.SessionIDGenerator) *SimulateTool {
	return &SimulateTool{sim: sim, sessions: sessions}
}

// Definition 返回 simulate_scenario 的工具定义
func (t *SimulateTool) Definition() mcp.Tool {
	return mcp.NewTool("simulate_scenario",
		mcp.WithDescription(
			"Explore a \"What if\" scenario. Returns a serious analysis and a fun interpretation of the same scenario.",
		),
		mcp.WithString("scenario",
			mcp.Required(),
			mcp.Description("The hypothetical scenario, e.g. \"What if everyone could read minds?\""),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional session ID to attach feedback to later. A new one is generated when omitted."),
		),
	)
}

// Handle 执行模拟并返回展示文本
func (t *SimulateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scenario := req.GetString("scenario", "")

	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		sessionID = t.sessions.NewSessionID()
	}

	result := t.sim.Simulate(ctx, scenario)
	if !result.Success {
		return mcp.NewToolResultError(result.Error), nil
	}

	var sb strings.Builder
	sb.WriteString(result.PresentationOutput)
	sb.WriteString(fmt.Sprintf("\n\nSession: %s", sessionID))
	return mcp.NewToolResultText(sb.String()), nil
}
