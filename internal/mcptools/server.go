// Package mcptools 以 MCP 工具的形式暴露场景模拟、校验和反馈能力。
//
// 每个工具都是一个注入依赖的结构体：Definition 返回工具定义，Handle 处理调用。
package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"whatif-sim/internal/domain/repositories"
	"whatif-sim/internal/domain/services"
)

// ServerName MCP 服务名称
const ServerName = "whatif-sim"

// NewServer 创建注册了全部工具的 MCP 服务
func NewServer(version string, sim services.SimulationService, sessions services.SessionIDGenerator, repo repositories.FeedbackRepository) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	simulateTool := NewSimulateTool(sim, sessions)
	s.AddTool(simulateTool.Definition(), simulateTool.Handle)

	validateTool := NewValidateTool(sim)
	s.AddTool(validateTool.Definition(), validateTool.Handle)

	submitTool := NewSubmitFeedbackTool(repo)
	s.AddTool(submitTool.Definition(), submitTool.Handle)

	listTool := NewListFeedbackTool(repo)
	s.AddTool(listTool.Definition(), listTool.Handle)

	return s
}

// intArg 读取整数参数，JSON 数字解码为 float64，缺失时返回 defaultVal
func intArg(args map[string]interface{}, key string, defaultVal int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultVal
	}
}
