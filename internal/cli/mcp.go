package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"whatif-sim/internal/app/bootstrap"
	"whatif-sim/internal/infrastructure/session"
	"whatif-sim/internal/infrastructure/stores/feedback"
	"whatif-sim/internal/mcptools"
)

// serveStdio 以 stdio 方式运行 MCP 服务
var serveStdio = server.ServeStdio

// MCPCmd 启动 MCP stdio 服务
func MCPCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve simulation tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, sim, log, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer sim.Close()

			repo, err := feedback.NewStoreFactory(log).CreateFeedbackRepository(ctx, &cfg.Feedback)
			if err != nil {
				return fmt.Errorf("反馈存储初始化失败: %w", err)
			}
			defer repo.Close()

			sessions, err := session.NewGenerator(&cfg.Session)
			if err != nil {
				return err
			}

			s := mcptools.NewServer(bootstrap.Version, sim.Simulator, sessions, repo)
			log.InfoContext(ctx, "MCP服务启动", "transport", "stdio")
			return serveStdio(s)
		},
	}
}
