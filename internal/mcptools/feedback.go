package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/repositories"
)

// SubmitFeedbackTool 处理 submit_feedback 工具调用
type SubmitFeedbackTool struct {
	repo repositories.FeedbackRepository
}

// NewSubmitFeedbackTool 创建反馈提交工具
func NewSubmitFeedbackTool(repo repositories.FeedbackRepository) *SubmitFeedbackTool {
	return &SubmitFeedbackTool{repo: repo}
}

// Definition 返回 submit_feedback 的工具定义
func (t *SubmitFeedbackTool) Definition() mcp.Tool {
	return mcp.NewTool("submit_feedback",
		mcp.WithDescription("Rate a simulation. All ratings are integers from 1 to 5."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by simulate_scenario"),
		),
		mcp.WithString("scenario",
			mcp.Required(),
			mcp.Description("The scenario that was simulated"),
		),
		mcp.WithNumber("serious_rating",
			mcp.Required(),
			mcp.Description("Rating for the serious analysis (1-5)"),
		),
		mcp.WithNumber("fun_rating",
			mcp.Required(),
			mcp.Description("Rating for the fun interpretation (1-5)"),
		),
		mcp.WithNumber("overall_satisfaction",
			mcp.Required(),
			mcp.Description("Overall satisfaction (1-5)"),
		),
		mcp.WithString("comments",
			mcp.Description("Optional free-form comments"),
		),
	)
}

// Handle 校验并保存反馈
func (t *SubmitFeedbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	fb := &models.UserFeedback{
		SessionID:           req.GetString("session_id", ""),
		Scenario:            req.GetString("scenario", ""),
		SeriousRating:       intArg(args, "serious_rating", 0),
		FunRating:           intArg(args, "fun_rating", 0),
		OverallSatisfaction: intArg(args, "overall_satisfaction", 0),
		Comments:            req.GetString("comments", ""),
	}
	if err := fb.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.repo.Put(ctx, fb.SessionID, fb); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save feedback: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Feedback saved for session %s.", fb.SessionID)), nil
}

// ListFeedbackTool 处理 list_feedback 工具调用
type ListFeedbackTool struct {
	repo repositories.FeedbackRepository
}

// NewListFeedbackTool 创建反馈查询工具
func NewListFeedbackTool(repo repositories.FeedbackRepository) *ListFeedbackTool {
	return &ListFeedbackTool{repo: repo}
}

// Definition 返回 list_feedback 的工具定义
func (t *ListFeedbackTool) Definition() mcp.Tool {
	return mcp.NewTool("list_feedback",
		mcp.WithDescription("List all feedback recorded for a session, oldest first."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID to look up"),
		),
	)
}

// Handle 返回会话下的反馈列表
func (t *ListFeedbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	items, err := t.repo.GetAll(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load feedback: %v", err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No feedback recorded for session %s.", sessionID)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Feedback for %s (%d)\n\n", sessionID, len(items)))
	for _, fb := range items {
		sb.WriteString(fmt.Sprintf("- serious %d/5, fun %d/5, overall %d/5",
			fb.SeriousRating, fb.FunRating, fb.OverallSatisfaction))
		if fb.Comments != "" {
			sb.WriteString(fmt.Sprintf(": %s", fb.Comments))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
