package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/repositories"
	"whatif-sim/pkg/logger"
	"whatif-sim/pkg/status"
)

// FeedbackHandler 用户反馈处理器
type FeedbackHandler struct {
	repo   repositories.FeedbackRepository
	logger logger.Logger
}

// NewFeedbackHandler 创建用户反馈处理器
func NewFeedbackHandler(repo repositories.FeedbackRepository, log logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		repo:   repo,
		logger: log,
	}
}

// SubmitFeedback 提交反馈
// POST /v1/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx := c.Request.Context()

	var fb models.UserFeedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		h.logger.ErrorContext(ctx, "反馈请求参数解析失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInvalidParam, "请求参数格式错误", err.Error())
		return
	}

	if err := fb.Validate(); err != nil {
		respondWithError(c, status.ErrCodeInvalidParam, "反馈参数验证失败", err.Error())
		return
	}

	ctx = logger.InjectFields(ctx, logger.Fields{"session_id": fb.SessionID})
	if err := h.repo.Put(ctx, fb.SessionID, &fb); err != nil {
		h.logger.ErrorContext(ctx, "反馈保存失败", "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "反馈保存失败", err.Error())
		return
	}

	h.logger.InfoContext(ctx, "反馈保存成功",
		"serious_rating", fb.SeriousRating,
		"fun_rating", fb.FunRating,
		"overall_satisfaction", fb.OverallSatisfaction,
	)
	respondWithSuccess(c, fb, "反馈已保存")
}

// ListFeedback 获取会话下的全部反馈
// GET /v1/feedback/:session_id
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		respondWithError(c, status.ErrCodeInvalidParam, "缺少session_id参数", "")
		return
	}

	items, err := h.repo.GetAll(ctx, sessionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "反馈查询失败", "session_id", sessionID, "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "反馈查询失败", err.Error())
		return
	}

	respondWithSuccess(c, items, "反馈查询成功")
}
