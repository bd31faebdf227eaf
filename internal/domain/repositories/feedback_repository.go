package repositories

import (
	"context"
	"errors"

	"whatif-sim/internal/domain/models"
)

// ErrStoreClosed 存储已关闭
var ErrStoreClosed = errors.New("feedback store is closed")

// FeedbackRepository 用户反馈仓储接口
// 以会话 ID 为键，仅追加，按写入顺序返回
type FeedbackRepository interface {
	// Put 追加一条反馈
	Put(ctx context.Context, sessionID string, feedback *models.UserFeedback) error

	// GetAll 返回会话下的全部反馈，不存在时返回空切片
	GetAll(ctx context.Context, sessionID string) ([]*models.UserFeedback, error)

	// Close 释放底层连接
	Close() error
}
