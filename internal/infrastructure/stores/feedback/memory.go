// Package feedback 提供用户反馈仓储的多种实现：内存、Redis、SQLite 和 PostgreSQL
package feedback

import (
	"context"
	"sync"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/repositories"
)

// MemoryStore 进程内反馈存储，重启后数据丢失
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]*models.UserFeedback
	closed  bool
}

// NewMemoryStore 创建内存反馈存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]*models.UserFeedback)}
}

// Put 追加一条反馈，保存的是副本
func (s *MemoryStore) Put(ctx context.Context, sessionID string, feedback *models.UserFeedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return repositories.ErrStoreClosed
	}
	fb := *feedback
	s.entries[sessionID] = append(s.entries[sessionID], &fb)
	return nil
}

// GetAll 按写入顺序返回会话下的全部反馈
func (s *MemoryStore) GetAll(ctx context.Context, sessionID string) ([]*models.UserFeedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, repositories.ErrStoreClosed
	}
	stored := s.entries[sessionID]
	out := make([]*models.UserFeedback, 0, len(stored))
	for _, fb := range stored {
		cp := *fb
		out = append(out, &cp)
	}
	return out, nil
}

// Close 标记存储关闭并释放数据
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = nil
	return nil
}
