package feedback

import (
	"context"
	"fmt"

	"whatif-sim/configs"
	"whatif-sim/internal/domain/repositories"
	"whatif-sim/pkg/logger"
)

// StoreFactory 反馈存储工厂
type StoreFactory struct {
	logger logger.Logger
}

// NewStoreFactory 创建反馈存储工厂
func NewStoreFactory(log logger.Logger) *StoreFactory {
	if log == nil {
		log = logger.Default()
	}

	return &StoreFactory{
		logger: log,
	}
}

// CreateFeedbackRepository 根据配置创建反馈仓储实例
func (f *StoreFactory) CreateFeedbackRepository(ctx context.Context, cfg *configs.FeedbackConfig) (repositories.FeedbackRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("feedback config cannot be nil")
	}

	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		store, err := NewRedisStore(ctx, &cfg.Redis, f.logger)
		if err != nil {
			f.logger.ErrorContext(ctx, "Redis反馈存储初始化失败", "error", err)
			return nil, fmt.Errorf("failed to create redis feedback store: %w", err)
		}
		return store, nil
	case DialectSQLite, DialectPostgres:
		store, err := OpenSQLStore(ctx, cfg.Store, cfg.DSN, cfg.Table)
		if err != nil {
			f.logger.ErrorContext(ctx, "SQL反馈存储初始化失败", "store", cfg.Store, "error", err)
			return nil, fmt.Errorf("failed to create %s feedback store: %w", cfg.Store, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported feedback store: %s", cfg.Store)
	}
}
