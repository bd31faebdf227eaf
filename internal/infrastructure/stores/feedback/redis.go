package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"whatif-sim/configs"
	"whatif-sim/internal/domain/models"
	"whatif-sim/pkg/logger"
)

// RedisStore 以 Redis 列表保存反馈，每个会话一个键，元素为 JSON
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	logger    logger.Logger
}

// NewRedisStore 创建 Redis 反馈存储并检查连接
func NewRedisStore(ctx context.Context, cfg *configs.RedisConfig, log logger.Logger) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, log), nil
}

// NewRedisStoreWithClient 使用已有客户端创建存储
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, log logger.Logger) *RedisStore {
	if log == nil {
		log = logger.Discard()
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, logger: log}
}

// Put 追加一条反馈
func (s *RedisStore) Put(ctx context.Context, sessionID string, feedback *models.UserFeedback) error {
	data, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(sessionID), data).Err(); err != nil {
		return fmt.Errorf("rpush feedback: %w", err)
	}
	return nil
}

// GetAll 按写入顺序返回会话下的全部反馈，无法解析的元素会被跳过并记录日志
func (s *RedisStore) GetAll(ctx context.Context, sessionID string) ([]*models.UserFeedback, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange feedback: %w", err)
	}

	out := make([]*models.UserFeedback, 0, len(raw))
	for _, item := range raw {
		var fb models.UserFeedback
		if err := json.Unmarshal([]byte(item), &fb); err != nil {
			s.logger.WarnContext(ctx, "反馈记录解析失败", "session_id", sessionID, "error", err)
			continue
		}
		out = append(out, &fb)
	}
	return out, nil
}

// Close 关闭客户端连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}
