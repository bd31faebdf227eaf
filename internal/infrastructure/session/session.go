// Package session 提供会话 ID 生成器
package session

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"whatif-sim/configs"
	"whatif-sim/internal/domain/services"
)

// UUIDGenerator 生成随机 UUID 作为会话 ID
type UUIDGenerator struct{}

// NewUUIDGenerator 创建 UUID 会话 ID 生成器
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewSessionID 实现 services.SessionIDGenerator
func (UUIDGenerator) NewSessionID() string {
	return uuid.NewString()
}

// CounterGenerator 生成单调递增的会话 ID，如 session_1、session_2
type CounterGenerator struct {
	prefix string
	next   atomic.Int64
}

// NewCounterGenerator 创建计数会话 ID 生成器，prefix 为空时使用 "session"
func NewCounterGenerator(prefix string) *CounterGenerator {
	if prefix == "" {
		prefix = "session"
	}
	return &CounterGenerator{prefix: prefix}
}

// NewSessionID 实现 services.SessionIDGenerator，并发安全
func (g *CounterGenerator) NewSessionID() string {
	return fmt.Sprintf("%s_%d", g.prefix, g.next.Add(1))
}

// NewGenerator 根据配置创建会话 ID 生成器
func NewGenerator(cfg *configs.SessionConfig) (services.SessionIDGenerator, error) {
	switch cfg.Generator {
	case "", "uuid":
		return NewUUIDGenerator(), nil
	case "counter":
		return NewCounterGenerator(cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported session generator: %s", cfg.Generator)
	}
}
