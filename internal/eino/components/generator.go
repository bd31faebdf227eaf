// Package components 提供生成能力的工厂函数与适配器
package components

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"whatif-sim/internal/domain/services"
	"whatif-sim/internal/eino/config"
)

// NewTextGenerator 根据配置创建并返回文本生成能力。
// 支持 demo、gemini（generative-ai-go）和 genai（google.golang.org/genai）三种提供商；
// Timeout 大于 0 时为每次调用附加超时。
// 参数 ctx: 上下文对象。
// 参数 cfg: 生成器配置。
// 返回: 初始化后的 TextGenerator，如果提供商不支持或初始化失败则返回错误。
func NewTextGenerator(ctx context.Context, cfg *config.GeneratorConfig) (services.TextGenerator, error) {
	var gen services.TextGenerator

	switch cfg.Provider {
	case "", "demo":
		gen = NewDemoGenerator(cfg.DemoLatency)
	case "gemini":
		cm, err := NewGeminiChatModel(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini chat model: %w", err)
		}
		gen = NewChatModelGenerator(cm, DefaultSystemPrompt)
	case "genai":
		cm, err := NewGenAIChatModel(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create genai chat model: %w", err)
		}
		gen = NewChatModelGenerator(cm, DefaultSystemPrompt)
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}

	if cfg.Timeout > 0 {
		gen = WithTimeout(gen, cfg.Timeout)
	}
	return gen, nil
}

// timeoutGenerator 为每次调用附加超时
type timeoutGenerator struct {
	next    services.TextGenerator
	timeout time.Duration
}

// WithTimeout 包装生成能力，超时错误的消息中包含 "timeout" 以便重试分类
func WithTimeout(gen services.TextGenerator, timeout time.Duration) services.TextGenerator {
	return &timeoutGenerator{next: gen, timeout: timeout}
}

func (g *timeoutGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.next.GenerateResponse(callCtx, prompt)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("generation timeout after %s: %w", g.timeout, err)
	}
	return text, err
}

// Close 关闭被包装的生成能力
func (g *timeoutGenerator) Close() error {
	return CloseGenerator(g.next)
}

// CloseGenerator 生成能力实现了 io.Closer 时将其关闭
func CloseGenerator(gen services.TextGenerator) error {
	if c, ok := gen.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
