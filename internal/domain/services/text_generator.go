package services

import "context"

// TextGenerator 外部文本生成能力
// 任何具体客户端（demo、Gemini、本地模型）都实现该接口，在构造时注入
type TextGenerator interface {
	// GenerateResponse 根据提示词生成文本
	// prompt 中会包含 "serious"/"realistic" 或 "fun"/"creative" 字样，实现可据此分派
	// 返回的错误由调用方按消息子串分类（见 pkg/retry）
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// TextGeneratorFunc 函数适配器
type TextGeneratorFunc func(ctx context.Context, prompt string) (string, error)

// GenerateResponse 实现 TextGenerator
func (f TextGeneratorFunc) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// SessionIDGenerator 会话 ID 生成器，注入 API 层使用
type SessionIDGenerator interface {
	NewSessionID() string
}
