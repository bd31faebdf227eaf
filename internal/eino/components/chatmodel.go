package components

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"whatif-sim/pkg/retry"
)

// DefaultSystemPrompt 发送给对话模型的系统提示词
const DefaultSystemPrompt = "You are a scenario simulator. Answer in plain prose of a few short paragraphs. " +
	"Never refuse a harmless hypothetical and never mention that you are a model."

// ChatModelGenerator 将任意 Eino ChatModel 适配为 TextGenerator
type ChatModelGenerator struct {
	model        model.BaseChatModel
	systemPrompt string
}

// NewChatModelGenerator 创建适配器，systemPrompt 为空时不发送系统消息
func NewChatModelGenerator(cm model.BaseChatModel, systemPrompt string) *ChatModelGenerator {
	return &ChatModelGenerator{model: cm, systemPrompt: systemPrompt}
}

// GenerateResponse 实现 services.TextGenerator
func (g *ChatModelGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if g.systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(g.systemPrompt))
	}
	messages = append(messages, schema.UserMessage(prompt))

	msg, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", retry.NewGenerationError("chat model returned an empty message", true, nil)
	}
	return msg.Content, nil
}

// Close 底层模型实现了 Close 时将其关闭
func (g *ChatModelGenerator) Close() error {
	if c, ok := g.model.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// errStreamUnsupported 生成流程只使用同步调用
var errStreamUnsupported = errors.New("streaming is not supported")

// splitMessages 拆分系统消息与对话消息
func splitMessages(input []*schema.Message) (string, []*schema.Message, error) {
	var system []string
	turns := make([]*schema.Message, 0, len(input))
	for _, m := range input {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.User, schema.Assistant:
			turns = append(turns, m)
		default:
			return "", nil, fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}
	if len(turns) == 0 {
		return "", nil, errors.New("at least one user message is required")
	}
	return strings.Join(system, "\n"), turns, nil
}
