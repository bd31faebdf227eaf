package components

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiChatModel 基于 generative-ai-go 的 Eino ChatModel 实现
type GeminiChatModel struct {
	client      *gemini.Client
	model       string
	temperature float32
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel 创建 Gemini 客户端
func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (*GeminiChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := gemini.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiChatModel{
		client:      cl,
		model:       strings.TrimSpace(modelName),
		temperature: 0.9,
	}, nil
}

// Generate 实现 model.BaseChatModel
func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	system, turns, err := splitMessages(input)
	if err != nil {
		return nil, err
	}

	options := model.GetCommonOptions(&model.Options{Temperature: &m.temperature}, opts...)

	// 每次调用使用独立的模型对象，避免并发修改配置
	gm := m.client.GenerativeModel(m.model)
	if gm == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}
	gm.GenerationConfig = gemini.GenerationConfig{Temperature: options.Temperature}
	if options.MaxTokens != nil {
		gm.SetMaxOutputTokens(int32(*options.MaxTokens))
	}
	if system != "" {
		gm.SystemInstruction = &gemini.Content{Parts: []gemini.Part{gemini.Text(system)}}
	}

	cs := gm.StartChat()
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == schema.Assistant {
			role = "model"
		}
		cs.History = append(cs.History, &gemini.Content{Role: role, Parts: []gemini.Part{gemini.Text(t.Content)}})
	}

	resp, err := cs.SendMessage(ctx, gemini.Text(turns[len(turns)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}
	return schema.AssistantMessage(txt, nil), nil
}

// Stream 不支持
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errStreamUnsupported
}

// Close 关闭客户端
func (m *GeminiChatModel) Close() error {
	return m.client.Close()
}

func firstText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(gemini.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
