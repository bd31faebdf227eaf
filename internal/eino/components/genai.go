package components

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GenAIChatModel 基于 google.golang.org/genai 的 Eino ChatModel 实现
type GenAIChatModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ model.BaseChatModel = (*GenAIChatModel)(nil)

// NewGenAIChatModel 创建 GenAI 客户端
func NewGenAIChatModel(ctx context.Context, apiKey, modelName string) (*GenAIChatModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIChatModel{client: client, model: modelName, temperature: 0.9}, nil
}

// Generate 实现 model.BaseChatModel
func (m *GenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	system, turns, err := splitMessages(input)
	if err != nil {
		return nil, err
	}

	options := model.GetCommonOptions(&model.Options{Temperature: &m.temperature}, opts...)
	cfg := &genai.GenerateContentConfig{Temperature: options.Temperature}
	if options.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*options.MaxTokens)
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == schema.Assistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai generate: %w", err)
	}
	txt := result.Text()
	if txt == "" {
		return nil, errors.New("genai: empty response")
	}
	return schema.AssistantMessage(txt, nil), nil
}

// Stream 不支持
func (m *GenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errStreamUnsupported
}
