package components

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatif-sim/internal/domain/services"
	"whatif-sim/internal/eino/config"
	"whatif-sim/internal/eino/nodes"
	"whatif-sim/pkg/retry"
)

func TestDemoGenerator_DispatchesOnLens(t *testing.T) {
	gen := NewDemoGenerator(0)
	s := nodes.NewScenarioProcessor().ProcessScenario("What if everyone could read minds?")

	serious, err := gen.GenerateResponse(context.Background(), nodes.BuildSeriousPrompt(s))
	require.NoError(t, err)
	fun, err := gen.GenerateResponse(context.Background(), nodes.BuildFunPrompt(s))
	require.NoError(t, err)

	assert.NotEqual(t, serious, fun)
	assert.Contains(t, serious, "everyone could read minds")
	assert.Contains(t, serious, "Therefore")
	assert.Contains(t, fun, "everyone could read minds")
	assert.Contains(t, fun, "!")

	again, err := gen.GenerateResponse(context.Background(), nodes.BuildSeriousPrompt(s))
	require.NoError(t, err)
	assert.Equal(t, serious, again, "demo output must be deterministic")
}

func TestDemoGenerator_IgnoresLensWordsInScenario(t *testing.T) {
	gen := NewDemoGenerator(0)
	processor := nodes.NewScenarioProcessor()

	tests := []struct {
		name     string
		scenario string
	}{
		{"serious in scenario", "What if serious scientists ruled the world?"},
		{"realistic in scenario", "What if realistic paintings came to life?"},
		{"fun in scenario", "What if funding for schools doubled?"},
		{"creative in scenario", "What if creative writing were mandatory at work?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := processor.ProcessScenario(tt.scenario)

			serious, err := gen.GenerateResponse(context.Background(), nodes.BuildSeriousPrompt(s))
			require.NoError(t, err)
			fun, err := gen.GenerateResponse(context.Background(), nodes.BuildFunPrompt(s))
			require.NoError(t, err)

			assert.Contains(t, serious, "Therefore")
			assert.NotContains(t, fun, "Therefore")
			assert.Contains(t, fun, "Cats would remain completely unimpressed")
			assert.NotContains(t, serious, "Cats would remain completely unimpressed")
		})
	}
}

func TestDemoGenerator_OutputPassesGate(t *testing.T) {
	gen := NewDemoGenerator(0)
	policy := retry.Policy{MaxAttempts: 1}
	s := nodes.NewScenarioProcessor().ProcessScenario("What if the moon were twice as close?")

	serious := nodes.NewSeriousGenerator(gen, policy, nil, nil).Generate(context.Background(), s)
	fun := nodes.NewFunGenerator(gen, policy, nil, nil).Generate(context.Background(), s)

	assert.False(t, serious.Fallback)
	assert.False(t, fun.Fallback)
	assert.Contains(t, serious.Text, "**Therefore**")
	assert.Contains(t, fun.Text, "• ")
}

func TestDemoGenerator_LatencyHonoursContext(t *testing.T) {
	gen := NewDemoGenerator(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateResponse(ctx, "Scenario: \"x\"\nserious")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	slow := services.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).GenerateResponse(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, retry.ErrorTypeTimeout, retry.Classify(err).Type)
	assert.True(t, retry.IsRetryable(err))
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	fast := services.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "ok:" + prompt, nil
	})
	got, err := WithTimeout(fast, time.Second).GenerateResponse(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok:p", got)
}

func TestNewTextGenerator(t *testing.T) {
	gen, err := NewTextGenerator(context.Background(), &config.GeneratorConfig{Provider: "demo", Timeout: time.Second})
	require.NoError(t, err)
	assert.NoError(t, CloseGenerator(gen))

	_, err = NewTextGenerator(context.Background(), &config.GeneratorConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = NewTextGenerator(context.Background(), &config.GeneratorConfig{Provider: "gemini"})
	assert.Error(t, err, "missing api key")

	_, err = NewTextGenerator(context.Background(), &config.GeneratorConfig{Provider: "genai"})
	assert.Error(t, err, "missing api key")
}

// fakeChatModel 记录收到的消息
type fakeChatModel struct {
	received []*schema.Message
	reply    string
	err      error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errStreamUnsupported
}

func TestChatModelGenerator(t *testing.T) {
	cm := &fakeChatModel{reply: "A calm and measured answer."}
	gen := NewChatModelGenerator(cm, "system rules")

	got, err := gen.GenerateResponse(context.Background(), "serious prompt")
	require.NoError(t, err)
	assert.Equal(t, "A calm and measured answer.", got)
	require.Len(t, cm.received, 2)
	assert.Equal(t, schema.System, cm.received[0].Role)
	assert.Equal(t, schema.User, cm.received[1].Role)
	assert.Equal(t, "serious prompt", cm.received[1].Content)
}

func TestChatModelGenerator_Errors(t *testing.T) {
	_, err := NewChatModelGenerator(&fakeChatModel{reply: "  "}, "").GenerateResponse(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, retry.ErrorTypeAIGeneration, retry.TypeOf(err))
	assert.True(t, retry.IsRetryable(err), "empty replies are worth another attempt")

	_, err = NewChatModelGenerator(&fakeChatModel{err: errors.New("429 rate limit")}, "").GenerateResponse(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, retry.ErrorTypeRateLimit, retry.Classify(err).Type)
}

func TestSplitMessages(t *testing.T) {
	system, turns, err := splitMessages([]*schema.Message{
		schema.SystemMessage("a"),
		schema.SystemMessage("b"),
		schema.UserMessage("hi"),
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "a\nb", system)
	assert.Len(t, turns, 1)

	_, _, err = splitMessages([]*schema.Message{schema.SystemMessage("only system")})
	assert.Error(t, err)

	_, _, err = splitMessages([]*schema.Message{{Role: schema.Tool, Content: "x"}})
	assert.True(t, err != nil && strings.Contains(err.Error(), "role"))
}
