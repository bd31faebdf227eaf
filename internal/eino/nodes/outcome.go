package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/domain/services"
	"whatif-sim/internal/eino/config"
	"whatif-sim/pkg/logger"
	"whatif-sim/pkg/retry"
)

// defaultMinOutcomeLength 生成结果的默认最小字符数
const defaultMinOutcomeLength = 50

var (
	bulletMarker    = regexp.MustCompile(`(?m)^([ \t]*)[-*+•][ \t]+`)
	transitionWord  = regexp.MustCompile(`\*{0,2}\b(Therefore|However|Additionally)\b\*{0,2}`)
	exclamationRun  = regexp.MustCompile(`!+`)
	scenarioLineRef = regexp.MustCompile(`(?m)^Scenario: "(.*)"$`)
)

// BuildSeriousPrompt 构造严肃视角的提示词。提示词中必须出现 "serious" 或 "realistic"。
func BuildSeriousPrompt(s models.ProcessedScenario) string {
	var b strings.Builder
	b.WriteString("Provide a serious, realistic analysis of the following hypothetical scenario.\n")
	writeScenarioBlock(&b, s)
	b.WriteString("Describe the most plausible short-term and long-term consequences for individuals, ")
	b.WriteString("institutions and society. Ground the analysis in how people and systems actually behave, ")
	b.WriteString("use clear paragraphs and keep the tone thoughtful.")
	return b.String()
}

// BuildFunPrompt 构造趣味视角的提示词。提示词中必须出现 "fun" 或 "creative"。
func BuildFunPrompt(s models.ProcessedScenario) string {
	var b strings.Builder
	b.WriteString("Give a fun, creative interpretation of the following hypothetical scenario.\n")
	writeScenarioBlock(&b, s)
	b.WriteString("Be playful and imaginative, include unexpected twists and lighthearted humor, ")
	b.WriteString("and keep it friendly for all audiences.")
	return b.String()
}

func writeScenarioBlock(b *strings.Builder, s models.ProcessedScenario) {
	fmt.Fprintf(b, "Scenario type: %s\n", s.ScenarioType)
	fmt.Fprintf(b, "Scenario: %q\n", s.OriginalText)
	if len(s.KeyElements.Actors) > 0 {
		fmt.Fprintf(b, "Key actors: %s\n", strings.Join(s.KeyElements.Actors, ", "))
	}
	if s.KeyElements.Context != "" && s.KeyElements.Context != defaultContext {
		fmt.Fprintf(b, "Context: %s\n", s.KeyElements.Context)
	}
	fmt.Fprintf(b, "Complexity: %s\n", s.Complexity)
}

// ScenarioFromPrompt 从提示词中取回场景原文
func ScenarioFromPrompt(prompt string) string {
	m := scenarioLineRef.FindStringSubmatch(prompt)
	if m == nil {
		return ""
	}
	text, err := strconv.Unquote(`"` + m[1] + `"`)
	if err != nil {
		return m[1]
	}
	return text
}

// NormalizeBullets 将 -、*、+ 等列表标记统一为 •，保留缩进
func NormalizeBullets(text string) string {
	return bulletMarker.ReplaceAllString(text, "${1}• ")
}

// FormatSeriousText 统一列表标记并加粗关键转折词
func FormatSeriousText(text string) string {
	text = NormalizeBullets(text)
	return transitionWord.ReplaceAllString(text, "**$1**")
}

// FormatFunText 统一列表标记并在感叹号后追加装饰，!、!!、!!! 各不相同
func FormatFunText(text string) string {
	text = NormalizeBullets(text)
	return exclamationRun.ReplaceAllStringFunc(text, func(run string) string {
		switch len(run) {
		case 1:
			return run + " ✨"
		case 2:
			return run + " 🎉"
		default:
			return run + " 🚀"
		}
	})
}

// OutcomeGenerator 单一视角的结果生成器。
// 调用外部生成能力失败、超时或结果不可用时返回确定性的降级内容，从不向调用方报错。
type OutcomeGenerator struct {
	lens      models.Lens
	generator services.TextGenerator
	policy    retry.Policy
	filter    *ContentFilter
	minLength int
	logger    logger.Logger

	buildPrompt func(models.ProcessedScenario) string
	format      func(string) string
	fallback    func(string) string
}

// NewSeriousGenerator 创建严肃视角生成器
func NewSeriousGenerator(gen services.TextGenerator, policy retry.Policy, cfg *config.GeneratorConfig, log logger.Logger) *OutcomeGenerator {
	g := newOutcomeGenerator(models.LensSerious, gen, policy, cfg, log)
	g.buildPrompt = BuildSeriousPrompt
	g.format = FormatSeriousText
	g.fallback = retry.SeriousFallback
	return g
}

// NewFunGenerator 创建趣味视角生成器
func NewFunGenerator(gen services.TextGenerator, policy retry.Policy, cfg *config.GeneratorConfig, log logger.Logger) *OutcomeGenerator {
	g := newOutcomeGenerator(models.LensFun, gen, policy, cfg, log)
	g.buildPrompt = BuildFunPrompt
	g.format = FormatFunText
	g.fallback = retry.FunFallback
	return g
}

func newOutcomeGenerator(lens models.Lens, gen services.TextGenerator, policy retry.Policy, cfg *config.GeneratorConfig, log logger.Logger) *OutcomeGenerator {
	minLength := defaultMinOutcomeLength
	if cfg != nil && cfg.MinOutcomeLength > 0 {
		minLength = cfg.MinOutcomeLength
	}
	if log == nil {
		log = logger.Discard()
	}
	return &OutcomeGenerator{
		lens:      lens,
		generator: gen,
		policy:    policy,
		filter:    NewContentFilter(),
		minLength: minLength,
		logger:    log,
	}
}

// Lens 返回生成视角
func (g *OutcomeGenerator) Lens() models.Lens {
	return g.lens
}

// GenerateOutcome 返回最终文本
func (g *OutcomeGenerator) GenerateOutcome(ctx context.Context, s models.ProcessedScenario) string {
	return g.Generate(ctx, s).Text
}

// Generate 调用生成能力（带重试），过滤、格式化并检查结果，不可用时降级。
func (g *OutcomeGenerator) Generate(ctx context.Context, s models.ProcessedScenario) (outcome models.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			g.logger.ErrorContext(ctx, "结果生成异常，使用降级内容", "lens", g.lens, "panic", fmt.Sprint(r))
			outcome = models.Outcome{Text: g.fallback(s.OriginalText), Fallback: true, Attempts: outcome.Attempts}
		}
		outcome.Duration = time.Since(start).Milliseconds()
	}()

	if g.generator == nil {
		g.logger.WarnContext(ctx, "未配置生成能力，使用降级内容", "lens", g.lens)
		return models.Outcome{Text: g.fallback(s.OriginalText), Fallback: true}
	}

	prompt := g.buildPrompt(s)
	result, err := retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		return g.generator.GenerateResponse(ctx, prompt)
	})
	if err != nil {
		g.logger.WarnContext(ctx, "生成失败，使用降级内容",
			"lens", g.lens,
			"attempts", result.Attempts,
			"error_type", retry.TypeOf(err),
			"error", err.Error(),
		)
		return models.Outcome{Text: g.fallback(s.OriginalText), Fallback: true, Attempts: result.Attempts}
	}

	text := g.postprocess(result.Value)
	if reason := g.rejectReason(text); reason != "" {
		g.logger.WarnContext(ctx, "生成结果不可用，使用降级内容",
			"lens", g.lens,
			"reason", reason,
			"length", utf8.RuneCountInString(text),
		)
		return models.Outcome{Text: g.fallback(s.OriginalText), Fallback: true, Attempts: result.Attempts}
	}

	return models.Outcome{Text: text, Attempts: result.Attempts}
}

// Invoke Lambda 节点形式
func (g *OutcomeGenerator) Invoke(ctx context.Context, s models.ProcessedScenario) (models.Outcome, error) {
	return g.Generate(ctx, s), nil
}

func (g *OutcomeGenerator) postprocess(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = g.filter.Strip(text)
	return strings.TrimSpace(g.format(text))
}

func (g *OutcomeGenerator) rejectReason(text string) string {
	switch {
	case text == "":
		return "empty"
	case utf8.RuneCountInString(text) < g.minLength:
		return "too short"
	case containsFailurePhrase(text):
		return "generic failure phrase"
	}
	return ""
}
