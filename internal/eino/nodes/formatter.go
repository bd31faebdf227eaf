package nodes

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/eino/config"
	"whatif-sim/pkg/retry"
)

// 展示文本中的固定段落标题
const (
	SeriousSectionTitle = "🎯 Serious Analysis"
	FunSectionTitle     = "🎉 Fun Interpretation"
	UnknownTypeLabel    = "Unknown"
	unknownTypeEmoji    = "❓"
	sentencesPerBlock   = 3
)

// SectionSeparator 两个视角之间的分隔线
var SectionSeparator = strings.Repeat("─", 40)

var typeEmoji = map[models.ScenarioType]string{
	models.ScenarioPersonal:     "👤",
	models.ScenarioProfessional: "💼",
	models.ScenarioHistorical:   "📚",
	models.ScenarioHypothetical: "🤔",
}

var (
	excessBlankLines = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	excessSpaces     = regexp.MustCompile(` {3,}`)
	sentenceBoundary = regexp.MustCompile(`[.!?]["')\]]?\s+`)

	presentationHeader  = regexp.MustCompile(`^(\S+) (\S+) Scenario(?: \((\S+) complexity\))?$`)
	presentationTrailer = regexp.MustCompile(`Generated in (\d+)ms\s*$`)
)

// OutputFormatter 合并两个视角的结果并生成展示文本，无请求级状态
type OutputFormatter struct {
	minLength          int
	paragraphThreshold int
}

// NewOutputFormatter 创建格式化器
func NewOutputFormatter(cfg *config.FormatterConfig) *OutputFormatter {
	f := &OutputFormatter{minLength: 20, paragraphThreshold: 400}
	if cfg != nil {
		if cfg.MinOutcomeLength > 0 {
			f.minLength = cfg.MinOutcomeLength
		}
		if cfg.ParagraphThreshold > 0 {
			f.paragraphThreshold = cfg.ParagraphThreshold
		}
	}
	return f
}

// ValidateOutcomes 两个结果都非空且达到最小长度
func (f *OutputFormatter) ValidateOutcomes(serious, fun string) bool {
	return f.meetsLength(serious) && f.meetsLength(fun)
}

// FormatResults 清洗两个版本并附加元数据。
// 未通过质量检查的版本替换为带 [Fallback] 标记的降级内容；两个版本相同时趣味版本被替换。
// 内部异常时返回降级输出，不向外抛出。
func (f *OutputFormatter) FormatResults(serious, fun string, s models.ProcessedScenario, processingTimeMs int64) (out models.FormattedOutput) {
	defer func() {
		if r := recover(); r != nil {
			out = f.fallbackOutput(serious, fun, s, processingTimeMs)
		}
	}()

	seriousVersion := CleanText(serious, f.paragraphThreshold)
	funVersion := CleanText(fun, f.paragraphThreshold)

	if !f.passesQuality(seriousVersion) {
		seriousVersion = LabelFallback(retry.SeriousFallback(s.OriginalText))
	}
	if !f.passesQuality(funVersion) || funVersion == seriousVersion {
		funVersion = LabelFallback(retry.FunFallback(s.OriginalText))
	}

	return models.FormattedOutput{
		SeriousVersion: seriousVersion,
		FunVersion:     funVersion,
		Metadata:       metadataFor(s, processingTimeMs),
	}
}

// Format Lambda 节点形式
func (f *OutputFormatter) Format(ctx context.Context, in *FormatInput) (models.FormattedOutput, error) {
	if in == nil {
		return models.FormattedOutput{}, errors.New("format input is required")
	}
	return f.FormatResults(in.Serious, in.Fun, in.Scenario, in.ProcessingTimeMs), nil
}

// FormatInput 格式化节点输入
type FormatInput struct {
	Serious          string
	Fun              string
	Scenario         models.ProcessedScenario
	ProcessingTimeMs int64
}

// CreatePresentationOutput 生成合并后的展示文本。
// 段落顺序固定：标题、严肃分析、分隔线、趣味解读、耗时。
func (f *OutputFormatter) CreatePresentationOutput(out models.FormattedOutput) string {
	emoji, label := TypeLabel(out.Metadata.ScenarioType)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s Scenario", emoji, label)
	if out.Metadata.Complexity != "" {
		fmt.Fprintf(&b, " (%s complexity)", out.Metadata.Complexity)
	}
	b.WriteString("\n\n")
	b.WriteString(SeriousSectionTitle + "\n")
	b.WriteString(out.SeriousVersion)
	b.WriteString("\n\n" + SectionSeparator + "\n\n")
	b.WriteString(FunSectionTitle + "\n")
	b.WriteString(out.FunVersion)
	fmt.Fprintf(&b, "\n\nGenerated in %dms", out.Metadata.ProcessingTime)
	return b.String()
}

// TypeLabel 返回场景类型对应的 emoji 和首字母大写的标签，未知类型返回 ❓ Unknown
func TypeLabel(scenarioType string) (string, string) {
	emoji, ok := typeEmoji[models.ScenarioType(scenarioType)]
	if !ok {
		return unknownTypeEmoji, UnknownTypeLabel
	}
	return emoji, capitalize(scenarioType)
}

// Presentation 从展示文本中解析出的内容
type Presentation struct {
	Emoji          string
	TypeLabel      string
	Complexity     string
	SeriousVersion string
	FunVersion     string
	ProcessingTime int64
}

// ParsePresentation 解析 CreatePresentationOutput 生成的文本
func ParsePresentation(text string) (*Presentation, error) {
	header, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return nil, errors.New("presentation has no body")
	}
	hm := presentationHeader.FindStringSubmatch(header)
	if hm == nil {
		return nil, fmt.Errorf("unrecognized presentation header: %q", header)
	}

	tm := presentationTrailer.FindStringSubmatchIndex(rest)
	if tm == nil {
		return nil, errors.New("presentation has no processing time")
	}
	ms, err := strconv.ParseInt(rest[tm[2]:tm[3]], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse processing time: %w", err)
	}

	p := &Presentation{
		Emoji:          hm[1],
		TypeLabel:      hm[2],
		Complexity:     hm[3],
		ProcessingTime: ms,
	}

	body := strings.TrimSuffix(rest[:tm[0]], "\n\n")
	sep := "\n\n" + SectionSeparator + "\n\n"
	if seriousPart, funPart, found := strings.Cut(body, sep); found {
		p.SeriousVersion = strings.TrimPrefix(strings.TrimPrefix(seriousPart, "\n"), SeriousSectionTitle+"\n")
		p.FunVersion = strings.TrimPrefix(funPart, FunSectionTitle+"\n")
	}
	return p, nil
}

// CleanText 清洗规则：3 个以上连续换行压缩为一个空行，3 个以上连续空格压缩为一个，
// 超过阈值且没有换行的长文本在句末补充段落分隔。
func CleanText(text string, paragraphThreshold int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	text = excessSpaces.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if paragraphThreshold > 0 && !strings.Contains(text, "\n") && utf8.RuneCountInString(text) > paragraphThreshold {
		text = breakParagraphs(text)
	}
	return text
}

// breakParagraphs 每 sentencesPerBlock 句插入一个空行
func breakParagraphs(text string) string {
	bounds := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(bounds) < sentencesPerBlock {
		return text
	}

	var b strings.Builder
	last, count := 0, 0
	for _, bound := range bounds {
		if bound[1] >= len(text) {
			break
		}
		count++
		if count%sentencesPerBlock != 0 {
			continue
		}
		sentenceEnd := strings.TrimRightFunc(text[last:bound[1]], unicode.IsSpace)
		b.WriteString(sentenceEnd)
		b.WriteString("\n\n")
		last = bound[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func (f *OutputFormatter) meetsLength(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && utf8.RuneCountInString(trimmed) >= f.minLength
}

func (f *OutputFormatter) passesQuality(text string) bool {
	return f.meetsLength(text) && !containsFailurePhrase(text)
}

// fallbackOutput 尽量保留已有文本
func (f *OutputFormatter) fallbackOutput(serious, fun string, s models.ProcessedScenario, processingTimeMs int64) models.FormattedOutput {
	seriousVersion := strings.TrimSpace(serious)
	if seriousVersion == "" {
		seriousVersion = LabelFallback(retry.SeriousFallback(s.OriginalText))
	}
	funVersion := strings.TrimSpace(fun)
	if funVersion == "" || funVersion == seriousVersion {
		funVersion = LabelFallback(retry.FunFallback(s.OriginalText))
	}
	return models.FormattedOutput{
		SeriousVersion: seriousVersion,
		FunVersion:     funVersion,
		Metadata:       metadataFor(s, processingTimeMs),
	}
}

func metadataFor(s models.ProcessedScenario, processingTimeMs int64) models.OutputMetadata {
	return models.OutputMetadata{
		ProcessingTime: processingTimeMs,
		ScenarioType:   string(s.ScenarioType),
		Complexity:     string(s.Complexity),
	}
}

// LabelFallback 为降级内容加上 [Fallback] 前缀，已带前缀时原样返回
func LabelFallback(text string) string {
	if strings.HasPrefix(text, retry.FallbackLabel) {
		return text
	}
	return retry.FallbackLabel + " " + text
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
