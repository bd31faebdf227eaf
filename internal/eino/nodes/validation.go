package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"whatif-sim/internal/domain/models"
	"whatif-sim/internal/eino/config"
)

// 面向用户的校验失败提示
const (
	MsgEmptyScenario     = `Please provide a detailed scenario to explore. Try starting with "What if..."`
	MsgInappropriate     = "Please rephrase your scenario to avoid inappropriate content."
	MsgNotMeaningful     = `Please be more specific about your scenario. Try something like "What if I could fly?"`
	MsgUnreadableInput   = "We couldn't read your scenario. Please enter it as plain text."
	MsgValidationFailure = "We couldn't check your scenario right now. Please try again."
)

var (
	canonicalOpener = regexp.MustCompile(`(?i)^(what if|suppose|imagine if|let's say|let’s say|hypothetically)\b`)

	subjectToken = regexp.MustCompile(`(?i)\b(i|you|he|she|we|they|it|everyone|everybody|someone|somebody|nobody|people|humans|humanity|society|(the|a|an)\s+(world|government|company|internet|economy|earth|moon|sun|ocean|city|country|planet|school|team|president|king|queen|war|climate|population|dinosaurs|animals|cats|dogs|robots|computer|computers|cars|technology|industry|market|office|boss|universe|weather|sky))\b`)

	actionToken = regexp.MustCompile(`(?i)\b(could|would|might|can|will|should|must|changes?|changed|stops?|stopped|starts?|started|becomes?|became|had|has|have|were|was|never|always|disappears?|disappeared|invents?|invented|discovers?|discovered|lives?|lived|lose|lost|wins?|won|fly|flew|rules?|ruled|replaces?|replaced|ends?|ended|vanish(es|ed)?)\b`)

	questionOpener = regexp.MustCompile(`(?i)^(who|when|where|why|how)\b`)
	greetingOpener = regexp.MustCompile(`(?i)^(hi|hello|hey|greetings|good (morning|afternoon|evening))\b`)
	placeholderHit = regexp.MustCompile(`(?i)\b(random|text|words)\b`)
)

// InputValidator 场景输入校验器，无请求级状态，可并发使用
type InputValidator struct {
	minLength int
	maxLength int
	filter    *ContentFilter
}

// NewInputValidator 创建输入校验器
func NewInputValidator(cfg *config.ValidatorConfig) *InputValidator {
	v := &InputValidator{minLength: 10, maxLength: 1000, filter: NewContentFilter()}
	if cfg != nil {
		if cfg.MinLength > 0 {
			v.minLength = cfg.MinLength
		}
		if cfg.MaxLength > 0 {
			v.maxLength = cfg.MaxLength
		}
	}
	return v
}

// ValidateScenario 校验原始输入。总是返回结果，内部异常转换为校验失败。
// 检查顺序：空值 -> 清洗 -> 长度 -> 禁用词 -> 语义完整性。
func (v *InputValidator) ValidateScenario(raw string) (result models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ValidationResult{
				IsValid:        false,
				SanitizedInput: strings.TrimSpace(strings.ToValidUTF8(raw, "")),
				ErrorMessage:   MsgValidationFailure,
			}
		}
	}()

	if !utf8.ValidString(raw) {
		return invalid(strings.ToValidUTF8(raw, ""), MsgUnreadableInput)
	}
	if strings.TrimSpace(raw) == "" {
		return invalid("", MsgEmptyScenario)
	}

	sanitized := SanitizeScenario(raw)
	if sanitized == "" {
		return invalid("", MsgEmptyScenario)
	}

	length := utf8.RuneCountInString(sanitized)
	if length < v.minLength {
		return invalid(sanitized, fmt.Sprintf("Please provide a more detailed scenario (at least %d characters).", v.minLength))
	}
	if length > v.maxLength {
		return invalid(truncateRunes(sanitized, v.maxLength),
			fmt.Sprintf("Your scenario is too long. Please keep it under %d characters.", v.maxLength))
	}

	if _, hit := v.filter.Match(sanitized); hit {
		return invalid(sanitized, MsgInappropriate)
	}

	if !IsMeaningfulScenario(sanitized) {
		return invalid(sanitized, MsgNotMeaningful)
	}

	return models.ValidationResult{IsValid: true, SanitizedInput: sanitized}
}

// Validate Lambda 节点形式
func (v *InputValidator) Validate(ctx context.Context, raw string) (models.ValidationResult, error) {
	return v.ValidateScenario(raw), nil
}

// IsMeaningfulScenario 判断文本是否像一个可探索的场景。
// 以规范开头（what if / suppose 等）直接通过；否则需要同时满足：
// 有主语、有动作或情态词、至少 3 个词、不以疑问词或问候语开头、不含占位词。
func IsMeaningfulScenario(text string) bool {
	if canonicalOpener.MatchString(text) {
		return true
	}

	switch {
	case !subjectToken.MatchString(text):
		return false
	case !actionToken.MatchString(text):
		return false
	case len(strings.Fields(text)) < 3:
		return false
	case questionOpener.MatchString(text), greetingOpener.MatchString(text):
		return false
	case placeholderHit.MatchString(text):
		return false
	}
	return true
}

func invalid(sanitized, message string) models.ValidationResult {
	return models.ValidationResult{
		IsValid:        false,
		SanitizedInput: sanitized,
		ErrorMessage:   message,
	}
}
