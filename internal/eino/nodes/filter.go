package nodes

import (
	"regexp"
	"strings"
)

// denyGroup 一组按整词匹配、大小写不敏感的禁用词
type denyGroup struct {
	name    string
	pattern *regexp.Regexp
}

// ContentFilter 保守的禁用词过滤器。
// 只做字面整词匹配，不做语义审核：变形写法（leetspeak、连字符拆分等）不保证能被拦截。
type ContentFilter struct {
	groups []denyGroup
}

var defaultDenyGroups = []denyGroup{
	{
		name:    "violence",
		pattern: regexp.MustCompile(`(?i)\b(kill|killing|murder|murdering|suicide|bomb|bombing|terrorist|terrorism|torture|massacre|genocide|stab|stabbing|behead)\b`),
	},
	{
		name:    "explicit",
		pattern: regexp.MustCompile(`(?i)\b(porn|porno|pornography|nude|nudes|nsfw|xxx|sexual|sex)\b`),
	},
	{
		name:    "discriminatory",
		pattern: regexp.MustCompile(`(?i)\b(racist|bigot|bigoted|supremacist|ethnic cleansing|hate crime)\b`),
	},
}

// NewContentFilter 创建默认禁用词过滤器
func NewContentFilter() *ContentFilter {
	return &ContentFilter{groups: defaultDenyGroups}
}

// Match 返回首个命中的分组名
func (f *ContentFilter) Match(text string) (string, bool) {
	for _, g := range f.groups {
		if g.pattern.MatchString(text) {
			return g.name, true
		}
	}
	return "", false
}

var (
	horizontalSpaceRun = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct   = regexp.MustCompile(`[ \t]+([,.;:!?])`)
)

// Strip 从文本中移除命中的禁用词，不重新生成
func (f *ContentFilter) Strip(text string) string {
	stripped := text
	for _, g := range f.groups {
		stripped = g.pattern.ReplaceAllString(stripped, "")
	}
	if stripped == text {
		return text
	}

	stripped = horizontalSpaceRun.ReplaceAllString(stripped, " ")
	stripped = spaceBeforePunct.ReplaceAllString(stripped, "$1")
	return strings.TrimSpace(stripped)
}

// GenericFailurePhrases 生成能力自身的错误提示，不能当作正文
var GenericFailurePhrases = []string{
	"error occurred",
	"failed to generate",
	"unable to complete",
	"sorry, i cannot",
	"i can't process",
}

// containsFailurePhrase 是否包含通用失败短语
func containsFailurePhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range GenericFailurePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
