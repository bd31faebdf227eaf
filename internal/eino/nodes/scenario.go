package nodes

import (
	"context"
	"regexp"
	"strings"

	"whatif-sim/internal/domain/models"
)

// classificationRule 分类规则，按顺序匹配，首个命中生效
type classificationRule struct {
	scenarioType models.ScenarioType
	match        func(text string) bool
}

var (
	historicalReference = regexp.MustCompile(`(?i)\b(napoleon|caesar|cleopatra|lincoln|churchill|columbus|einstein|shakespeare|genghis khan|alexander the great|roman empire|world war (i|ii|1|2|one|two)|wwi|wwii|ww1|ww2|civil war|cold war|renaissance|industrial revolution|french revolution|moon landing|ancient (rome|greece|egypt)|middle ages|dinosaurs?)\b`)
	pastPerfect         = regexp.MustCompile(`(?i)\b(had (been|won|lost|never|not|invented|discovered|survived|failed)|never happened|never existed)\b`)
	eraReference        = regexp.MustCompile(`(?i)\b(\d{3,4}s?|century|centuries|era|ancient|medieval|history|historical|empire|dynasty|decade|bc|ad|war)\b`)

	professionalVocabulary = regexp.MustCompile(`(?i)\b(job|jobs|work|workplace|office|career|business|businesses|company|companies|boss|manager|employees?|colleagues?|coworkers?|salary|startup|industry|industries|corporate|clients?|meetings?|promotion|profession|professional|ceo|interview)\b`)

	firstPerson       = regexp.MustCompile(`(?i)\b(i|i'm|i'd|i’m|i’d|me|my|mine|myself)\b`)
	collectiveAbility = regexp.MustCompile(`(?i)\b(everyone|everybody|people|we|humans)\s+(could|can|were able to|had the ability to)\b`)

	actorPattern  = regexp.MustCompile(`(?i)\b(i|you|he|she|we|they|everyone|everybody|people|humans|humanity|someone|nobody|society|governments?|scientists?|teachers?|students?|doctors?|workers?|employees?|boss|managers?|ceo|president|king|queen|friends?|family|parents?|children|kids|animals|cats?|dogs?|robots?|aliens?|companies|company)\b`)
	actionPattern = regexp.MustCompile(`(?i)\b(could|would|might|can|will|should|changes?|changed|stops?|stopped|starts?|started|become|became|creates?|created|invents?|invented|discovers?|discovered|disappears?|disappeared|fly|read|talk|live|win|won|lose|lost|rules?|ruled|replaces?|replaced|travel|travelled|traveled|work|worked|build|built|destroy|destroyed|never)\b`)
)

// contextKeywords 领域关键词，按顺序匹配
var contextKeywords = []struct {
	context string
	pattern *regexp.Regexp
}{
	{"technology", regexp.MustCompile(`(?i)\b(internet|computers?|ai|robots?|phones?|smartphones?|technology|software|machines?)\b`)},
	{"science", regexp.MustCompile(`(?i)\b(gravity|physics|time travel|space|planets?|moon|sun|science|scientists?|atoms?|universe)\b`)},
	{"nature", regexp.MustCompile(`(?i)\b(animals|cats?|dogs?|ocean|oceans|climate|weather|nature|forests?|dinosaurs?)\b`)},
	{"society", regexp.MustCompile(`(?i)\b(government|laws?|society|money|economy|politics|elections?|cities|city)\b`)},
	{"work", professionalVocabulary},
	{"history", regexp.MustCompile(`(?i)\b(war|empire|century|history|ancient|kings?|queens?)\b`)},
	{"relationships", regexp.MustCompile(`(?i)\b(friends?|family|love|parents?|children|marriage)\b`)},
	{"abilities", regexp.MustCompile(`(?i)\b(read minds|fly|invisible|superpowers?|teleport)\b`)},
}

const defaultContext = "general"

// ScenarioProcessor 场景结构化处理器，无请求级状态，可并发使用
type ScenarioProcessor struct {
	rules   []classificationRule
	extract func(text string) models.KeyElements
}

// NewScenarioProcessor 创建场景处理器
func NewScenarioProcessor() *ScenarioProcessor {
	return &ScenarioProcessor{
		rules: []classificationRule{
			{models.ScenarioHistorical, func(text string) bool {
				return historicalReference.MatchString(text) ||
					(pastPerfect.MatchString(text) && eraReference.MatchString(text))
			}},
			{models.ScenarioProfessional, professionalVocabulary.MatchString},
			{models.ScenarioPersonal, func(text string) bool {
				return firstPerson.MatchString(text) || collectiveAbility.MatchString(text)
			}},
		},
		extract: ExtractKeyElements,
	}
}

// ProcessScenario 对清洗后的文本分类并抽取关键要素。
// 不向外返回错误：内部异常时返回最小化的降级场景。
func (p *ScenarioProcessor) ProcessScenario(text string) (scenario models.ProcessedScenario) {
	defer func() {
		if r := recover(); r != nil {
			scenario = FallbackScenario(text)
		}
	}()

	elements := p.extract(text)
	return models.ProcessedScenario{
		OriginalText: text,
		ScenarioType: p.Classify(text),
		KeyElements:  elements,
		Complexity:   AssessComplexity(text, elements),
	}
}

// Process Lambda 节点形式，输入为校验节点的输出，只处理清洗后的文本
func (p *ScenarioProcessor) Process(ctx context.Context, v models.ValidationResult) (models.ProcessedScenario, error) {
	return p.ProcessScenario(v.SanitizedInput), nil
}

// Classify 按规则表顺序分类，未命中时归为 hypothetical
func (p *ScenarioProcessor) Classify(text string) models.ScenarioType {
	for _, rule := range p.rules {
		if rule.match(text) {
			return rule.scenarioType
		}
	}
	return models.ScenarioHypothetical
}

// ExtractKeyElements 抽取参与者、动作和领域上下文
func ExtractKeyElements(text string) models.KeyElements {
	return models.KeyElements{
		Actors:  uniqueMatches(actorPattern, text),
		Actions: uniqueMatches(actionPattern, text),
		Context: detectContext(text),
	}
}

// AssessComplexity 词数加上 3 倍要素数得到分值。
// 分值单调：文本越长、要素越多，复杂度不会降低。
func AssessComplexity(text string, elements models.KeyElements) models.Complexity {
	score := len(strings.Fields(text)) + 3*(len(elements.Actors)+len(elements.Actions))
	switch {
	case score < 15:
		return models.ComplexitySimple
	case score < 30:
		return models.ComplexityModerate
	default:
		return models.ComplexityComplex
	}
}

// FallbackScenario 处理失败时的最小化场景
func FallbackScenario(text string) models.ProcessedScenario {
	return models.ProcessedScenario{
		OriginalText: text,
		ScenarioType: models.ScenarioHypothetical,
		KeyElements: models.KeyElements{
			Actors:  []string{},
			Actions: []string{},
			Context: text,
		},
		Complexity: models.ComplexitySimple,
	}
}

func uniqueMatches(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func detectContext(text string) string {
	for _, kw := range contextKeywords {
		if kw.pattern.MatchString(text) {
			return kw.context
		}
	}
	return defaultContext
}
