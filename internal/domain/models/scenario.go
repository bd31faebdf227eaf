package models

// ScenarioType 场景类型
type ScenarioType string

const (
	ScenarioPersonal     ScenarioType = "personal"
	ScenarioProfessional ScenarioType = "professional"
	ScenarioHistorical   ScenarioType = "historical"
	ScenarioHypothetical ScenarioType = "hypothetical"
)

// Valid 判断是否为已知场景类型
func (t ScenarioType) Valid() bool {
	switch t {
	case ScenarioPersonal, ScenarioProfessional, ScenarioHistorical, ScenarioHypothetical:
		return true
	}
	return false
}

// Complexity 场景复杂度
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Valid 判断是否为已知复杂度
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// Lens 生成视角
type Lens string

const (
	LensSerious Lens = "serious"
	LensFun     Lens = "fun"
)

// ValidationResult 输入校验结果，创建后不再修改
type ValidationResult struct {
	// IsValid 是否通过校验
	IsValid bool `json:"isValid"`

	// SanitizedInput 清洗后的输入（失败时为尽力而为的文本）
	SanitizedInput string `json:"sanitizedInput"`

	// ErrorMessage 面向用户的具体失败原因
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// KeyElements 从场景中抽取的关键要素
type KeyElements struct {
	Actors  []string `json:"actors"`
	Actions []string `json:"actions"`
	Context string   `json:"context"`
}

// ProcessedScenario 结构化后的场景。ScenarioType 与 Complexity 总是有值。
type ProcessedScenario struct {
	OriginalText string       `json:"originalText"`
	ScenarioType ScenarioType `json:"scenarioType"`
	KeyElements  KeyElements  `json:"keyElements"`
	Complexity   Complexity   `json:"complexity"`
}

// Outcome 单个视角的生成结果
type Outcome struct {
	// Text 最终文本，生成失败时为降级内容
	Text string `json:"text"`

	// Fallback 是否使用了降级内容
	Fallback bool `json:"fallback"`

	// Attempts 实际调用生成能力的次数
	Attempts int `json:"attempts"`

	// Duration 生成耗时（毫秒）
	Duration int64 `json:"duration"`
}
