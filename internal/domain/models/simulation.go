package models

// OutputMetadata 格式化输出的元数据
type OutputMetadata struct {
	// ProcessingTime 处理耗时（毫秒）
	ProcessingTime int64  `json:"processingTime"`
	ScenarioType   string `json:"scenarioType"`
	Complexity     string `json:"complexity,omitempty"`
}

// FormattedOutput 双视角格式化输出，两个版本均非空且通过质量检查
type FormattedOutput struct {
	SeriousVersion string         `json:"seriousVersion"`
	FunVersion     string         `json:"funVersion"`
	Metadata       OutputMetadata `json:"metadata"`
}

// Metrics 各阶段耗时（毫秒）与降级情况。失败路径上只记录已经执行的阶段。
type Metrics struct {
	TotalProcessingTime   int64  `json:"totalProcessingTime"`
	ValidationTime        int64  `json:"validationTime"`
	ProcessingTime        int64  `json:"processingTime"`
	SeriousGenerationTime int64  `json:"seriousGenerationTime"`
	FunGenerationTime     int64  `json:"funGenerationTime"`
	FormattingTime        int64  `json:"formattingTime"`
	Success               bool   `json:"success"`
	ErrorType             string `json:"errorType,omitempty"`

	SeriousFallback bool `json:"seriousFallback"`
	FunFallback     bool `json:"funFallback"`
	SeriousAttempts int  `json:"seriousAttempts"`
	FunAttempts     int  `json:"funAttempts"`
}

// 失败时 Metrics.ErrorType 的取值
const (
	ErrorTypeValidation = "validation"
	ErrorTypeUnknown    = "unknown"
)

// SimulationResult 一次模拟的完整结果
type SimulationResult struct {
	Success            bool             `json:"success"`
	FormattedOutput    *FormattedOutput `json:"formattedOutput,omitempty"`
	PresentationOutput string           `json:"presentationOutput,omitempty"`
	Error              string           `json:"error,omitempty"`
	Metrics            *Metrics         `json:"metrics,omitempty"`
}
