// Package config 定义 Eino 框架的配置结构
package config

import (
	"fmt"
	"time"

	"whatif-sim/pkg/retry"
)

// EinoConfig Eino 框架的总配置结构。
// 包含模拟流程、输入校验、生成能力、重试、格式化以及回调系统的配置。
type EinoConfig struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Validator ValidatorConfig `yaml:"validator"`
	Generator GeneratorConfig `yaml:"generator"`
	Retry     retry.Policy    `yaml:"retry"`
	Formatter FormatterConfig `yaml:"formatter"`
	Callbacks CallbacksConfig `yaml:"callbacks"`
}

// SimulatorConfig 定义模拟流程（Simulation Graph）的运行开关。
// 运行时可通过 Simulator.UpdateConfig 局部覆盖。
type SimulatorConfig struct {
	EnableLogging            bool `yaml:"enable_logging"`
	EnableMetrics            bool `yaml:"enable_metrics"`
	EnableParallelGeneration bool `yaml:"enable_parallel_generation"`

	// MaxProcessingTime 调用方自行使用的软超时，流程内部不强制
	MaxProcessingTime time.Duration `yaml:"max_processing_time"`
}

// ValidatorConfig 定义输入校验的长度限制（按字符计）。
type ValidatorConfig struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// GeneratorConfig 定义文本生成能力的配置。
// 支持 demo、gemini（generative-ai-go）和 genai（google.golang.org/genai）三种提供商。
type GeneratorConfig struct {
	Provider string `yaml:"provider"` // demo, gemini, genai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`

	// Timeout 单次生成调用超时
	Timeout time.Duration `yaml:"timeout"`

	// MinOutcomeLength 生成结果的最小字符数，低于该值使用降级内容
	MinOutcomeLength int `yaml:"min_outcome_length"`

	// DemoLatency demo 提供商模拟的响应延迟
	DemoLatency time.Duration `yaml:"demo_latency"`
}

// FormatterConfig 定义输出格式化的配置。
type FormatterConfig struct {
	// MinOutcomeLength validateOutcomes 使用的最小长度
	MinOutcomeLength int `yaml:"min_outcome_length"`

	// ParagraphThreshold 超过该长度且没有换行的文本会在句末插入段落分隔
	ParagraphThreshold int `yaml:"paragraph_threshold"`
}

// CallbacksConfig 定义 Eino 框架的回调系统配置。
type CallbacksConfig struct {
	Logging LoggingCallbackConfig `yaml:"logging"`
	Metrics MetricsCallbackConfig `yaml:"metrics"`
}

// LoggingCallbackConfig 定义日志回调的配置。
type LoggingCallbackConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// MetricsCallbackConfig 定义指标回调的配置。
type MetricsCallbackConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultEinoConfig 创建并返回一个包含默认值的 EinoConfig 对象。
// 默认使用 demo 生成器并开启并行生成。
func DefaultEinoConfig() *EinoConfig {
	return &EinoConfig{
		Simulator: SimulatorConfig{
			EnableLogging:            true,
			EnableMetrics:            true,
			EnableParallelGeneration: true,
			MaxProcessingTime:        30 * time.Second,
		},
		Validator: ValidatorConfig{
			MinLength: 10,
			MaxLength: 1000,
		},
		Generator: GeneratorConfig{
			Provider:         "demo",
			Model:            "gemini-2.0-flash",
			Timeout:          20 * time.Second,
			MinOutcomeLength: 50,
		},
		Retry: retry.DefaultPolicy(),
		Formatter: FormatterConfig{
			MinOutcomeLength:   20,
			ParagraphThreshold: 400,
		},
		Callbacks: CallbacksConfig{
			Logging: LoggingCallbackConfig{
				Enabled: true,
				Level:   "debug",
			},
			Metrics: MetricsCallbackConfig{
				Enabled: true,
			},
		},
	}
}

// Validate 检查 EinoConfig 的有效性，并为零值填充默认值。
func (c *EinoConfig) Validate() error {
	if err := c.Validator.Validate(); err != nil {
		return fmt.Errorf("validator config: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry config: %w", err)
	}
	if c.Simulator.MaxProcessingTime < 0 {
		return fmt.Errorf("max_processing_time must not be negative")
	}
	if c.Formatter.MinOutcomeLength <= 0 {
		c.Formatter.MinOutcomeLength = 20
	}
	if c.Formatter.ParagraphThreshold <= 0 {
		c.Formatter.ParagraphThreshold = 400
	}
	return nil
}

// Validate 检查长度限制。
func (v *ValidatorConfig) Validate() error {
	if v.MinLength <= 0 {
		v.MinLength = 10
	}
	if v.MaxLength <= 0 {
		v.MaxLength = 1000
	}
	if v.MinLength >= v.MaxLength {
		return fmt.Errorf("min_length (%d) must be less than max_length (%d)", v.MinLength, v.MaxLength)
	}
	return nil
}

// Validate 检查提供商及其必需参数。
func (g *GeneratorConfig) Validate() error {
	switch g.Provider {
	case "", "demo":
		g.Provider = "demo"
	case "gemini", "genai":
		if g.APIKey == "" {
			return fmt.Errorf("api_key is required for provider %s", g.Provider)
		}
		if g.Model == "" {
			return fmt.Errorf("model is required for provider %s", g.Provider)
		}
	default:
		return fmt.Errorf("unsupported generator provider: %s", g.Provider)
	}

	if g.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if g.MinOutcomeLength <= 0 {
		g.MinOutcomeLength = 50
	}
	return nil
}
