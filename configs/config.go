package configs

import (
	"fmt"
	"time"

	einoconfig "whatif-sim/internal/eino/config"
)

// Config 主配置结构体，定义了应用程序的所有配置项。
// 包含服务器、日志、反馈存储、会话和 Eino 模拟流程等模块的配置信息。
type Config struct {
	Server   ServerConfig          `yaml:"server"`
	Logging  LoggingConfig         `yaml:"logging"`
	Feedback FeedbackConfig        `yaml:"feedback"`
	Session  SessionConfig         `yaml:"session"`
	Eino     einoconfig.EinoConfig `yaml:"eino"` // Eino 框架配置
}

// ServerConfig 定义服务器相关的配置参数。
// 包含监听地址、端口、超时设置和连接限制等。
type ServerConfig struct {
	Host                    string        `yaml:"host"`
	Port                    int           `yaml:"port"`
	ReadTimeout             time.Duration `yaml:"read_timeout"`
	WriteTimeout            time.Duration `yaml:"write_timeout"`
	IdleTimeout             time.Duration `yaml:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
	MaxConnections          int           `yaml:"max_connections"`
}

// LoggingConfig 定义日志系统的配置参数。
// 包含日志级别、输出目标（stdout/stderr/file）和格式（text/json）。
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
	Format   string `yaml:"format"`
}

// FeedbackConfig 定义用户反馈存储的配置参数。
// Store 支持 memory、redis、sqlite、postgres 四种类型。
type FeedbackConfig struct {
	Store string      `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`

	// DSN sqlite 为文件路径，postgres 为连接串
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// RedisConfig 定义 Redis 连接参数。
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SessionConfig 定义会话 ID 的生成方式。
// Generator 为 uuid 或 counter，counter 生成 "<prefix>_1"、"<prefix>_2"...
type SessionConfig struct {
	Generator string `yaml:"generator"`
	Prefix    string `yaml:"prefix"`
}

// Validate 检查 Config 配置结构体的有效性。
// 依次调用各个子配置项的 Validate 方法，如果发现无效配置，返回相应的错误。
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if err := c.Feedback.Validate(); err != nil {
		return fmt.Errorf("feedback config validation failed: %w", err)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config validation failed: %w", err)
	}

	if err := c.Eino.Validate(); err != nil {
		return fmt.Errorf("eino config validation failed: %w", err)
	}

	return nil
}

// Validate 检查 ServerConfig 配置的有效性。
// 确保端口号在有效范围内，且超时设置和最大连接数为正数。
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	if s.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive")
	}

	return nil
}

// Validate 检查 LoggingConfig 配置的有效性。
// 确保日志级别、输出目标和格式有效，如果输出到文件，确保文件路径已指定。
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	validOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}

	if !validOutputs[l.Output] {
		return fmt.Errorf("invalid log output: %s", l.Output)
	}

	if l.Output == "file" && l.FilePath == "" {
		return fmt.Errorf("file path is required when output is file")
	}

	// 验证日志格式，空值默认为 text
	validFormats := map[string]bool{
		"text": true, "json": true, "": true,
	}

	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	return nil
}

// Validate 检查 FeedbackConfig 配置的有效性。
// 确保存储类型受支持，redis 需要地址，sqlite 和 postgres 需要 DSN。
func (f *FeedbackConfig) Validate() error {
	if f.Table == "" {
		f.Table = "user_feedback"
	}

	switch f.Store {
	case "", "memory":
		f.Store = "memory"
	case "redis":
		if f.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required")
		}
		if f.Redis.KeyPrefix == "" {
			f.Redis.KeyPrefix = "whatif:feedback:"
		}
	case "sqlite", "postgres":
		if f.DSN == "" {
			return fmt.Errorf("dsn is required for feedback store %s", f.Store)
		}
	default:
		return fmt.Errorf("unsupported feedback store: %s", f.Store)
	}

	return nil
}

// Validate 检查 SessionConfig 配置的有效性。
func (s *SessionConfig) Validate() error {
	switch s.Generator {
	case "", "uuid":
		s.Generator = "uuid"
	case "counter":
		if s.Prefix == "" {
			s.Prefix = "session"
		}
	default:
		return fmt.Errorf("unsupported session generator: %s", s.Generator)
	}
	return nil
}

// GetAddr 获取服务器的完整监听地址。
// 返回格式为 "Host:Port" 的字符串。
func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
