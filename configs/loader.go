package configs

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	einoconfig "whatif-sim/internal/eino/config"
)

// configPaths 配置文件的搜索路径，按顺序取第一个存在的文件
var configPaths = []string{
	"configs/config.yaml",
	"config.yaml",
	"/etc/whatif-sim/config.yaml",
}

// Load 加载并验证应用程序配置。
// 它按照以下优先级顺序加载配置：
// 1. 默认配置
// 2. 配置文件（config.yaml，支持多个搜索路径）
// 3. 环境变量（覆盖配置文件中的值）
//
// 参数 ctx: 上下文对象。
// 返回加载并验证后的 Config 指针，如果出错则返回 error。
func Load(ctx context.Context) (*Config, error) {
	// 加载 .env 文件（如果存在）
	// 忽略错误，因为 .env 文件是可选的
	_ = godotenv.Load()

	config := DefaultConfig()

	for _, path := range configPaths {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, err
			}
			break
		}
	}

	// 从环境变量覆盖配置
	loadFromEnv(config)

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile 从指定文件加载配置，环境变量依然生效
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig 创建并返回一个包含默认值的 Config 对象。
// 默认使用 demo 生成器和内存反馈存储，无需任何外部服务即可运行。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                    "0.0.0.0",
			Port:                    8080,
			ReadTimeout:             30 * time.Second,
			WriteTimeout:            60 * time.Second,
			IdleTimeout:             60 * time.Second,
			GracefulShutdownTimeout: 30 * time.Second,
			MaxConnections:          1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Feedback: FeedbackConfig{
			Store: "memory",
			Table: "user_feedback",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "whatif:feedback:",
			},
		},
		Session: SessionConfig{
			Generator: "uuid",
			Prefix:    "session",
		},
		Eino: *einoconfig.DefaultEinoConfig(),
	}
}

// loadFromEnv 从环境变量中读取配置并覆盖 Config 中的值。
// 支持 WHATIF_PORT, WHATIF_GENERATOR_PROVIDER, GEMINI_API_KEY 等环境变量。
func loadFromEnv(config *Config) {
	// Server 配置
	if port := os.Getenv("WHATIF_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("WHATIF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// 生成能力配置
	if provider := os.Getenv("WHATIF_GENERATOR_PROVIDER"); provider != "" {
		config.Eino.Generator.Provider = provider
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Eino.Generator.APIKey = apiKey
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Eino.Generator.Model = model
	}

	if parallel := os.Getenv("WHATIF_PARALLEL_GENERATION"); parallel != "" {
		if v, err := strconv.ParseBool(parallel); err == nil {
			config.Eino.Simulator.EnableParallelGeneration = v
		}
	}

	// 反馈存储配置
	if store := os.Getenv("WHATIF_FEEDBACK_STORE"); store != "" {
		config.Feedback.Store = store
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Feedback.Redis.Addr = addr
	}

	if dsn := os.Getenv("WHATIF_FEEDBACK_DSN"); dsn != "" {
		config.Feedback.DSN = dsn
	}
}
