package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidation(t *testing.T) {
	// 默认配置无需外部服务即可通过验证
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig validation failed: %v", err)
	}
	if cfg.Eino.Generator.Provider != "demo" {
		t.Errorf("default provider = %s, want demo", cfg.Eino.Generator.Provider)
	}
	if !cfg.Eino.Simulator.EnableParallelGeneration {
		t.Errorf("parallel generation should be enabled by default")
	}
}

func TestFeedbackConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  FeedbackConfig
		wantErr bool
	}{
		{
			name:    "empty store defaults to memory",
			config:  FeedbackConfig{},
			wantErr: false,
		},
		{
			name:    "redis with addr passes",
			config:  FeedbackConfig{Store: "redis", Redis: RedisConfig{Addr: "localhost:6379"}},
			wantErr: false,
		},
		{
			name:    "redis without addr fails",
			config:  FeedbackConfig{Store: "redis"},
			wantErr: true,
		},
		{
			name:    "sqlite without dsn fails",
			config:  FeedbackConfig{Store: "sqlite"},
			wantErr: true,
		},
		{
			name:    "postgres with dsn passes",
			config:  FeedbackConfig{Store: "postgres", DSN: "postgres://localhost/whatif"},
			wantErr: false,
		},
		{
			name:    "unknown store fails",
			config:  FeedbackConfig{Store: "floppy"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("FeedbackConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.config.Table == "" {
				t.Errorf("table name should be defaulted")
			}
		})
	}
}

func TestSessionConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  SessionConfig
		want    string
		wantErr bool
	}{
		{name: "empty defaults to uuid", config: SessionConfig{}, want: "uuid"},
		{name: "counter", config: SessionConfig{Generator: "counter"}, want: "counter"},
		{name: "unknown", config: SessionConfig{Generator: "dice"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("SessionConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.config.Generator != tt.want {
				t.Errorf("generator = %s, want %s", tt.config.Generator, tt.want)
			}
		})
	}
}

func TestLoggingConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
	}{
		{name: "stdout text", config: LoggingConfig{Level: "info", Output: "stdout"}},
		{name: "json", config: LoggingConfig{Level: "debug", Output: "stderr", Format: "json"}},
		{name: "bad level", config: LoggingConfig{Level: "loud", Output: "stdout"}, wantErr: true},
		{name: "file without path", config: LoggingConfig{Level: "info", Output: "file"}, wantErr: true},
		{name: "bad format", config: LoggingConfig{Level: "info", Output: "stdout", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoggingConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WHATIF_PORT", "9090")
	t.Setenv("WHATIF_GENERATOR_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("WHATIF_PARALLEL_GENERATION", "false")
	t.Setenv("WHATIF_FEEDBACK_STORE", "sqlite")
	t.Setenv("WHATIF_FEEDBACK_DSN", "/tmp/feedback.db")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Eino.Generator.Provider != "gemini" || cfg.Eino.Generator.APIKey != "test-key" || cfg.Eino.Generator.Model != "gemini-test" {
		t.Errorf("generator env override not applied: %+v", cfg.Eino.Generator)
	}
	if cfg.Eino.Simulator.EnableParallelGeneration {
		t.Errorf("parallel generation should be disabled by env")
	}
	if cfg.Feedback.Store != "sqlite" || cfg.Feedback.DSN != "/tmp/feedback.db" {
		t.Errorf("feedback env override not applied: %+v", cfg.Feedback)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config with env overrides should validate: %v", err)
	}
}

func TestLoadFromEnv_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("WHATIF_PORT", "not-a-port")
	t.Setenv("WHATIF_PARALLEL_GENERATION", "sometimes")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("invalid port should be ignored, got %d", cfg.Server.Port)
	}
	if !cfg.Eino.Simulator.EnableParallelGeneration {
		t.Errorf("invalid bool should be ignored")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7070
eino:
  simulator:
    enable_parallel_generation: false
    max_processing_time: 5s
  validator:
    min_length: 5
    max_length: 200
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Eino.Simulator.EnableParallelGeneration {
		t.Errorf("yaml should disable parallel generation")
	}
	if cfg.Eino.Simulator.MaxProcessingTime != 5*time.Second {
		t.Errorf("max_processing_time = %s, want 5s", cfg.Eino.Simulator.MaxProcessingTime)
	}
	if cfg.Eino.Validator.MaxLength != 200 {
		t.Errorf("max_length = %d, want 200", cfg.Eino.Validator.MaxLength)
	}
	// 未出现在文件中的字段保留默认值
	if !cfg.Eino.Simulator.EnableLogging {
		t.Errorf("enable_logging should keep its default")
	}
}
