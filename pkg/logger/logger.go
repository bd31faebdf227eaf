// 日志接口
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger 日志器接口
type Logger interface {
	// 基础日志方法
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// 带上下文的日志方法，会自动附带 InjectFields 注入的字段
	DebugContext(ctx context.Context, msg string, args ...interface{})
	InfoContext(ctx context.Context, msg string, args ...interface{})
	WarnContext(ctx context.Context, msg string, args ...interface{})
	ErrorContext(ctx context.Context, msg string, args ...interface{})

	// 获取底层slog.Logger，用于与现有基础设施兼容
	SlogLogger() *slog.Logger
}

// Config 简化的日志配置
type Config struct {
	Level    slog.Level // 日志级别
	Output   string     // 输出：stdout、stderr、file
	FilePath string     // 文件路径（当Output为file时）
	Format   string     // 格式：text、json，空值为 text
}

// appLogger 日志器实现
type appLogger struct {
	logger *slog.Logger
}

// Default 创建默认日志器
func Default() Logger {
	return &appLogger{
		logger: slog.New(&contextHandler{Handler: slog.Default().Handler()}),
	}
}

// New 根据配置创建日志器
func New(config Config) Logger {
	return &appLogger{
		logger: slog.New(&contextHandler{Handler: createHandler(config)}),
	}
}

// NewWithWriter 创建写入指定 Writer 的日志器，主要用于测试
func NewWithWriter(w io.Writer, level slog.Level) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &appLogger{
		logger: slog.New(&contextHandler{Handler: handler}),
	}
}

// Discard 返回丢弃所有输出的日志器
func Discard() Logger {
	return NewWithWriter(io.Discard, slog.LevelError+1)
}

// createHandler 根据格式创建 Handler
func createHandler(config Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: false,
	}

	writer := getWriter(config)

	if config.Format == "json" {
		return slog.NewJSONHandler(writer, opts)
	}
	return slog.NewTextHandler(writer, opts)
}

// getWriter 获取输出Writer
func getWriter(config Config) io.Writer {
	switch config.Output {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	case "file":
		if config.FilePath == "" {
			return os.Stdout
		}

		// 确保目录存在
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "创建日志目录失败: %v\n", err)
			return os.Stdout
		}

		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "打开日志文件失败: %v\n", err)
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}

// ParseLevel 将配置中的级别字符串转换为 slog.Level，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *appLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(msg, args...)
}

func (l *appLogger) Info(msg string, args ...interface{}) {
	l.logger.Info(msg, args...)
}

func (l *appLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn(msg, args...)
}

func (l *appLogger) Error(msg string, args ...interface{}) {
	l.logger.Error(msg, args...)
}

func (l *appLogger) DebugContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *appLogger) InfoContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *appLogger) WarnContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *appLogger) ErrorContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// SlogLogger 获取底层slog.Logger
func (l *appLogger) SlogLogger() *slog.Logger {
	return l.logger
}

// 全局默认日志器
var defaultLogger Logger = Default()

// GetDefault 获取默认日志器
func GetDefault() Logger {
	return defaultLogger
}

// SetDefault 替换默认日志器，nil 时忽略
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}
