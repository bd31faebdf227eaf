package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy 重试策略
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
	// Jitter 抖动比例（0-1），实际延迟在 [d*(1-j), d*(1+j)] 之间
	Jitter float64 `yaml:"jitter"`
}

// DefaultPolicy 默认策略：3 次尝试，500ms 起步，倍数 2，上限 5s，±20% 抖动
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2,
		Jitter:      0.2,
	}
}

// Validate 检查策略并为零值填充默认值
func (p *Policy) Validate() error {
	if p.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative")
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		return fmt.Errorf("jitter must be between 0 and 1")
	}
	return nil
}

// Backoff 计算第 attempt 次重试前的等待时间（attempt 从 1 开始）
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	delay := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= multiplier
	}
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter > 0 {
		delay += delay * p.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(delay)
}

// Result 单次带重试调用的结果
type Result[T any] struct {
	Value    T
	Attempts int
}

// Do 按策略执行 fn。仅在错误可重试时重试，等待期间响应 ctx 取消。
// 返回最后一次的错误以及实际尝试次数。
func Do[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (Result[T], error) {
	var zero T
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Result[T]{Value: zero, Attempts: attempt - 1},
					fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
			case <-time.After(policy.Backoff(attempt - 1)):
			}
		}

		value, err := fn(ctx)
		if err == nil {
			return Result[T]{Value: value, Attempts: attempt}, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return Result[T]{Value: zero, Attempts: attempt}, Classify(err)
		}
	}

	return Result[T]{Value: zero, Attempts: maxAttempts}, Classify(lastErr)
}
