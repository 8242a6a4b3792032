package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Attempt 一次可重试的调用
type Attempt func(ctx context.Context) error

// Policy 重试策略
//
// 目录服务对上游默认只调用一次 (MaxRetries = 0)，由缓存负责降低负载；
// 部署方可以通过配置打开重试。
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// RetryIf 返回 false 的错误立即失败，例如 404 这类永久错误
	RetryIf func(error) bool
}

// Option 配置重试策略
type Option func(*Policy)

// WithMaxRetries 设置最大重试次数 (不含首次调用)，负数被忽略
func WithMaxRetries(n int) Option {
	return func(p *Policy) {
		if n >= 0 {
			p.MaxRetries = n
		}
	}
}

// WithInitialDelay 设置第一次重试前的等待时间
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.InitialDelay = d
		}
	}
}

// WithMaxDelay 设置两次重试之间的最长等待
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.MaxDelay = d
		}
	}
}

// WithMultiplier 设置指数退避倍数
func WithMultiplier(m float64) Option {
	return func(p *Policy) {
		if m > 0 {
			p.Multiplier = m
		}
	}
}

// WithRetryIf 只对满足条件的错误重试
func WithRetryIf(fn func(error) bool) Option {
	return func(p *Policy) {
		if fn != nil {
			p.RetryIf = fn
		}
	}
}

// DefaultPolicy 单次调用，不重试
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   0,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		RetryIf:      func(error) bool { return true },
	}
}

// Do 按策略执行 fn。成功返回 nil；ctx 结束时返回包装了 ctx.Err() 的错误；
// 重试用尽时返回包装了最后一次错误的错误。
func Do(ctx context.Context, fn Attempt, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("retry aborted before first attempt: %w", err)
	}

	lastErr := fn(ctx)
	if lastErr == nil {
		return nil
	}
	if p.MaxRetries == 0 {
		return lastErr
	}

	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		if !p.RetryIf(lastErr) {
			return lastErr
		}

		timer := time.NewTimer(calculateDelay(attempt, p.InitialDelay, p.MaxDelay, p.Multiplier))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, p.MaxRetries, ctx.Err())
		case <-timer.C:
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", p.MaxRetries+1, lastErr)
}

// calculateDelay initialDelay * multiplier^(attempt-1)，上限 maxDelay
func calculateDelay(attempt int, initialDelay, maxDelay time.Duration, multiplier float64) time.Duration {
	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt-1))
	if time.Duration(delay) > maxDelay {
		return maxDelay
	}
	return time.Duration(delay)
}
