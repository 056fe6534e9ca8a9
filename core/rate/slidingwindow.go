package rate

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	//go:embed slidingwindow.lua
	slidingWindowLua       string
	slidingWindowLuaScript = redis.NewScript(slidingWindowLua)
)

// SlidingWindowLimiter 基于 Redis 有序集合的滑动窗口限流
type SlidingWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
	limit  int
	script *redis.Script
}

// NewSlidingWindowLimiter 创建限流器，window 内最多 limit 次
func NewSlidingWindowLimiter(client redis.UniversalClient, prefix string, window time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		limit:  limit,
		script: slidingWindowLuaScript,
	}
}

var _ Limiter = (*SlidingWindowLimiter)(nil)

// Allow 申请一次配额
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, time.Now(), 1)
}

// AllowN 在时刻 t 申请 n 次配额
func (l *SlidingWindowLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (*Result, error) {
	if n <= 0 {
		return &Result{Allowed: true, Limit: l.limit, Remaining: l.limit}, nil
	}

	values, err := l.script.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.window.Milliseconds(), l.limit, t.UnixMilli(), n, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate: run sliding window: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("rate: unexpected script result %v", values)
	}

	return &Result{
		Allowed:    values[0] == 1,
		Limit:      l.limit,
		Remaining:  int(values[1]),
		RetryAfter: time.Duration(values[2]) * time.Millisecond,
	}, nil
}
