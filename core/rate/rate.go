package rate

import (
	"context"
	"time"
)

// Limiter 按 key 限流
type Limiter interface {
	// Allow 申请一次配额
	Allow(ctx context.Context, key string) (*Result, error)
	// AllowN 在时刻 t 申请 n 次配额
	AllowN(ctx context.Context, key string, t time.Time, n int) (*Result, error)
}

// Result 限流结果
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}
