package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/kochabx/authsvc/log"
)

// Option 会话组件选项
type Option func(*options)

type options struct {
	logger          *log.Logger
	metrics         *Metrics
	now             func() time.Time
	newID           func() string
	revokeOnRelogin bool
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:          log.G,
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
		revokeOnRelogin: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator 设置会话 ID 生成函数，默认 UUID v4
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithRevokeOnRelogin 重新登录时是否删除旧会话记录，默认开启
func WithRevokeOnRelogin(enabled bool) Option {
	return func(o *options) {
		o.revokeOnRelogin = enabled
	}
}
