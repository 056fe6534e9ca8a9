package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/authsvc/log"
)

// Option 客户端选项
type Option func(*options)

type options struct {
	logger         *log.Logger
	plugins        []gorm.Plugin
	connectTimeout time.Duration
	slowQuery      time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{connectTimeout: 10 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G
	}
	return o
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPlugins 注册 gorm 插件
func WithPlugins(plugins ...gorm.Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithConnectTimeout 首次 Ping 的超时
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 超过阈值的语句以 warn 记录，0 关闭
func WithSlowQuery(threshold time.Duration) Option {
	return func(o *options) {
		o.slowQuery = threshold
	}
}
