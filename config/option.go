package config

import (
	"github.com/kochabx/authsvc/core/validator"
	"github.com/kochabx/authsvc/log"
)

// Option 配置加载选项
type Option func(*options)

type options struct {
	name     string
	paths    []string
	optional bool
	watch    bool
	envs     map[string]string
	defaults map[string]any
	validate validator.Validator
	logger   *log.Logger
}

// WithFile 配置文件名与搜索目录，扩展名决定格式
func WithFile(name string, paths ...string) Option {
	return func(o *options) {
		o.name = name
		if len(paths) > 0 {
			o.paths = paths
		}
	}
}

// WithOptionalFile 找不到配置文件时只使用默认值与环境变量
func WithOptionalFile() Option {
	return func(o *options) {
		o.optional = true
	}
}

func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithEnvBindings 为键绑定指定的环境变量名，例如 "database.url" -> "DATABASE_URL"
func WithEnvBindings(bindings map[string]string) Option {
	return func(o *options) {
		for k, v := range bindings {
			o.envs[k] = v
		}
	}
}

// WithDefaults 结构体标签无法表达的默认值，例如为 true 的布尔值
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

// WithValidator nil 关闭校验
func WithValidator(v validator.Validator) Option {
	return func(o *options) {
		o.validate = v
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
