package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/authsvc/log/desensitize"
)

type settings struct {
	level  zerolog.Level
	caller bool
	hook   *desensitize.Hook
}

// Option Logger 选项
type Option func(*settings)

func WithLevel(level zerolog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(s *settings) {
		s.caller = true
	}
}

// WithDesensitize 写出前按 hook 的规则脱敏
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(s *settings) {
		s.hook = hook
	}
}
