package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/authsvc/core/tag"
	"github.com/kochabx/authsvc/log/desensitize"
	"github.com/kochabx/authsvc/log/writer"
)

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Logger zerolog 包装，可选脱敏与文件输出
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

// New 输出到控制台
func New(opts ...Option) *Logger {
	return NewWithWriter(writer.Console(nil), opts...)
}

// NewWithWriter 以 JSON 写入 w
func NewWithWriter(w io.Writer, opts ...Option) *Logger {
	s := settings{level: zerolog.TraceLevel}
	for _, opt := range opts {
		opt(&s)
	}

	l := &Logger{hook: s.hook}
	if s.hook != nil {
		w = desensitize.NewWriter(w, s.hook)
	}
	ctx := zerolog.New(w).Level(s.level).With().Timestamp()
	if s.caller {
		ctx = ctx.Caller()
	}
	l.Logger = ctx.Logger()
	return l
}

// NewFromConfig 按配置创建，默认启用内置脱敏规则
func NewFromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := []Option{WithLevel(level)}
	if !c.DisableDesensitize {
		opts = append(opts, WithDesensitize(desensitize.NewHook(desensitize.BuiltinRules()...)))
	}
	if c.Caller {
		opts = append(opts, WithCaller())
	}

	switch c.Output {
	case OutputConsole:
		return New(opts...), nil
	case OutputJSON:
		return NewWithWriter(os.Stdout, opts...), nil
	case OutputFile, OutputMulti:
		file, err := writer.Rotate(c.File)
		if err != nil {
			return nil, err
		}
		var w io.Writer = file
		if c.Output == OutputMulti {
			w = zerolog.MultiLevelWriter(file, writer.Console(nil))
		}
		l := NewWithWriter(w, opts...)
		l.closer = file
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported log output %q", c.Output)
	}
}

// DesensitizeHook 未启用脱敏时为 nil
func (l *Logger) DesensitizeHook() *desensitize.Hook {
	return l.hook
}

// Close 关闭文件输出
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
