package log

import (
	"github.com/rs/zerolog"
)

// G 进程级默认 Logger，组件未注入 Logger 时使用
var G = New()

// SetGlobalLogger nil 被忽略
func SetGlobalLogger(l *Logger) {
	if l != nil {
		G = l
	}
}

// SetLevel 调整 zerolog 全局级别，对所有 Logger 生效
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func Debug() *zerolog.Event {
	return G.Debug()
}

func Info() *zerolog.Event {
	return G.Info()
}

func Warn() *zerolog.Event {
	return G.Warn()
}

// Error 附带 pkg/errors 堆栈
func Error() *zerolog.Event {
	return G.Error().Stack()
}
