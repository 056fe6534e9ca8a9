// Package writer 提供日志输出目标：控制台与按时间或大小轮转的文件。
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	RotateBySize = "size"
	RotateByTime = "time"
)

// Console 人类可读的控制台输出，out 为 nil 时写到 stdout
func Console(out io.Writer) zerolog.ConsoleWriter {
	if out == nil {
		out = os.Stdout
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
	}
}

// RotateConfig 轮转文件配置
//
// size 模式由 lumberjack 按 MaxSize 切分，time 模式由 rotatelogs 按 RotationTime 切分，
// 两种模式都按 MaxAge 清理旧文件。
type RotateConfig struct {
	Dir          string        `json:"dir" mapstructure:"dir" default:"log"`
	Name         string        `json:"name" mapstructure:"name" default:"authsvc"`
	Mode         string        `json:"mode" mapstructure:"mode" default:"size" validate:"oneof=size time"`
	MaxSize      int           `json:"maxSize" mapstructure:"maxSize" default:"100"`
	MaxBackups   int           `json:"maxBackups" mapstructure:"maxBackups" default:"5"`
	MaxAge       time.Duration `json:"maxAge" mapstructure:"maxAge" default:"168h"`
	RotationTime time.Duration `json:"rotationTime" mapstructure:"rotationTime" default:"24h"`
	Compress     bool          `json:"compress" mapstructure:"compress"`
}

// Path 当前日志文件路径，time 模式下为指向最新文件的链接
func (c RotateConfig) Path() string {
	return filepath.Join(c.Dir, c.Name+".log")
}

// Rotate 按 Mode 创建轮转文件
func Rotate(c RotateConfig) (io.WriteCloser, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	switch c.Mode {
	case RotateBySize, "":
		return &lumberjack.Logger{
			Filename:   c.Path(),
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     int(c.MaxAge.Hours() / 24),
			Compress:   c.Compress,
		}, nil
	case RotateByTime:
		w, err := rotatelogs.New(
			filepath.Join(c.Dir, c.Name+".%Y%m%d%H%M.log"),
			rotatelogs.WithLinkName(c.Path()),
			rotatelogs.WithMaxAge(c.MaxAge),
			rotatelogs.WithRotationTime(c.RotationTime),
		)
		if err != nil {
			return nil, fmt.Errorf("create time rotate writer: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode %q", c.Mode)
	}
}
