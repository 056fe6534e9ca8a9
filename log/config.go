package log

import (
	"github.com/kochabx/authsvc/log/writer"
)

const (
	OutputConsole = "console"
	OutputJSON    = "json"
	OutputFile    = "file"
	OutputMulti   = "multi"
)

// Config 日志配置，multi 同时写控制台与文件
type Config struct {
	Level              string              `json:"level" mapstructure:"level" default:"info"`
	Output             string              `json:"output" mapstructure:"output" default:"console" validate:"oneof=console json file multi"`
	Caller             bool                `json:"caller" mapstructure:"caller"`
	DisableDesensitize bool                `json:"disableDesensitize" mapstructure:"disableDesensitize"`
	File               writer.RotateConfig `json:"file" mapstructure:"file"`
}
