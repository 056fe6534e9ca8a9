package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kochabx/authsvc/core/tag"
	"github.com/kochabx/authsvc/core/validator"
	kerrors "github.com/kochabx/authsvc/errors"
)

// newViper 文件、环境变量与默认值三个来源
//
// 环境变量只覆盖文件或默认值中出现过的键，以及显式绑定的键。
func newViper(o *options) *viper.Viper {
	v := viper.New()
	ext := filepath.Ext(o.name)
	v.SetConfigName(strings.TrimSuffix(o.name, ext))
	if ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	}
	for _, p := range o.paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range o.envs {
		_ = v.BindEnv(key, env)
	}
	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}
	return v
}

// load 依次应用标签默认值、读取文件、解码并校验
func load(v *viper.Viper, target any, o *options) error {
	if err := tag.ApplyDefaults(target); err != nil {
		return kerrors.Internal("apply defaults: %v", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !o.optional || !errors.As(err, &notFound) {
			return kerrors.NotFound("config file not found: %v", err).WithCause(err)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return kerrors.Internal("decode config: %v", err).WithCause(err)
	}

	if o.validate != nil {
		if err := o.validate.Struct(target); err != nil {
			return kerrors.BadRequestWithMetadata(validator.Fields(err), "invalid config: %v", err).WithCause(err)
		}
	}
	return nil
}
