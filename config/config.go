// Package config 通过 viper 将 YAML 文件与环境变量加载到结构体，并支持文件变更后重新加载。
package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/authsvc/core/validator"
	"github.com/kochabx/authsvc/log"
)

// Config 持有加载目标，重新加载时在写锁内更新
type Config struct {
	mu       sync.RWMutex
	v        *viper.Viper
	target   any
	opts     *options
	onChange []func()
}

// New 默认读取当前目录的 config.yaml 并监听变更
func New(target any, opts ...Option) *Config {
	o := &options{
		name:     "config.yaml",
		paths:    []string{"."},
		watch:    true,
		envs:     make(map[string]string),
		defaults: make(map[string]any),
		validate: validator.Validate,
		logger:   log.G,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Config{v: newViper(o), target: target, opts: o}
}

func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return load(c.v, c.target, c.opts)
}

// OnChange 注册重新加载成功后的回调
func (c *Config) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Watch 监听配置文件，未使用文件或关闭监听时不做任何事
func (c *Config) Watch() error {
	if !c.opts.watch || c.v.ConfigFileUsed() == "" {
		return nil
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		logger := c.opts.logger
		if err := c.Load(); err != nil {
			logger.Error().Err(err).Str("file", e.Name).Msg("config reload failed")
			return
		}

		c.mu.RLock()
		callbacks := append([]func(){}, c.onChange...)
		c.mu.RUnlock()
		for _, fn := range callbacks {
			fn()
		}
		logger.Info().Str("file", e.Name).Msg("config reloaded")
	})
	c.v.WatchConfig()
	return nil
}

// Viper 底层 viper 实例
func (c *Config) Viper() *viper.Viper {
	return c.v
}
