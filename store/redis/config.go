package redis

import (
	"crypto/tls"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authsvc/core/tag"
)

// Config Redis 连接配置
//
// Addrs 一个地址为单机，多个为集群，设置 MasterName 时为哨兵地址。
// URL 形如 redis://[user:password@]host:port/db，设置后覆盖 Addrs 与认证信息。
type Config struct {
	URL        string   `json:"url" mapstructure:"url"`
	Addrs      []string `json:"addrs" mapstructure:"addrs" default:"127.0.0.1:6379"`
	MasterName string   `json:"masterName" mapstructure:"masterName"`
	Username   string   `json:"username" mapstructure:"username"`
	Password   string   `json:"password" mapstructure:"password"`
	DB         int      `json:"db" mapstructure:"db"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dialTimeout" default:"5s"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"readTimeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"writeTimeout" default:"3s"`

	// PoolSize 0 表示 10 * GOMAXPROCS
	PoolSize     int           `json:"poolSize" mapstructure:"poolSize"`
	MinIdleConns int           `json:"minIdleConns" mapstructure:"minIdleConns"`
	MaxIdleTime  time.Duration `json:"maxIdleTime" mapstructure:"maxIdleTime" default:"5m"`

	// MaxRetries -1 禁用重试
	MaxRetries int `json:"maxRetries" mapstructure:"maxRetries"`

	// SlowThreshold 调试日志中的慢命令阈值，0 关闭
	SlowThreshold time.Duration `json:"slowThreshold" mapstructure:"slowThreshold"`

	TLSConfig *tls.Config `json:"-" mapstructure:"-"`
}

// Single 单机配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// FromURL 由连接串创建配置
func FromURL(url string) *Config {
	return &Config{URL: url}
}

// Init 展开 URL、填充默认值并校验
func (c *Config) Init() error {
	if c.URL != "" {
		opt, err := redis.ParseURL(c.URL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		c.Addrs = []string{opt.Addr}
		c.MasterName = ""
		c.Username, c.Password, c.DB = opt.Username, opt.Password, opt.DB
		if opt.TLSConfig != nil {
			c.TLSConfig = opt.TLSConfig
		}
	}
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Mode 部署模式
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}

func (c *Config) universal() *redis.UniversalOptions {
	poolSize := c.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}
	return &redis.UniversalOptions{
		Addrs:           c.Addrs,
		MasterName:      c.MasterName,
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.DB,
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		PoolSize:        poolSize,
		MinIdleConns:    c.MinIdleConns,
		ConnMaxIdleTime: c.MaxIdleTime,
		MaxRetries:      c.MaxRetries,
		TLSConfig:       c.TLSConfig,
	}
}
