package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/authsvc/log"
)

// Client 会话存储与登录限流共用的 Redis 客户端
type Client struct {
	rdb    redis.UniversalClient
	mode   string
	logger *log.Logger
}

// New 连接 Redis 并确认可达
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G
	}

	c := &Client{
		rdb:    redis.NewUniversalClient(cfg.universal()),
		mode:   cfg.Mode(),
		logger: o.logger,
	}
	if err := c.instrument(cfg, o); err != nil {
		_ = c.rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("redis: ping %v: %w", cfg.Addrs, err)
	}

	c.logger.Debug().Str("mode", c.mode).Strs("addrs", cfg.Addrs).Msg("redis connected")
	return c, nil
}

func (c *Client) instrument(cfg *Config, o *options) error {
	for _, h := range o.hooks {
		c.rdb.AddHook(h)
	}
	if o.traced {
		if err := redisotel.InstrumentTracing(c.rdb, o.tracing...); err != nil {
			return fmt.Errorf("redis: tracing: %w", err)
		}
	}
	if o.metered {
		if err := redisotel.InstrumentMetrics(c.rdb, o.metrics...); err != nil {
			return fmt.Errorf("redis: metrics: %w", err)
		}
	}
	if o.debug {
		c.rdb.AddHook(NewLogHook(c.logger, cfg.SlowThreshold))
	}
	return nil
}

// UniversalClient 底层客户端
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.rdb
}

// Mode 部署模式
func (c *Client) Mode() string {
	return c.mode
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
