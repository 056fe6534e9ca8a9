package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/kochabx/authsvc/log"
)

// Client 持有 gorm 连接与底层连接池
type Client struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	driver Driver
	logger *log.Logger
}

// Open 按配置打开数据库并确认可达
func Open(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(o.logger, ParseLogLevel(cfg.LogLevel), o.slowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver, err)
	}
	for _, p := range o.plugins {
		if err := gdb.Use(p); err != nil {
			return nil, fmt.Errorf("db: plugin %s: %w", p.Name(), err)
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	c := &Client{db: gdb, sqlDB: sqlDB, driver: cfg.Driver, logger: o.logger}

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("db: ping %s: %w", cfg.Driver, err)
	}

	c.logger.Debug().Str("driver", cfg.Driver.String()).Msg("database connected")
	return c, nil
}

// DB 返回 gorm 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Driver 当前驱动
func (c *Client) Driver() Driver {
	return c.driver
}

// Migrate 自动迁移表结构
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	if err := c.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrNotInitialized
	}
	return c.sqlDB.PingContext(ctx)
}

// Stats 连接池统计
func (c *Client) Stats() sql.DBStats {
	if c.sqlDB == nil {
		return sql.DBStats{}
	}
	return c.sqlDB.Stats()
}

func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}
