package db

import (
	"fmt"
	"maps"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/authsvc/core/tag"
)

// Driver 数据库驱动
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
)

func (d Driver) String() string {
	return string(d)
}

// Config 数据库配置
//
// URL 非空时直接作为连接串使用，否则由 Host、Port 等字段拼装。
// sqlite 的 URL 为文件路径，":memory:" 表示内存库。
type Config struct {
	Driver   Driver            `json:"driver" mapstructure:"driver" default:"postgres" validate:"oneof=postgres sqlite mysql"`
	URL      string            `json:"url" mapstructure:"url"`
	Host     string            `json:"host" mapstructure:"host" default:"localhost"`
	Port     int               `json:"port" mapstructure:"port"`
	User     string            `json:"user" mapstructure:"user"`
	Password string            `json:"password" mapstructure:"password"`
	Database string            `json:"database" mapstructure:"database" default:"authsvc"`
	Params   map[string]string `json:"params" mapstructure:"params"`
	LogLevel string            `json:"logLevel" mapstructure:"logLevel" default:"silent" validate:"oneof=silent error warn info"`
	Pool     PoolConfig        `json:"pool" mapstructure:"pool"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"maxIdleConns" default:"10"`
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"maxOpenConns" default:"100"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"connMaxLifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"connMaxIdleTime" default:"10m"`
}

// Init 填充默认值并检查驱动
func (c *Config) Init() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	switch c.Driver {
	case DriverPostgres, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	if c.Port == 0 {
		c.Port = defaultPorts[c.Driver]
	}
	// 内存库的每个连接都是独立的数据库
	if c.InMemory() {
		c.Pool = PoolConfig{MaxIdleConns: 1, MaxOpenConns: 1}
	}
	return nil
}

var defaultPorts = map[Driver]int{
	DriverPostgres: 5432,
	DriverMySQL:    3306,
}

// InMemory sqlite 内存库
func (c *Config) InMemory() bool {
	return c.Driver == DriverSQLite && strings.Contains(c.sqlitePath(), ":memory:")
}

func (c *Config) sqlitePath() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Database
}

// DSN 返回驱动连接串
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		return c.sqliteDSN()
	case DriverMySQL:
		return c.mysqlDSN()
	default:
		return c.postgresDSN()
	}
}

func (c *Config) postgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: c.query(map[string]string{"sslmode": "disable", "TimeZone": "UTC"}).Encode(),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

func (c *Config) mysqlDSN() string {
	if c.URL != "" {
		return c.URL
	}
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Params = c.params(map[string]string{"charset": "utf8mb4"})
	return mc.FormatDSN()
}

func (c *Config) sqliteDSN() string {
	path := c.sqlitePath()
	if strings.HasPrefix(path, "file:") {
		return path
	}
	q := c.query(map[string]string{"_busy_timeout": "5000", "_foreign_keys": "true"})
	return "file:" + path + "?" + q.Encode()
}

// params 合并默认参数与配置参数
func (c *Config) params(defaults map[string]string) map[string]string {
	out := maps.Clone(defaults)
	maps.Copy(out, c.Params)
	return out
}

func (c *Config) query(defaults map[string]string) url.Values {
	q := url.Values{}
	for k, v := range c.params(defaults) {
		q.Set(k, v)
	}
	return q
}

// Dialector 返回 gorm 方言
func (c *Config) Dialector() (gorm.Dialector, error) {
	dsn := c.DSN()
	switch c.Driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysqldriver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

// ParseLogLevel 解析 gorm 日志级别，未知值视为 silent
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
