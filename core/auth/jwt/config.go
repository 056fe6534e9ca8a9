package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config JWT 配置
type Config struct {
	// 必需配置
	Secret string `json:"secret" mapstructure:"secret" validate:"required"`

	// Token 配置
	SigningMethod string `json:"signingMethod" mapstructure:"signingMethod" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	TTL           int64  `json:"ttl" mapstructure:"ttl" default:"3600" validate:"gt=0"` // 秒，默认 1 小时

	// 标准 Claims 配置
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// GetSigningMethod 获取签名方法，仅支持 HMAC 系列
func (c *Config) GetSigningMethod() (jwt.SigningMethod, error) {
	switch c.SigningMethod {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: unsupported signing method %q", ErrConfigInvalid, c.SigningMethod)
	}
}

// GetTTL 获取 Token TTL
func (c *Config) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// GetSecret 获取密钥字节
func (c *Config) GetSecret() []byte {
	return []byte(c.Secret)
}
