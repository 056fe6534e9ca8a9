package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec 签发与校验令牌，构造后不可变
type Codec struct {
	config *Config
	method jwt.SigningMethod
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

// New 创建 Codec
func New(config *Config, opts ...Option) (*Codec, error) {
	if config == nil {
		return nil, ErrConfigInvalid
	}
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}

	cfg := *config
	if cfg.TTL <= 0 {
		cfg.TTL = 3600
	}

	method, err := cfg.GetSigningMethod()
	if err != nil {
		return nil, err
	}

	c := &Codec{
		config: &cfg,
		method: method,
		secret: cfg.GetSecret(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(c.now),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c, nil
}

// TTL 令牌有效期
func (c *Codec) TTL() time.Duration {
	return c.config.GetTTL()
}

// Issue 为 subjectID 签发令牌，过期时间为 now（秒精度）+ TTL
//
// id 写入 jti，同一秒内签发的令牌也互不相同。
func (c *Codec) Issue(subjectID int64, id string, now time.Time) (string, *Claims, error) {
	if subjectID <= 0 || id == "" {
		return "", nil, ErrInvalidClaims
	}

	now = now.Truncate(time.Second)
	claims := &Claims{
		Subject:   subjectID,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL())),
		Issuer:    c.config.Issuer,
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("jwt: sign token: %w", err)
	}
	return token, claims, nil
}

// Verify 校验签名与过期时间
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
