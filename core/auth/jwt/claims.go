package jwt

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 令牌声明，sub 以 JSON 整数编码，jti 为会话 id
type Claims struct {
	Subject   int64            `json:"sub"`
	ID        string           `json:"jti,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	Issuer    string           `json:"iss,omitempty"`
}

var _ jwt.Claims = (*Claims)(nil)

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

func (c *Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// Validate 由 jwt 库在标准校验之后调用
func (c *Claims) Validate() error {
	if c.Subject <= 0 {
		return ErrInvalidClaims
	}
	return nil
}
