package desensitize

import "strings"

// Token 令牌脱敏，保留前6位和后4位
// 例如：eyJhbGciOiJIUzI1NiJ9.e30.abcd1234 -> eyJhbG****1234
func Token(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "****" + token[len(token)-4:]
}

// Email 邮箱脱敏，保留首字母和@后的内容
// 例如：test@example.com -> t***@example.com
func Email(email string) string {
	index := strings.IndexByte(email, '@')
	if index < 1 {
		return email
	}
	return email[:1] + "***" + email[index:]
}
