package desensitize

var (
	// CredentialRule 凭证类字段整体替换
	// {"password":"hunter22"} -> {"password":"******"}
	CredentialRule = MustNewFieldRule("credential", "******", "password", "token", "secret", "jwt_secret")

	// JWTRule 文本中出现的 JWT 只保留头部前缀
	// eyJhbGciOi.eyJzdWIiOjF9.sig -> eyJhbGciOi***
	JWTRule = MustNewContentRule(
		"jwt",
		`(eyJ[A-Za-z0-9_-]{7})[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`,
		"$1***",
	)

	// EmailRule 邮箱脱敏，默认不启用
	// alice@example.com -> a***e@e***.com
	EmailRule = MustNewContentRule(
		"email",
		`\b([A-Za-z0-9])[A-Za-z0-9._%+-]*([A-Za-z0-9])@([A-Za-z0-9])[A-Za-z0-9.-]*\.([A-Za-z]{2,})\b`,
		"$1***$2@$3***.$4",
	)
)

// BuiltinRules 默认启用的规则，字段规则先于内容规则
func BuiltinRules() []Rule {
	return []Rule{CredentialRule, JWTRule}
}
