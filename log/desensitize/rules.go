package desensitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

var errEmptyName = errors.New("desensitize: empty rule name")

// Rule 对一行日志做一次替换
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Process(s string) string
}

// toggle 规则启停状态，零值为启用
type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool           { return !t.disabled.Load() }
func (t *toggle) SetEnabled(enabled bool) { t.disabled.Store(!enabled) }

// ContentRule 正则匹配整行
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule replacement 可引用 $1 等分组
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if pattern == "" {
		return nil, errors.New("desensitize: empty pattern")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 将 JSON 中指定字段的字符串值整体替换，字段名不区分大小写
type FieldRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

func NewFieldRule(name, replacement string, fields ...string) (*FieldRule, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if len(fields) == 0 {
		return nil, errors.New("desensitize: no fields")
	}

	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			return nil, errors.New("desensitize: empty field name")
		}
		quoted = append(quoted, regexp.QuoteMeta(f))
	}

	// 分组 1 为带引号的字段名与冒号，分组 2 为原值
	re, err := regexp.Compile(`(?i)("(?:` + strings.Join(quoted, "|") + `)"\s*:\s*)"((?:[^"\\]|\\.)*)"`)
	if err != nil {
		return nil, fmt.Errorf("compile field pattern: %w", err)
	}
	return &FieldRule{name: name, pattern: re, replacement: replacement}, nil
}

func MustNewFieldRule(name, replacement string, fields ...string) *FieldRule {
	rule, err := NewFieldRule(name, replacement, fields...)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, `$1"`+escapeDollar(r.replacement)+`"`)
}

func escapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
