// Package desensitize 在日志写出前遮盖密码、令牌等敏感内容。
package desensitize

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Hook 按添加顺序依次执行规则
//
// 写出路径只读取规则快照，修改时整体替换快照。
type Hook struct {
	mu    sync.Mutex
	rules atomic.Pointer[[]Rule]
}

func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.rules.Store(&[]Rule{})
	for _, r := range rules {
		h.AddRule(r)
	}
	return h
}

func (h *Hook) snapshot() []Rule {
	return *h.rules.Load()
}

// update 在副本上修改规则列表
func (h *Hook) update(fn func([]Rule) []Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := fn(slices.Clone(h.snapshot()))
	h.rules.Store(&next)
}

// AddRule 同名规则原位替换
func (h *Hook) AddRule(rule Rule) {
	if rule == nil {
		return
	}
	h.update(func(rs []Rule) []Rule {
		if i := index(rs, rule.Name()); i >= 0 {
			rs[i] = rule
			return rs
		}
		return append(rs, rule)
	})
}

func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(r)
	return nil
}

// AddFieldRule fields 为 JSON 字段名
func (h *Hook) AddFieldRule(name, replacement string, fields ...string) error {
	r, err := NewFieldRule(name, replacement, fields...)
	if err != nil {
		return err
	}
	h.AddRule(r)
	return nil
}

func (h *Hook) RemoveRule(name string) bool {
	removed := false
	h.update(func(rs []Rule) []Rule {
		i := index(rs, name)
		if i < 0 {
			return rs
		}
		removed = true
		return slices.Delete(rs, i, i+1)
	})
	return removed
}

func (h *Hook) GetRule(name string) (Rule, bool) {
	rs := h.snapshot()
	if i := index(rs, name); i >= 0 {
		return rs[i], true
	}
	return nil, false
}

func (h *Hook) EnableRule(name string) bool  { return h.toggle(name, true) }
func (h *Hook) DisableRule(name string) bool { return h.toggle(name, false) }

func (h *Hook) toggle(name string, on bool) bool {
	r, ok := h.GetRule(name)
	if ok {
		r.SetEnabled(on)
	}
	return ok
}

func (h *Hook) RuleCount() int {
	return len(h.snapshot())
}

// Desensitize 返回遮盖后的文本
func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}
	for _, r := range h.snapshot() {
		if r.Enabled() {
			s = r.Process(s)
		}
	}
	return s
}

func index(rs []Rule, name string) int {
	return slices.IndexFunc(rs, func(r Rule) bool { return r.Name() == name })
}
