package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// PathMatcher 跳过路径匹配器
//
//	"/health"        精确匹配
//	"/internal/**"   匹配 /internal 及其子路径
//	"/auth/*/check"  path.Match 模式
type PathMatcher struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []string
}

// NewPathMatcher 创建路径匹配器，空字符串被忽略
func NewPathMatcher(paths []string) *PathMatcher {
	pm := &PathMatcher{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		switch {
		case p == "":
		case strings.HasSuffix(p, "/**"):
			pm.prefixes = append(pm.prefixes, strings.TrimSuffix(p, "/**"))
		case strings.ContainsAny(p, "*?["):
			pm.patterns = append(pm.patterns, p)
		default:
			pm.exact[p] = struct{}{}
		}
	}
	return pm
}

// Match 检查路径是否匹配
func (pm *PathMatcher) Match(urlPath string) bool {
	if pm == nil {
		return false
	}
	if _, ok := pm.exact[urlPath]; ok {
		return true
	}
	for _, prefix := range pm.prefixes {
		rest, ok := strings.CutPrefix(urlPath, prefix)
		if ok && (rest == "" || rest[0] == '/') {
			return true
		}
	}
	for _, pattern := range pm.patterns {
		if ok, _ := path.Match(pattern, urlPath); ok {
			return true
		}
	}
	return false
}

// shouldSkip SkipFunc 优先于路径匹配
func shouldSkip(c *gin.Context, matcher *PathMatcher, skipFunc func(*gin.Context) bool) bool {
	if skipFunc != nil && skipFunc(c) {
		return true
	}
	return matcher.Match(c.Request.URL.Path)
}
