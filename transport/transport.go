// Package transport 定义对外服务的生命周期约定。
package transport

import (
	"context"
	"net"
	"net/netip"
	"regexp"
	"strconv"
)

// Server 由 app.Application 统一启停的服务
type Server interface {
	// Run 阻塞直到服务停止
	Run() error
	Shutdown(context.Context) error
}

var hostnameRE = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

// ValidateAddress 检查 host:port 形式的监听地址
//
// host 可为空、IP 或主机名，port 为 0 时由系统分配。
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return false
	}
	if host == "" {
		return true
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	return len(host) <= 253 && hostnameRE.MatchString(host)
}
