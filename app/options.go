package app

import (
	"context"
	"os"
	"time"

	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport"
)

type Option func(*Application)

// WithContext ctx 取消等同于 Stop
func WithContext(ctx context.Context) Option {
	return func(a *Application) {
		if ctx == nil {
			return
		}
		a.cancel()
		a.ctx, a.cancel = context.WithCancel(ctx)
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(a *Application) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// WithCloseTimeout 释放函数的默认超时
func WithCloseTimeout(d time.Duration) Option {
	return func(a *Application) {
		if d > 0 {
			a.closeTimeout = d
		}
	}
}

func WithSignals(sigs ...os.Signal) Option {
	return func(a *Application) {
		if len(sigs) > 0 {
			a.signals = append([]os.Signal(nil), sigs...)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithServer nil 被忽略
func WithServer(s transport.Server) Option {
	return WithServers(s)
}

func WithServers(servers ...transport.Server) Option {
	return func(a *Application) {
		for _, s := range servers {
			if s != nil {
				a.servers = append(a.servers, s)
			}
		}
	}
}

func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(a *Application) {
		if err := a.closers.Add(name, fn, timeout, a.closeTimeout); err != nil {
			a.logger.Warn().Str("close", name).Err(err).Msg("close function ignored")
		}
	}
}

// WithClosers 保持 cs 中的顺序
func WithClosers(cs Closers) Option {
	return func(a *Application) {
		for _, c := range cs {
			WithClose(c.Name, c.Fn, c.Timeout)(a)
		}
	}
}
