package app

import (
	"context"
	"errors"
	"time"

	"github.com/kochabx/authsvc/log"
)

var ErrClosePanic = errors.New("close function panicked")

// CloseFunc 带超时的资源释放函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

// Closers 按注册逆序释放资源，依赖方先于被依赖方关闭
type Closers []CloseFunc

// Add 追加释放函数，timeout 为 0 时使用 fallback
func (cs *Closers) Add(name string, fn func(context.Context) error, timeout, fallback time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}
	if timeout <= 0 {
		timeout = fallback
	}
	*cs = append(*cs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Close 依次执行全部释放函数，单个失败不影响后续执行
func (cs Closers) Close(logger *log.Logger) error {
	if logger == nil {
		logger = log.G
	}

	var errs []error
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].run(logger); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// run 超时后不再等待释放函数返回
func (c CloseFunc) run(logger *log.Logger) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCloseTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Str("close", c.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- c.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error().Err(err).Str("close", c.Name).Msg("close function failed")
			return err
		}
		logger.Debug().Str("close", c.Name).Msg("closed")
		return nil
	case <-ctx.Done():
		logger.Warn().Str("close", c.Name).Dur("timeout", timeout).Msg("close function timed out")
		return ctx.Err()
	}
}
