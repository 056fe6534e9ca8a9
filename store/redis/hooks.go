package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kochabx/authsvc/log"
)

// LogHook 以 debug 级别记录命令，失败与慢命令提升为 warn
//
// 只记录命令名与 key，参数中可能带有会话数据。
type LogHook struct {
	logger *log.Logger
	slow   time.Duration
}

// NewLogHook slow 为 0 时不做慢命令检测
func NewLogHook(logger *log.Logger, slow time.Duration) *LogHook {
	return &LogHook{logger: logger, slow: slow}
}

func (h *LogHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Warn().Err(err).Str("addr", addr).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *LogHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		if e := h.event(time.Since(start), err); e != nil {
			e.Str("cmd", cmd.FullName()).Str("key", commandKey(cmd)).Msg("redis command")
		}
		return err
	}
}

func (h *LogHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if e := h.event(time.Since(start), err); e != nil {
			names := make([]string, len(cmds))
			for i, cmd := range cmds {
				names[i] = cmd.FullName()
			}
			e.Strs("cmds", names).Msg("redis pipeline")
		}
		return err
	}
}

func (h *LogHook) event(elapsed time.Duration, err error) *zerolog.Event {
	var e *zerolog.Event
	switch {
	// key 不存在不算失败
	case err != nil && !errors.Is(err, redis.Nil):
		e = h.logger.Warn().Err(err)
	case h.slow > 0 && elapsed > h.slow:
		e = h.logger.Warn().Dur("threshold", h.slow)
	default:
		e = h.logger.Debug()
	}
	if e == nil {
		return nil
	}
	return e.Dur("elapsed", elapsed)
}

// commandKey 命令的第一个参数，通常是 key
func commandKey(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	key, _ := args[1].(string)
	return key
}
