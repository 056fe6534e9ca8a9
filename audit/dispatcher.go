package audit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/authsvc/log"
)

// Config 审计配置
type Config struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Sink log | kafka
	Sink         string        `json:"sink" mapstructure:"sink" default:"log" validate:"oneof=log kafka"`
	Topic        string        `json:"topic" mapstructure:"topic" default:"auth.events"`
	PoolSize     int           `json:"poolSize" mapstructure:"poolSize" default:"16"`
	EmitTimeout  time.Duration `json:"emitTimeout" mapstructure:"emitTimeout" default:"5s"`
	CloseTimeout time.Duration `json:"closeTimeout" mapstructure:"closeTimeout" default:"5s"`
}

// Dispatcher 通过 ants 协程池异步投递审计事件
// 池满时事件被丢弃并记录日志，请求不会等待输出
type Dispatcher struct {
	sink    Sink
	pool    *ants.Pool
	logger  *log.Logger
	timeout time.Duration
	dropped atomic.Uint64
	now     func() time.Time
}

// DispatcherOption 选项
type DispatcherOption func(*Dispatcher)

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEmitTimeout 设置单个事件的写入超时
func WithEmitTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher 创建投递器，size 为协程池大小
func NewDispatcher(sink Sink, size int, opts ...DispatcherOption) (*Dispatcher, error) {
	if sink == nil {
		return nil, errors.New("audit: sink is nil")
	}

	d := &Dispatcher{
		sink:    sink,
		logger:  log.G,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			d.logger.Error().Interface("panic", p).Msg("audit sink panicked")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: create pool: %w", err)
	}
	d.pool = pool

	return d, nil
}

var _ Emitter = (*Dispatcher)(nil)

// Emit 提交事件，不阻塞
func (d *Dispatcher) Emit(e Event) {
	if e.At.IsZero() {
		e.At = d.now()
	}

	err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sink.Emit(ctx, e); err != nil {
			d.logger.Warn().Err(err).Str("audit", string(e.Type)).Int64("user_id", e.UserID).Msg("audit event not delivered")
		}
	})
	if err != nil {
		d.dropped.Add(1)
		d.logger.Warn().Err(err).Str("audit", string(e.Type)).Int64("user_id", e.UserID).Msg("audit event dropped")
	}
}

// Dropped 被丢弃的事件数
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close 等待进行中的事件完成后释放协程池
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
