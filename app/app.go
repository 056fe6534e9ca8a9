// Package app 负责进程内服务的启停与资源释放。
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport"
)

var ErrAlreadyStarted = errors.New("application already started")

const (
	defaultShutdownTimeout = 30 * time.Second
	defaultCloseTimeout    = 30 * time.Second
)

// Application 持有一组 transport.Server 与释放函数
//
// Start 只能调用一次，返回前按注册逆序执行全部释放函数。
type Application struct {
	ctx    context.Context
	cancel context.CancelFunc

	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal
	logger          *log.Logger

	mu      sync.RWMutex
	servers []transport.Server
	closers Closers
	started bool
}

func New(options ...Option) *Application {
	a := &Application{
		shutdownTimeout: defaultShutdownTimeout,
		closeTimeout:    defaultCloseTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
		logger:          log.G,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *Application) AddServer(s transport.Server) error {
	if s == nil {
		return errors.New("server cannot be nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAlreadyStarted
	}
	a.servers = append(a.servers, s)
	return nil
}

// RegisterClose timeout 为 0 时使用 WithCloseTimeout 的值
func (a *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closers.Add(name, fn, timeout, a.closeTimeout)
}

// Start 阻塞到收到信号、调用 Stop 或任一服务异常退出
func (a *Application) Start() error {
	servers, err := a.begin()
	if err != nil {
		return err
	}
	defer a.release()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, a.signals...)
	defer signal.Stop(sigs)

	g, ctx := errgroup.WithContext(a.ctx)
	for _, s := range servers {
		a.serve(g, ctx, s)
	}
	g.Go(func() error {
		select {
		case sig := <-sigs:
			a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
			a.cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err = g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	a.logger.Error().Err(err).Msg("server exited")
	return err
}

// Stop 可在任意 goroutine 调用
func (a *Application) Stop() {
	a.cancel()
}

func (a *Application) begin() ([]transport.Server, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil, ErrAlreadyStarted
	}
	a.started = true
	if len(a.servers) == 0 {
		a.logger.Info().Msg("no servers registered")
	}
	return append([]transport.Server(nil), a.servers...), nil
}

// serve 一个 goroutine 运行服务，另一个在 ctx 结束后关闭它
func (a *Application) serve(g *errgroup.Group, ctx context.Context, s transport.Server) {
	g.Go(func() error {
		err := s.Run()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		return s.Shutdown(sctx)
	})
}

func (a *Application) release() {
	a.mu.RLock()
	cs := append(Closers(nil), a.closers...)
	a.mu.RUnlock()

	if err := cs.Close(a.logger); err != nil {
		a.logger.Error().Err(err).Msg("release resources")
	}
}

// Info 状态快照
type Info struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"server_count"`
	CloseCount  int  `json:"close_count"`
}

func (a *Application) Info() Info {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Info{Started: a.started, ServerCount: len(a.servers), CloseCount: len(a.closers)}
}
