package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport"
	"github.com/kochabx/authsvc/transport/http/metrics"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultAddr              = "127.0.0.1:3000"
	defaultReadHeaderTimeout = 10 * time.Second
)

// Server 承载 gin 路由的 HTTP 服务，按配置挂载 /metrics 与 /health
type Server struct {
	name     string
	logger   *log.Logger
	registry metrics.Metrics
	metrics  MetricsConfig
	health   HealthConfig
	server   *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer addr 非法时在 Run 中回退到 127.0.0.1:3000
func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		name:     "http",
		logger:   log.G,
		registry: metrics.Prom,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if r, ok := handler.(*gin.Engine); ok {
		s.mountMetrics(r)
		s.mountHealth(r)
	}
	return s
}

func (s *Server) Run() error {
	addr := s.server.Addr
	if !transport.ValidateAddress(addr) {
		s.logger.Warn().Str("addr", addr).Str("fallback", defaultAddr).Msg("invalid listen address")
		addr = defaultAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info().Str("server", s.name).Str("addr", ln.Addr().String()).Msg("listening")
	return s.server.Serve(ln)
}

// Addr 实际监听地址，Run 之前为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) mountMetrics(r *gin.Engine) {
	if !s.metrics.Enabled {
		return
	}
	if p, ok := s.registry.(*metrics.Prometheus); ok {
		if s.metrics.Runtime {
			p.WithGoCollectorRuntimeMetrics()
		}
		if s.metrics.BuildInfo {
			p.WithBuildInfoCollector()
		}
		if s.metrics.Process {
			p.WithProcessCollector()
		}
	}

	h := promhttp.HandlerFor(s.registry.Registry(), promhttp.HandlerOpts{EnableOpenMetrics: true})
	r.GET(s.metrics.Path, gin.WrapH(h))
}

func (s *Server) mountHealth(r *gin.Engine) {
	if !s.health.Enabled {
		return
	}
	health := s.health
	r.GET(health.Path, func(c *gin.Context) {
		if health.Check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), health.Timeout)
			defer cancel()
			if err := health.Check(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
