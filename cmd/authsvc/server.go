package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kochabx/authsvc/app"
	"github.com/kochabx/authsvc/audit"
	"github.com/kochabx/authsvc/core/auth/jwt"
	"github.com/kochabx/authsvc/core/auth/password"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/core/rate"
	"github.com/kochabx/authsvc/handler"
	"github.com/kochabx/authsvc/log"
	middleware "github.com/kochabx/authsvc/middleware/http"
	"github.com/kochabx/authsvc/store/db"
	"github.com/kochabx/authsvc/store/kafka"
	kitredis "github.com/kochabx/authsvc/store/redis"
	"github.com/kochabx/authsvc/transport/http"
	"github.com/kochabx/authsvc/transport/http/metrics"
	"github.com/kochabx/authsvc/user"
)

const (
	metricsNamespace = "authsvc"
	closeTimeout     = 10 * time.Second
)

// service 已装配的组件
type service struct {
	router   *gin.Engine
	server   *http.Server
	sessions *session.Service
	closers  app.Closers
	logger   *log.Logger
}

func (s *service) addCloser(name string, fn func(context.Context) error) {
	_ = s.closers.Add(name, fn, 0, closeTimeout)
}

// close 装配失败或测试结束时释放已创建的资源
func (s *service) close() {
	_ = s.closers.Close(s.logger)
}

// build 装配服务并返回可启动的应用
func build(cfg *Config, logger *log.Logger) (*app.Application, error) {
	svc, err := newService(cfg, logger, metrics.Prom)
	if err != nil {
		return nil, err
	}

	return app.New(
		app.WithLogger(logger),
		app.WithServer(svc.server),
		app.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		app.WithClosers(svc.closers),
	), nil
}

// newService 按配置创建存储、领域服务与 HTTP 服务
func newService(cfg *Config, logger *log.Logger, prom *metrics.Prometheus) (svc *service, err error) {
	svc = &service{logger: logger}
	defer func() {
		if err != nil {
			svc.close()
		}
	}()

	debug := zerolog.GlobalLevel() <= zerolog.DebugLevel
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 存储
	redisOpts := []kitredis.Option{kitredis.WithLogger(logger)}
	if debug {
		redisOpts = append(redisOpts, kitredis.WithDebug())
	}
	if cfg.Redis.Tracing {
		redisOpts = append(redisOpts, kitredis.WithTracing())
	}
	if cfg.Redis.Metrics {
		redisOpts = append(redisOpts, kitredis.WithMetrics())
	}
	redisClient, err := kitredis.New(&cfg.Redis.Config, redisOpts...)
	if err != nil {
		return svc, fmt.Errorf("connect redis: %w", err)
	}
	svc.addCloser("redis", func(context.Context) error { return redisClient.Close() })

	dbClient, err := db.Open(&cfg.Database, db.WithLogger(logger))
	if err != nil {
		return svc, fmt.Errorf("connect database: %w", err)
	}
	svc.addCloser("database", func(context.Context) error { return dbClient.Close() })

	if err := user.AutoMigrate(context.Background(), dbClient.DB()); err != nil {
		return svc, err
	}

	// 领域服务
	hasher, err := password.New(cfg.Password.Cost)
	if err != nil {
		return svc, err
	}
	users := user.NewService(user.NewRepository(dbClient.DB()), hasher, user.WithLogger(logger))

	codec, err := jwt.New(&cfg.JWT)
	if err != nil {
		return svc, err
	}

	svc.sessions = session.NewService(users, codec,
		session.NewRedisStore(redisClient),
		session.WithLogger(logger),
		session.WithMetrics(session.NewMetrics(prom.Registry())),
		session.WithRevokeOnRelogin(cfg.Session.RevokeOnRelogin),
	)

	emitter, err := newAuditEmitter(cfg, logger, svc)
	if err != nil {
		return svc, err
	}

	// HTTP
	handlerOpts := []handler.Option{handler.WithLogger(logger), handler.WithAudit(emitter)}
	if cfg.RateLimit.Enabled {
		limiter := rate.NewSlidingWindowLimiter(redisClient.UniversalClient(), cfg.RateLimit.Prefix, cfg.RateLimit.Window, cfg.RateLimit.Limit)
		handlerOpts = append(handlerOpts, handler.WithLoginMiddleware(middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter,
			Logger:  logger,
		})))
	}

	var mws []gin.HandlerFunc
	if cfg.Metrics.Enabled {
		httpMetrics, err := metrics.NewHTTP(prom.Registry(), metricsNamespace)
		if err != nil {
			return svc, err
		}
		mws = append(mws, httpMetrics.Handler())
	}
	if cfg.Server.CORS.Enabled {
		mws = append(mws, middleware.Cors(cfg.Server.CORS))
	}

	accessLog := middleware.LoggerConfig{
		Logger:    logger,
		SkipPaths: []string{cfg.Health.Path, cfg.Metrics.Path},
		SkipFunc:  func(*gin.Context) bool { return !cfg.Server.AccessLog },
	}
	svc.router = handler.NewRouter(handler.New(users, svc.sessions, handlerOpts...), handler.RouterConfig{
		Middlewares: mws,
		AccessLog:   accessLog,
	})

	health := cfg.Health
	health.Check = func(ctx context.Context) error {
		return errors.Join(svc.sessions.Ping(ctx), dbClient.Ping(ctx))
	}
	svc.server = http.NewServer(cfg.Server.Addr, svc.router,
		http.WithName(metricsNamespace),
		http.WithLogger(logger),
		http.WithRegistry(prom),
		http.WithMetrics(cfg.Metrics),
		http.WithHealth(health),
	)

	return svc, nil
}

// newAuditEmitter 按配置创建审计投递器，未启用时丢弃事件
func newAuditEmitter(cfg *Config, logger *log.Logger, svc *service) (audit.Emitter, error) {
	if !cfg.Audit.Enabled {
		return audit.Nop{}, nil
	}

	var sink audit.Sink = audit.NewLogSink(logger)
	if cfg.Audit.Sink == "kafka" {
		client, err := kafka.New(&cfg.Kafka, kafka.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		svc.addCloser("kafka", func(context.Context) error { return client.Close() })
		sink = audit.NewKafkaSink(client.Producer(cfg.Audit.Topic))
	}

	dispatcher, err := audit.NewDispatcher(sink, cfg.Audit.PoolSize,
		audit.WithLogger(logger),
		audit.WithEmitTimeout(cfg.Audit.EmitTimeout),
	)
	if err != nil {
		return nil, err
	}
	svc.addCloser("audit", func(context.Context) error { return dispatcher.Close(cfg.Audit.CloseTimeout) })
	return dispatcher, nil
}
