package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/authsvc/audit"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/user"
)

// UserService 注册与资料查询
type UserService interface {
	Register(ctx context.Context, req *user.NewUser) (*user.Profile, error)
	FindByID(ctx context.Context, id int64) (*user.Profile, error)
}

// SessionService 会话签发、校验与撤销
type SessionService interface {
	IssueSession(ctx context.Context, email, password string) (*session.Issued, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	RevokeSession(ctx context.Context, subjectID int64) error
}

var (
	_ UserService    = (*user.Service)(nil)
	_ SessionService = (*session.Service)(nil)
)

// Handler HTTP 接口
type Handler struct {
	users    UserService
	sessions SessionService
	audit    audit.Emitter
	logger   *log.Logger
	login    []gin.HandlerFunc
}

// Option Handler 选项
type Option func(*Handler)

// WithAudit 设置审计事件发送方
func WithAudit(e audit.Emitter) Option {
	return func(h *Handler) {
		if e != nil {
			h.audit = e
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithLoginMiddleware 在登录接口前执行的中间件，例如限流
func WithLoginMiddleware(mw ...gin.HandlerFunc) Option {
	return func(h *Handler) {
		h.login = append(h.login, mw...)
	}
}

// New 创建 Handler
func New(users UserService, sessions SessionService, opts ...Option) *Handler {
	h := &Handler{
		users:    users,
		sessions: sessions,
		audit:    audit.Nop{},
		logger:   log.G,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
