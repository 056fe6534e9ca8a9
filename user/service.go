package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kochabx/authsvc/core/auth/password"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/core/validator"
	"github.com/kochabx/authsvc/log"
)

// Service 用户服务
type Service struct {
	repo      Repository
	hasher    *password.Hasher
	validator validator.Validator
	logger    *log.Logger
}

// ServiceOption 用户服务选项
type ServiceOption func(*Service)

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValidator 设置校验器
func WithValidator(v validator.Validator) ServiceOption {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// NewService 创建用户服务
func NewService(repo Repository, hasher *password.Hasher, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		hasher:    hasher,
		validator: validator.Validate,
		logger:    log.G,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ session.CredentialChecker = (*Service)(nil)

// Register 校验并创建用户
func (s *Service) Register(ctx context.Context, req *NewUser) (*Profile, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u.profile(), nil
}

// FindAndVerify 查找用户并校验密码，用户不存在或密码错误返回 nil, nil
func (s *Service) FindAndVerify(ctx context.Context, email, plain string) (*session.Identity, error) {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		s.hasher.VerifyDummy(plain)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch err := s.hasher.Verify(u.Password, plain); {
	case err == nil:
		return u.identity(), nil
	case errors.Is(err, password.ErrMismatch):
		return nil, nil
	default:
		return nil, fmt.Errorf("user: verify password for %d: %w", u.ID, err)
	}
}

// FindByID 查询用户信息
func (s *Service) FindByID(ctx context.Context, id int64) (*Profile, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.profile(), nil
}
