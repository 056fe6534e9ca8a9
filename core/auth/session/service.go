package session

import (
	"context"

	"github.com/kochabx/authsvc/core/auth/jwt"
)

// Service 会话服务，组合 Issuer、Validator 与 Revoker
type Service struct {
	*Issuer
	*Validator
	*Revoker
	store Store
}

// NewService 创建会话服务
func NewService(checker CredentialChecker, codec *jwt.Codec, store Store, opts ...Option) *Service {
	return &Service{
		Issuer:    NewIssuer(checker, codec, store, opts...),
		Validator: NewValidator(codec, store, opts...),
		Revoker:   NewRevoker(store, opts...),
		store:     store,
	}
}

// Ping 检查会话存储
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
