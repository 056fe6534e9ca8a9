package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/kochabx/authsvc/core/auth/jwt"
	"github.com/kochabx/authsvc/log/desensitize"
)

// CredentialChecker 校验邮箱与密码
// 用户不存在或密码错误都返回 nil, nil
type CredentialChecker interface {
	FindAndVerify(ctx context.Context, email, password string) (*Identity, error)
}

// CredentialCheckerFunc 函数适配器
type CredentialCheckerFunc func(ctx context.Context, email, password string) (*Identity, error)

func (f CredentialCheckerFunc) FindAndVerify(ctx context.Context, email, password string) (*Identity, error) {
	return f(ctx, email, password)
}

// Issuer 登录并创建会话
type Issuer struct {
	checker CredentialChecker
	codec   *jwt.Codec
	store   Store
	*options
}

// NewIssuer 创建 Issuer
func NewIssuer(checker CredentialChecker, codec *jwt.Codec, store Store, opts ...Option) *Issuer {
	return &Issuer{
		checker: checker,
		codec:   codec,
		store:   store,
		options: newOptions(opts),
	}
}

// IssueSession 校验凭证，签发令牌并写入会话记录与用户索引
func (i *Issuer) IssueSession(ctx context.Context, email, password string) (*Issued, error) {
	identity, err := i.checker.FindAndVerify(ctx, email, password)
	if err != nil {
		i.metrics.observeIssue(resultError)
		return nil, fmt.Errorf("%w: %w", ErrUserLookup, err)
	}
	if identity == nil {
		i.metrics.observeIssue(resultBadCredential)
		i.logger.Info().Str("email", desensitize.Email(email)).Msg("login rejected: invalid credentials")
		return nil, ErrInvalidCredentials
	}

	sessionID := i.newID()
	token, claims, err := i.codec.Issue(identity.ID, sessionID, i.now())
	if err != nil {
		i.metrics.observeIssue(resultError)
		return nil, fmt.Errorf("session: issue token: %w", err)
	}

	if i.revokeOnRelogin {
		if err := i.revokePrevious(ctx, identity.ID); err != nil {
			i.metrics.observeIssue(resultStoreError)
			return nil, err
		}
	}

	record := &Record{
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		Token:     token,
		CreatedAt: claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}

	ttl := i.codec.TTL()
	if err := i.store.PutSession(ctx, sessionID, record, ttl); err != nil {
		i.metrics.observeIssue(resultStoreError)
		return nil, err
	}
	if err := i.store.PutIndex(ctx, identity.ID, sessionID, ttl); err != nil {
		// 记录会随 TTL 自动过期
		i.logger.Warn().Err(err).Int64("user_id", identity.ID).Str("session_id", sessionID).Msg("session record orphaned: index write failed")
		i.metrics.observeIssue(resultStoreError)
		return nil, err
	}

	i.metrics.observeIssue(resultOK)
	i.logger.Info().Int64("user_id", identity.ID).Str("session_id", sessionID).Msg("session issued")

	return &Issued{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      *identity,
	}, nil
}

// revokePrevious 删除索引指向的旧会话记录，索引随后被覆盖
func (i *Issuer) revokePrevious(ctx context.Context, subjectID int64) error {
	previous, err := i.store.GetIndex(ctx, subjectID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := i.store.DeleteSession(ctx, previous); err != nil {
		return err
	}
	i.logger.Debug().Int64("user_id", subjectID).Str("session_id", previous).Msg("previous session revoked")
	return nil
}
