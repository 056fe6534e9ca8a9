package session

import (
	"context"
	"errors"

	"github.com/kochabx/authsvc/core/auth/jwt"
	"github.com/kochabx/authsvc/log/desensitize"
)

// Validator 校验请求令牌，只读
type Validator struct {
	codec *jwt.Codec
	store Store
	*options
}

// NewValidator 创建 Validator
func NewValidator(codec *jwt.Codec, store Store, opts ...Option) *Validator {
	return &Validator{
		codec:   codec,
		store:   store,
		options: newOptions(opts),
	}
}

// ValidateRequest 校验令牌签名与过期时间，并确认其仍是用户的当前会话
// 所有失败都返回 ErrUnauthorized，具体原因可通过 errors.Is 区分
func (v *Validator) ValidateRequest(ctx context.Context, token string) (int64, error) {
	claims, err := v.codec.Verify(token)
	if err != nil {
		result := resultInvalidToken
		if errors.Is(err, jwt.ErrExpiredToken) {
			result = resultExpiredToken
		}
		return 0, v.reject(result, token, 0, unauthorized(err))
	}

	subjectID := claims.Subject
	sessionID, err := v.store.GetIndex(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, v.reject(resultNoSession, token, subjectID, unauthorized(ErrNoActiveSession))
		}
		return 0, v.reject(resultStoreError, token, subjectID, unauthorized(errors.Join(ErrSessionStore, err)))
	}

	record, err := v.store.GetSession(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return 0, v.reject(resultNotFound, token, subjectID, unauthorized(ErrSessionNotFound))
		case errors.Is(err, ErrCorruptRecord):
			return 0, v.reject(resultStale, token, subjectID, unauthorized(errors.Join(ErrStaleSession, err)))
		default:
			return 0, v.reject(resultStoreError, token, subjectID, unauthorized(errors.Join(ErrSessionStore, err)))
		}
	}

	if record.Token != token {
		return 0, v.reject(resultStale, token, subjectID, unauthorized(ErrStaleSession))
	}

	v.metrics.observeValidate(resultOK)
	return subjectID, nil
}

// Authenticate 适配 HTTP 认证中间件
func (v *Validator) Authenticate(ctx context.Context, token string) (int64, error) {
	return v.ValidateRequest(ctx, token)
}

func (v *Validator) reject(result, token string, subjectID int64, err error) error {
	v.metrics.observeValidate(result)

	event := v.logger.Info()
	if result == resultStoreError {
		event = v.logger.Error()
	}
	event.Err(err).
		Str("reason", result).
		Int64("user_id", subjectID).
		Str("token", desensitize.Token(token)).
		Msg("request rejected")
	return err
}
