package session

import (
	"errors"
	"fmt"
)

var (
	// 存储层错误
	ErrNotFound         = errors.New("session: not found")
	ErrCorruptRecord    = errors.New("session: corrupt record")
	ErrStoreUnavailable = errors.New("session: store unavailable")

	// 登录错误
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrUserLookup         = errors.New("session: user lookup failed")

	// ErrUnauthorized 请求校验失败，调用方只看到这一种错误
	ErrUnauthorized = errors.New("session: unauthorized")

	// 校验失败原因，仅用于日志
	ErrNoActiveSession = errors.New("session: no active session")
	ErrSessionNotFound = errors.New("session: session record not found")
	ErrStaleSession    = errors.New("session: token does not match active session")
	ErrSessionStore    = errors.New("session: store error during validation")
)

func unauthorized(reason error) error {
	return fmt.Errorf("%w: %w", ErrUnauthorized, reason)
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
