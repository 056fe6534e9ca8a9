package session

import (
	"context"
	"errors"
)

// Revoker 注销会话
type Revoker struct {
	store Store
	*options
}

// NewRevoker 创建 Revoker
func NewRevoker(store Store, opts ...Option) *Revoker {
	return &Revoker{
		store:   store,
		options: newOptions(opts),
	}
}

// RevokeSession 删除用户当前会话记录和索引，无会话时直接返回
func (r *Revoker) RevokeSession(ctx context.Context, subjectID int64) error {
	sessionID, err := r.store.GetIndex(ctx, subjectID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := r.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if err := r.store.DeleteIndex(ctx, subjectID); err != nil {
		return err
	}

	r.metrics.observeRevoke()
	r.logger.Info().Int64("user_id", subjectID).Str("session_id", sessionID).Msg("session revoked")
	return nil
}
