package session

import (
	"context"
	"time"
)

// Store 会话存储
// 每个操作对应一条缓存命令，TTL 由后端负责
type Store interface {
	// PutSession 写入会话记录
	PutSession(ctx context.Context, sessionID string, record *Record, ttl time.Duration) error
	// PutIndex 写入用户到会话的索引
	PutIndex(ctx context.Context, subjectID int64, sessionID string, ttl time.Duration) error
	// GetIndex 读取用户当前会话 ID，不存在返回 ErrNotFound
	GetIndex(ctx context.Context, subjectID int64) (string, error)
	// GetSession 读取会话记录，不存在返回 ErrNotFound，无法解析返回 ErrCorruptRecord
	GetSession(ctx context.Context, sessionID string) (*Record, error)
	// DeleteSession 删除会话记录，幂等
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteIndex 删除用户索引，幂等
	DeleteIndex(ctx context.Context, subjectID int64) error
	// Ping 健康检查
	Ping(ctx context.Context) error
}
