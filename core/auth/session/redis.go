package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kitredis "github.com/kochabx/authsvc/store/redis"
)

// RedisStore Redis 会话存储，key 为 session:<id> 与 user_session:<uid>
type RedisStore struct {
	client *kitredis.Client
}

func NewRedisStore(client *kitredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) sessionKey(sessionID string) string {
	return SessionKeyPrefix + sessionID
}

func (s *RedisStore) indexKey(subjectID int64) string {
	return IndexKeyPrefix + formatSubject(subjectID)
}

// PutSession SET session:<id> <json> EX ttl
func (s *RedisStore) PutSession(ctx context.Context, sessionID string, record *Record, ttl time.Duration) error {
	if record == nil {
		return fmt.Errorf("session: record is nil")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("session: marshal record: %w", err)
	}

	if err := s.client.UniversalClient().Set(ctx, s.sessionKey(sessionID), data, ttl).Err(); err != nil {
		return storeUnavailable("put session", err)
	}
	return nil
}

// PutIndex SET user_session:<uid> <sid> EX ttl
func (s *RedisStore) PutIndex(ctx context.Context, subjectID int64, sessionID string, ttl time.Duration) error {
	if err := s.client.UniversalClient().Set(ctx, s.indexKey(subjectID), sessionID, ttl).Err(); err != nil {
		return storeUnavailable("put index", err)
	}
	return nil
}

// GetIndex 读取用户当前会话 ID
func (s *RedisStore) GetIndex(ctx context.Context, subjectID int64) (string, error) {
	sessionID, err := s.client.UniversalClient().Get(ctx, s.indexKey(subjectID)).Result()
	if err != nil {
		if errors.Is(err, kitredis.ErrNil) {
			return "", ErrNotFound
		}
		return "", storeUnavailable("get index", err)
	}
	return sessionID, nil
}

// GetSession 读取会话记录
func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.UniversalClient().Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, kitredis.ErrNil) {
			return nil, ErrNotFound
		}
		return nil, storeUnavailable("get session", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return &record, nil
}

// DeleteSession 删除会话记录
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.UniversalClient().Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return storeUnavailable("delete session", err)
	}
	return nil
}

// DeleteIndex 删除用户索引
func (s *RedisStore) DeleteIndex(ctx context.Context, subjectID int64) error {
	if err := s.client.UniversalClient().Del(ctx, s.indexKey(subjectID)).Err(); err != nil {
		return storeUnavailable("delete index", err)
	}
	return nil
}

// Ping 健康检查
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return storeUnavailable("ping", err)
	}
	return nil
}
