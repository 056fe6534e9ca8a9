package session

import (
	"strconv"
	"time"
)

// Identity 已认证的用户
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Record 存储在 session:<id> 下的会话记录，时间为 unix 秒
type Record struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired 记录是否已过期
func (r *Record) Expired(now time.Time) bool {
	return now.Unix() >= r.ExpiresAt
}

// Issued 登录成功的结果
type Issued struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
	User      Identity
}

// 外部工具按此命名空间读取会话，不可配置
const (
	SessionKeyPrefix = "session:"
	IndexKeyPrefix   = "user_session:"
)

func formatSubject(subjectID int64) string {
	return strconv.FormatInt(subjectID, 10)
}
