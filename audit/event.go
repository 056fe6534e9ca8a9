package audit

import (
	"context"
	"time"
)

// Type 事件类型
type Type string

const (
	TypeLogin       Type = "login"
	TypeLoginFailed Type = "login_failed"
	TypeLogout      Type = "logout"
	TypeRegister    Type = "register"
)

// Event 审计事件
type Event struct {
	Type      Type      `json:"type"`
	UserID    int64     `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	At        time.Time `json:"at"`
}

// Sink 审计事件输出
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Emitter 审计事件发送方
type Emitter interface {
	Emit(event Event)
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Emit(Event) {}
