package user

import (
	"errors"
	"time"

	"github.com/kochabx/authsvc/core/auth/session"
)

var (
	ErrNotFound   = errors.New("user: not found")
	ErrEmailTaken = errors.New("user: email already registered")
)

// User 用户表
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	Password  string    `gorm:"size:255;not null"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// Profile 对外展示的用户信息，不包含密码
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUser 注册请求
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,notblank,min=3"`
}

func (u *User) profile() *Profile {
	return &Profile{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (u *User) identity() *session.Identity {
	return &session.Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}
