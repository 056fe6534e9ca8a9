package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMismatch = errors.New("password: mismatch")
	ErrTooLong  = errors.New("password: exceeds 72 bytes")
)

// Hasher bcrypt 密码哈希
type Hasher struct {
	cost  int
	dummy []byte
}

// New 创建 Hasher，cost 为 0 时使用 bcrypt.DefaultCost
func New(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: invalid bcrypt cost %d", cost)
	}

	// 未知用户也执行一次比较，使响应时间一致
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("password: init: %w", err)
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash 生成密码哈希
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

// Verify 校验密码，不匹配返回 ErrMismatch
func (h *Hasher) Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("password: verify: %w", err)
	}
}

// VerifyDummy 对固定哈希执行一次比较，结果丢弃
func (h *Hasher) VerifyDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
