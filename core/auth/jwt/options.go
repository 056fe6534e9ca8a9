package jwt

import "time"

// Option Codec 选项
type Option func(*Codec)

// WithClock 设置时钟，用于校验过期时间
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}
