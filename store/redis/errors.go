package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNil redis.Nil 的封装，表示 key 不存在
	ErrNil = redis.Nil

	ErrInvalidConfig  = errors.New("redis: invalid configuration")
	ErrInvalidURL     = errors.New("redis: invalid url")
	ErrEmptyAddrs     = errors.New("redis: addrs cannot be empty")
	ErrInvalidTimeout = errors.New("redis: invalid timeout value")
)
