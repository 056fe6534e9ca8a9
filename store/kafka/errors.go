package kafka

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("kafka: invalid configuration")
	// ErrNoBrokers 未配置 broker
	ErrNoBrokers = errors.New("kafka: brokers cannot be empty")
)
