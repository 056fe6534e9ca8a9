package kafka

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/kochabx/authsvc/core/tag"
)

// Config 生产者配置
type Config struct {
	Brokers []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092"`

	// Mechanism plain 或 scram-sha-256 / scram-sha-512，Username 为空时不认证
	Mechanism string `json:"mechanism" mapstructure:"mechanism" default:"plain" validate:"oneof=plain scram-sha-256 scram-sha-512"`
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"password" mapstructure:"password"`

	// Balancer hash 按消息 key 分区，同一用户的事件保持有序
	Balancer string `json:"balancer" mapstructure:"balancer" default:"hash" validate:"oneof=hash least_bytes"`

	// RequiredAcks -1 全部副本，0 不等待，1 leader
	RequiredAcks int  `json:"requiredAcks" mapstructure:"requiredAcks" default:"1"`
	AutoCreate   bool `json:"autoCreate" mapstructure:"autoCreate"`

	Timeout      time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout" default:"100ms"`
	CloseTimeout time.Duration `json:"closeTimeout" mapstructure:"closeTimeout" default:"5s"`
}

func (c *Config) init() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	return nil
}

func (c *Config) mechanism() (sasl.Mechanism, error) {
	if c.Username == "" {
		return nil, nil
	}
	switch c.Mechanism {
	case "plain", "":
		return plain.Mechanism{Username: c.Username, Password: c.Password}, nil
	case "scram-sha-256":
		return scram.Mechanism(scram.SHA256, c.Username, c.Password)
	case "scram-sha-512":
		return scram.Mechanism(scram.SHA512, c.Username, c.Password)
	default:
		return nil, fmt.Errorf("%w: sasl mechanism %q", ErrInvalidConfig, c.Mechanism)
	}
}

func (c *Config) balancer() kafka.Balancer {
	if c.Balancer == "least_bytes" {
		return &kafka.LeastBytes{}
	}
	return &kafka.Hash{}
}
