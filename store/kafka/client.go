package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/authsvc/log"
)

// Client 按 topic 复用 kafka.Writer，创建时不连接 broker
type Client struct {
	cfg       *Config
	transport *kafka.Transport
	logger    *log.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	mech, err := cfg.mechanism()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		transport: &kafka.Transport{DialTimeout: cfg.Timeout, SASL: mech},
		logger:    log.G,
		writers:   make(map[string]*kafka.Writer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Producer topic 对应的 writer，首次调用时创建
func (c *Client) Producer(topic string) *kafka.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               c.cfg.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.cfg.AutoCreate,
		RequiredAcks:           kafka.RequiredAcks(c.cfg.RequiredAcks),
		BatchTimeout:           c.cfg.BatchTimeout,
		WriteTimeout:           c.cfg.Timeout,
	}
	c.writers[topic] = w
	c.logger.Debug().Str("topic", topic).Strs("brokers", c.cfg.Brokers).Msg("kafka producer created")
	return w
}

// Close 刷新并关闭全部 writer，最多等待 CloseTimeout
func (c *Client) Close() error {
	c.mu.Lock()
	writers := c.writers
	c.writers = make(map[string]*kafka.Writer)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CloseTimeout)
	defer cancel()

	var eg errgroup.Group
	for _, w := range writers {
		eg.Go(w.Close)
	}
	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
